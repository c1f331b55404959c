package usecase_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	analyticsout "studytrack/internal/modules/analytics/adapter/out"
	"studytrack/internal/modules/analytics/domain"
	analyticsdto "studytrack/internal/modules/analytics/dto"
	"studytrack/internal/modules/analytics/service"
	"studytrack/internal/modules/analytics/usecase"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/logging"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type fakeSource struct{ snap domain.Snapshot }

func (f *fakeSource) Snapshot(context.Context) (domain.Snapshot, error) { return f.snap, nil }

type fakeCatalog struct {
	subjects []domain.SubjectInfo
	err      error
}

func (f *fakeCatalog) Subjects(context.Context) ([]domain.SubjectInfo, error) {
	return f.subjects, f.err
}

var now = time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC)

func record(id, subject string, start time.Time, d time.Duration) domain.Record {
	return domain.Record{ID: id, SubjectID: subject, Start: start, End: start.Add(d)}
}

func newInteractor(t *testing.T, source *fakeSource, catalog *fakeCatalog, journalDir string) *usecase.Interactor {
	t.Helper()
	svc, err := service.NewAnalyticsService(fixedClock{now: now}, time.UTC, source, catalog, analyticsout.NewFileJournalStore(journalDir), logging.Discard())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return usecase.NewInteractor(svc).(*usecase.Interactor)
}

func TestSummaryJoinsSubjectsAndKeepsDeletedOnes(t *testing.T) {
	t.Parallel()
	source := &fakeSource{snap: domain.Snapshot{
		Revision: 1,
		Records: []domain.Record{
			record("s1", "math", now.Add(-3*time.Hour), time.Hour),
			record("s2", "gone", now.Add(-2*time.Hour), 30*time.Minute),
			record("s3", "math", now.AddDate(0, 0, -1), 20*time.Minute),
		},
		Live: &domain.LiveSegment{SubjectID: "math", StartTime: now.Add(-5 * time.Minute), ElapsedSeconds: 300},
	}}
	catalog := &fakeCatalog{subjects: []domain.SubjectInfo{{ID: "math", Name: "Math", Color: "#f38ba8"}}}
	uc := newInteractor(t, source, catalog, t.TempDir())

	out, err := uc.Summary(context.Background(), analyticsdto.SummaryInput{Window: "today"})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Today != 3600+1800+300 || out.WindowTotal != out.Today {
		t.Fatalf("unexpected totals today=%d window=%d", out.Today, out.WindowTotal)
	}
	if out.Week != out.Today+1200 || out.Streak != 2 {
		t.Fatalf("unexpected week=%d streak=%d", out.Week, out.Streak)
	}
	if len(out.Subjects) != 2 || out.Subjects[0].Name != "Math" || out.Subjects[0].Seconds != 3900 {
		t.Fatalf("unexpected subjects %+v", out.Subjects)
	}
	if !out.Subjects[1].Deleted || out.Subjects[1].Name != "gone" {
		t.Fatalf("absent subject must keep its id and be flagged, got %+v", out.Subjects[1])
	}
	if len(out.Daily) != domain.TrendDays || len(out.Heatmap) != domain.HeatmapDays || len(out.Hourly) != 24 {
		t.Fatalf("unexpected series lengths %d/%d/%d", len(out.Daily), len(out.Heatmap), len(out.Hourly))
	}

	catalog.err = apperrors.ErrStoreUnavailable
	out, err = uc.Summary(context.Background(), analyticsdto.SummaryInput{Window: "today"})
	if err != nil {
		t.Fatalf("summary must survive a catalog outage: %v", err)
	}
	if out.Subjects[0].Name != "math" {
		t.Fatalf("expected raw id without catalog, got %+v", out.Subjects[0])
	}

	if _, err := uc.Summary(context.Background(), analyticsdto.SummaryInput{Window: "soon"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid window, got %v", err)
	}
}

func TestExportJournalPreservesHandWrittenText(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	source := &fakeSource{snap: domain.Snapshot{Revision: 1, Records: []domain.Record{
		record("s1", "math", time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), 25*time.Minute),
		{ID: "s2", SubjectID: "math", Start: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 11, 10, 5, 0, 0, time.UTC), Interrupted: true},
		record("s3", "physics", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), time.Hour),
	}}}
	catalog := &fakeCatalog{subjects: []domain.SubjectInfo{{ID: "math", Name: "Linear Algebra"}}}
	uc := newInteractor(t, source, catalog, dir)

	out, err := uc.ExportJournal(context.Background(), analyticsdto.ExportInput{Days: 3})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(out.Notes) != 1 {
		t.Fatalf("expected one active day in range, got %v", out.Notes)
	}
	raw, err := os.ReadFile(out.Notes[0])
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	note := string(raw)
	for _, want := range []string{"2026-03-11", "total: 30m", "- 09:00-09:25 [[linear-algebra|Linear Algebra]] 25m", "(interrupted)"} {
		if !strings.Contains(note, want) {
			t.Fatalf("note missing %q:\n%s", want, note)
		}
	}

	edited := strings.Replace(note, "---\n", "---\nmood: focused\n", 1) + "\nReflections stay here.\n"
	if err := os.WriteFile(out.Notes[0], []byte(edited), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}
	if _, err := uc.ExportJournal(context.Background(), analyticsdto.ExportInput{Days: 3}); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	raw, _ = os.ReadFile(out.Notes[0])
	again := string(raw)
	if !strings.Contains(again, "mood: focused") || !strings.Contains(again, "Reflections stay here.") {
		t.Fatalf("hand-written content lost:\n%s", again)
	}
	if strings.Count(again, "studytrack:sessions:start") != 1 {
		t.Fatalf("generated block must be replaced, not duplicated:\n%s", again)
	}

	if _, err := uc.ExportJournal(context.Background(), analyticsdto.ExportInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero days, got %v", err)
	}
}
