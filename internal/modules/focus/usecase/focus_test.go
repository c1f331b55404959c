package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	focusout "studytrack/internal/modules/focus/adapter/out"
	focusdto "studytrack/internal/modules/focus/dto"
	focusin "studytrack/internal/modules/focus/port/in"
	"studytrack/internal/modules/focus/service"
	"studytrack/internal/modules/focus/usecase"
	subjectout "studytrack/internal/modules/subject/adapter/out"
	subjectdto "studytrack/internal/modules/subject/dto"
	subjectin "studytrack/internal/modules/subject/port/in"
	subjectservice "studytrack/internal/modules/subject/service"
	subjectusecase "studytrack/internal/modules/subject/usecase"
	"studytrack/internal/platform/database"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/kv"
	"studytrack/internal/platform/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type seqID struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

type device struct {
	focus focusin.Usecase
	cache *kv.MemoryCache
}

type harness struct {
	db      *database.DB
	clock   *fakeClock
	subject subjectdto.SubjectOutput
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "studytrack.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	h := &harness{db: db, clock: &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}}
	subjects := h.subjects(kv.NewMemoryCache())
	h.subject, err = subjects.Create(context.Background(), subjectdto.CreateInput{Name: "Math"})
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	return h
}

func (h *harness) subjects(cache kv.Cache) subjectin.Usecase {
	svc := subjectservice.NewSubjectService(h.clock, &seqID{prefix: "subj"}, subjectout.NewSQLSubjectStore(h.db), cache, "owner-1", logging.Discard())
	return subjectusecase.NewInteractor(svc)
}

func (h *harness) device(name string) device {
	cache := kv.NewMemoryCache()
	rec := service.NewReconciler(
		h.clock,
		&seqID{prefix: name},
		focusout.NewSQLMarkerStore(h.db),
		focusout.NewSQLSessionStore(h.db),
		cache,
		h.db,
		logging.Discard(),
		service.Options{OwnerID: "owner-1", HistoryDays: 30},
	)
	uc := usecase.NewInteractor(rec, h.subjects(cache), logging.Discard(), usecase.Options{PollInterval: time.Second})
	return device{focus: uc, cache: cache}
}

func TestStartRejectsUnknownSubject(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	d := h.device("phone")
	_, err := d.focus.Start(context.Background(), focusdto.StartInput{SubjectID: "missing"})
	if !errors.Is(err, apperrors.ErrUnknownSubject) {
		t.Fatalf("expected unknown subject, got %v", err)
	}
	if _, err := d.focus.Start(context.Background(), focusdto.StartInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFocusRoundTripAcrossDevices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)
	phone := h.device("phone")
	laptop := h.device("laptop")

	started, err := phone.focus.Start(ctx, focusdto.StartInput{SubjectID: h.subject.ID})
	if err != nil {
		t.Fatalf("phone start: %v", err)
	}
	if started.Status != "running" || started.Pending || started.StartTime == nil {
		t.Fatalf("unexpected started state %+v", started)
	}

	h.clock.Advance(40 * time.Second)
	restored, err := laptop.focus.Restore(ctx)
	if err != nil {
		t.Fatalf("laptop restore: %v", err)
	}
	if restored.MarkerID != started.MarkerID || restored.ElapsedSeconds != 40 {
		t.Fatalf("laptop must mirror the phone segment, got %+v", restored)
	}

	paused, err := laptop.focus.Pause(ctx)
	if err != nil {
		t.Fatalf("laptop pause: %v", err)
	}
	if paused.Status != "paused" || paused.AccumulatedSeconds != 40 {
		t.Fatalf("unexpected paused state %+v", paused)
	}

	for i := 0; i < 10; i++ {
		phone.focus.Tick(ctx)
	}
	polled, err := phone.focus.Poll(ctx)
	if err != nil {
		t.Fatalf("phone poll: %v", err)
	}
	if polled.Status != "running" {
		t.Fatalf("one missed poll must not close the segment, got %+v", polled)
	}
	polled, err = phone.focus.Poll(ctx)
	if err != nil {
		t.Fatalf("phone second poll: %v", err)
	}
	if polled.Status != "paused" {
		t.Fatalf("phone must see the external pause, got %+v", polled)
	}

	recent := phone.focus.RecentSessions(ctx)
	if len(recent.Sessions) != 1 {
		t.Fatalf("expected the laptop session only, got %+v", recent.Sessions)
	}
	if recent.Sessions[0].IsInterrupted || recent.Sessions[0].DurationSeconds != 40 {
		t.Fatalf("unexpected session %+v", recent.Sessions[0])
	}
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	d := h.device("phone")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.focus.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
