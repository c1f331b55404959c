package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"studytrack/internal/modules/analytics/domain"
	analyticsout "studytrack/internal/modules/analytics/port/out"
	"studytrack/internal/platform/clock"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/markdown"
	"studytrack/internal/platform/slug"
)

const memoSize = 64

var sessionsBlock = markdown.NewBlock("sessions")

// memoKey identifies one aggregation input: the history revision, the
// window, the local day it was computed on and the live segment.
type memoKey struct {
	revision    uint64
	window      string
	day         string
	liveSubject string
	liveStart   int64
	liveElapsed int64
}

type AnalyticsService struct {
	clock   clock.Clock
	loc     *time.Location
	source  analyticsout.SessionSource
	catalog analyticsout.SubjectCatalog
	journal analyticsout.JournalStore
	memo    *lru.Cache[memoKey, domain.Report]
	logger  *slog.Logger
}

func NewAnalyticsService(
	clock clock.Clock,
	loc *time.Location,
	source analyticsout.SessionSource,
	catalog analyticsout.SubjectCatalog,
	journal analyticsout.JournalStore,
	logger *slog.Logger,
) (*AnalyticsService, error) {
	memo, err := lru.New[memoKey, domain.Report](memoSize)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{clock: clock, loc: loc, source: source, catalog: catalog, journal: journal, memo: memo, logger: logger}, nil
}

// Report aggregates the current history for w, reusing the previous result
// while none of its inputs changed.
func (s *AnalyticsService) Report(ctx context.Context, w domain.Window) (domain.Report, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load sessions: %w", err)
	}
	now := s.clock.Now()
	key := memoKey{revision: snap.Revision, window: w.String(), day: domain.DayKey(now, s.loc)}
	if snap.Live != nil {
		key.liveSubject = snap.Live.SubjectID
		key.liveStart = snap.Live.StartTime.UnixMicro()
		key.liveElapsed = snap.Live.ElapsedSeconds
	}
	if report, ok := s.memo.Get(key); ok {
		return report, nil
	}
	report := domain.BuildReport(snap, w, now, s.loc)
	s.memo.Add(key, report)
	return report, nil
}

// Subjects indexes the catalog by id. A catalog failure yields an empty
// index so totals still render under raw ids.
func (s *AnalyticsService) Subjects(ctx context.Context) map[string]domain.SubjectInfo {
	subjects, err := s.catalog.Subjects(ctx)
	if err != nil {
		s.logger.Warn("load subjects for analytics failed", "error", err)
		return map[string]domain.SubjectInfo{}
	}
	out := make(map[string]domain.SubjectInfo, len(subjects))
	for _, subject := range subjects {
		out[subject.ID] = subject
	}
	return out
}

// ExportJournal writes one note per active day among the last days, keeping
// whatever the user wrote outside the generated block.
func (s *AnalyticsService) ExportJournal(ctx context.Context, days int) ([]string, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", apperrors.ErrInvalidInput)
	}
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	subjects := s.Subjects(ctx)
	now := s.clock.Now()

	byDay := map[string][]domain.Record{}
	for _, r := range snap.Records {
		day := domain.DayKey(r.Start, s.loc)
		byDay[day] = append(byDay[day], r)
	}

	written := []string{}
	for _, day := range domain.LastNDays(now, s.loc, days) {
		records := byDay[day]
		if len(records) == 0 {
			continue
		}
		sort.Slice(records, func(i, j int) bool { return records[i].Start.Before(records[j].Start) })
		path, err := s.writeDay(ctx, day, records, subjects, now)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	s.logger.Info("journal exported", "days", days, "notes", len(written))
	return written, nil
}

func (s *AnalyticsService) writeDay(ctx context.Context, day string, records []domain.Record, subjects map[string]domain.SubjectInfo, now time.Time) (string, error) {
	existing, found, err := s.journal.Read(ctx, day)
	if err != nil {
		return "", fmt.Errorf("read journal %s: %w", day, err)
	}
	meta, body := map[string]any{}, ""
	if found {
		meta, body, err = markdown.SplitFrontmatter(existing)
		if err != nil {
			return "", fmt.Errorf("journal %s: %w", day, err)
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "# Study log " + day + "\n"
	}

	var (
		total int64
		lines []string
		names []string
		seen  = map[string]bool{}
	)
	for _, r := range records {
		seconds := domain.TotalSeconds([]domain.Entry{r.Entry()}, nil, time.Time{}, now)
		total += seconds
		name := subjectName(subjects, r.SubjectID)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		line := fmt.Sprintf("- %s-%s %s %s", r.Start.In(s.loc).Format("15:04"), r.End.In(s.loc).Format("15:04"), slug.WikiLink(name), domain.FormatHoursMinutes(seconds))
		if r.Interrupted {
			line += " (interrupted)"
		}
		if r.Description != "" {
			line += ": " + r.Description
		}
		lines = append(lines, line)
	}

	meta = markdown.Merge(meta, map[string]any{
		"date":          day,
		"total_seconds": total,
		"total":         domain.FormatHoursMinutes(total),
		"sessions":      len(records),
		"subjects":      names,
	})
	content, err := markdown.RenderFrontmatter(meta, sessionsBlock.Replace(body, strings.Join(lines, "\n")))
	if err != nil {
		return "", err
	}
	path, err := s.journal.Write(ctx, day, content)
	if err != nil {
		return "", fmt.Errorf("write journal %s: %w", day, err)
	}
	return path, nil
}

func subjectName(subjects map[string]domain.SubjectInfo, id string) string {
	if subject, ok := subjects[id]; ok && subject.Name != "" {
		return subject.Name
	}
	return id
}
