package out

import (
	"context"

	"studytrack/internal/modules/analytics/domain"
	analyticsout "studytrack/internal/modules/analytics/port/out"
	focusin "studytrack/internal/modules/focus/port/in"
)

type FocusSessionSource struct {
	focus focusin.Usecase
}

func NewFocusSessionSource(focus focusin.Usecase) analyticsout.SessionSource {
	return &FocusSessionSource{focus: focus}
}

func (a *FocusSessionSource) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	recent := a.focus.RecentSessions(ctx)
	snap := domain.Snapshot{Revision: recent.Revision, Records: make([]domain.Record, 0, len(recent.Sessions))}
	for _, s := range recent.Sessions {
		snap.Records = append(snap.Records, domain.Record{
			ID:          s.ID,
			SubjectID:   s.SubjectID,
			Start:       s.StartTime,
			End:         s.EndTime,
			Description: s.Description,
			Interrupted: s.IsInterrupted,
		})
	}
	if st := a.focus.State(ctx); st.Status == "running" && st.StartTime != nil {
		snap.Live = &domain.LiveSegment{SubjectID: st.SubjectID, StartTime: *st.StartTime, ElapsedSeconds: st.ElapsedSeconds}
	}
	return snap, nil
}
