package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"studytrack/internal/modules/focus/domain"
	focusdto "studytrack/internal/modules/focus/dto"
	focusin "studytrack/internal/modules/focus/port/in"
	"studytrack/internal/modules/focus/service"
	subjectin "studytrack/internal/modules/subject/port/in"
	apperrors "studytrack/internal/platform/errors"
)

type Options struct {
	PollInterval time.Duration
	PollJitter   time.Duration
}

type Interactor struct {
	svc      *service.Reconciler
	subjects subjectin.Usecase
	opts     Options
	logger   *slog.Logger
}

func NewInteractor(svc *service.Reconciler, subjects subjectin.Usecase, logger *slog.Logger, opts Options) focusin.Usecase {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.PollJitter < 0 {
		opts.PollJitter = 0
	}
	return &Interactor{svc: svc, subjects: subjects, opts: opts, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input focusdto.StartInput) (focusdto.StateOutput, error) {
	if input.SubjectID == "" {
		return toState(i.svc.State()), fmt.Errorf("%w: subject id is required", apperrors.ErrInvalidInput)
	}
	if _, err := i.subjects.Get(ctx, input.SubjectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return toState(i.svc.State()), fmt.Errorf("%w: %s", apperrors.ErrUnknownSubject, input.SubjectID)
		}
		return toState(i.svc.State()), err
	}
	st, err := i.svc.Start(ctx, input.SubjectID)
	return toState(st), err
}

func (i *Interactor) Pause(ctx context.Context) (focusdto.StateOutput, error) {
	st, err := i.svc.Pause(ctx)
	return toState(st), err
}

func (i *Interactor) Resume(ctx context.Context) (focusdto.StateOutput, error) {
	st, err := i.svc.Resume(ctx)
	return toState(st), err
}

func (i *Interactor) Stop(ctx context.Context) (focusdto.StateOutput, error) {
	st, err := i.svc.Stop(ctx)
	return toState(st), err
}

func (i *Interactor) Restore(ctx context.Context) (focusdto.StateOutput, error) {
	st, err := i.svc.Restore(ctx)
	return toState(st), err
}

func (i *Interactor) Poll(ctx context.Context) (focusdto.StateOutput, error) {
	st, err := i.svc.Poll(ctx)
	return toState(st), err
}

func (i *Interactor) State(context.Context) focusdto.StateOutput {
	return toState(i.svc.State())
}

func (i *Interactor) Tick(context.Context) focusdto.StateOutput {
	i.svc.Tick()
	return toState(i.svc.State())
}

func (i *Interactor) RecentSessions(context.Context) focusdto.RecentSessionsOutput {
	sessions, revision := i.svc.RecentSessions()
	out := focusdto.RecentSessionsOutput{Revision: revision, Sessions: make([]focusdto.SessionOutput, 0, len(sessions))}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, toSession(s))
	}
	return out
}

func (i *Interactor) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	poll := time.NewTimer(i.nextPoll())
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			i.svc.Tick()
		case <-poll.C:
			if _, err := i.svc.Poll(ctx); err != nil {
				i.logger.Warn("focus poll failed", "error", err)
			}
			poll.Reset(i.nextPoll())
		}
	}
}

func (i *Interactor) nextPoll() time.Duration {
	if i.opts.PollJitter <= 0 {
		return i.opts.PollInterval
	}
	return i.opts.PollInterval + time.Duration(rand.Int63n(int64(i.opts.PollJitter)))
}

func toState(st domain.FocusState) focusdto.StateOutput {
	out := focusdto.StateOutput{
		Status:             string(st.Phase),
		ElapsedSeconds:     st.ElapsedSeconds,
		AccumulatedSeconds: st.AccumulatedSeconds,
		DisplaySeconds:     st.DisplaySeconds(),
		LastSubjectID:      st.LastSubjectID,
	}
	if st.IsRunning() {
		start := st.Segment.StartTime
		out.SubjectID = st.Segment.SubjectID
		out.MarkerID = st.Segment.MarkerID
		out.StartTime = &start
		out.Pending = st.Segment.Pending
	}
	return out
}

func toSession(s domain.Session) focusdto.SessionOutput {
	return focusdto.SessionOutput{
		ID:              s.ID,
		SubjectID:       s.SubjectID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationSeconds: s.Seconds(),
		Description:     s.Description,
		IsInterrupted:   s.IsInterrupted,
	}
}
