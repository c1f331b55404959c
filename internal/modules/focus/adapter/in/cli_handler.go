package in

import (
	"context"

	focusdto "studytrack/internal/modules/focus/dto"
	focusin "studytrack/internal/modules/focus/port/in"
)

// CLIHandler runs one transition per process, so every call restores the
// persisted state first.
type CLIHandler struct {
	usecase focusin.Usecase
}

func NewCLIHandler(usecase focusin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, subjectID string) (focusdto.StateOutput, error) {
	if _, err := h.usecase.Restore(ctx); err != nil {
		return focusdto.StateOutput{}, err
	}
	return h.usecase.Start(ctx, focusdto.StartInput{SubjectID: subjectID})
}

func (h CLIHandler) Pause(ctx context.Context) (focusdto.StateOutput, error) {
	if _, err := h.usecase.Restore(ctx); err != nil {
		return focusdto.StateOutput{}, err
	}
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (focusdto.StateOutput, error) {
	if _, err := h.usecase.Restore(ctx); err != nil {
		return focusdto.StateOutput{}, err
	}
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (focusdto.StateOutput, error) {
	if _, err := h.usecase.Restore(ctx); err != nil {
		return focusdto.StateOutput{}, err
	}
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (focusdto.StateOutput, error) {
	return h.usecase.Restore(ctx)
}

func (h CLIHandler) Sessions(ctx context.Context) (focusdto.RecentSessionsOutput, error) {
	if _, err := h.usecase.Restore(ctx); err != nil {
		return focusdto.RecentSessionsOutput{}, err
	}
	return h.usecase.RecentSessions(ctx), nil
}
