package in

import (
	"context"

	"studytrack/internal/modules/focus/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	Pause(ctx context.Context) (dto.StateOutput, error)
	Resume(ctx context.Context) (dto.StateOutput, error)
	Stop(ctx context.Context) (dto.StateOutput, error)
	Restore(ctx context.Context) (dto.StateOutput, error)
	Poll(ctx context.Context) (dto.StateOutput, error)
	State(ctx context.Context) dto.StateOutput
	Tick(ctx context.Context) dto.StateOutput
	RecentSessions(ctx context.Context) dto.RecentSessionsOutput
	// Run ticks every second and polls the store until ctx is done.
	Run(ctx context.Context) error
}
