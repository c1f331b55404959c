package in

import (
	"context"

	"studytrack/internal/modules/analytics/dto"
)

type Usecase interface {
	Summary(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error)
	ExportJournal(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
