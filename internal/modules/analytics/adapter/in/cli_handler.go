package in

import (
	"context"

	analyticsdto "studytrack/internal/modules/analytics/dto"
	analyticsin "studytrack/internal/modules/analytics/port/in"
)

type CLIHandler struct {
	usecase analyticsin.Usecase
}

func NewCLIHandler(usecase analyticsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Stats(ctx context.Context, window string) (analyticsdto.SummaryOutput, error) {
	return h.usecase.Summary(ctx, analyticsdto.SummaryInput{Window: window})
}

func (h CLIHandler) ExportJournal(ctx context.Context, days int) (analyticsdto.ExportOutput, error) {
	return h.usecase.ExportJournal(ctx, analyticsdto.ExportInput{Days: days})
}
