package usecase

import (
	"context"

	"studytrack/internal/modules/analytics/domain"
	analyticsdto "studytrack/internal/modules/analytics/dto"
	analyticsin "studytrack/internal/modules/analytics/port/in"
	"studytrack/internal/modules/analytics/service"
)

const deletedSubjectColor = "#6c7086"

type Interactor struct {
	svc *service.AnalyticsService
}

func NewInteractor(svc *service.AnalyticsService) analyticsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Summary(ctx context.Context, input analyticsdto.SummaryInput) (analyticsdto.SummaryOutput, error) {
	w, err := domain.ParseWindow(input.Window)
	if err != nil {
		return analyticsdto.SummaryOutput{}, err
	}
	report, err := i.svc.Report(ctx, w)
	if err != nil {
		return analyticsdto.SummaryOutput{}, err
	}
	subjects := i.svc.Subjects(ctx)

	out := analyticsdto.SummaryOutput{
		Window:      report.Window.String(),
		From:        report.From,
		Today:       report.Today,
		Week:        report.Week,
		Month:       report.Month,
		WindowTotal: report.WindowTotal,
		Formatted:   domain.FormatHoursMinutes(report.WindowTotal),
		Subjects:    make([]analyticsdto.SubjectTotalOutput, 0, len(report.Subjects)),
		Daily:       toDays(report.Daily),
		Heatmap:     toDays(report.Heatmap),
		Hourly:      report.Hourly[:],
		Streak:      report.Streak,
	}
	for _, total := range report.Subjects {
		item := analyticsdto.SubjectTotalOutput{
			SubjectID: total.SubjectID,
			Name:      total.SubjectID,
			Color:     deletedSubjectColor,
			Seconds:   total.Seconds,
			Formatted: domain.FormatHoursMinutes(total.Seconds),
			Deleted:   true,
		}
		if subject, ok := subjects[total.SubjectID]; ok {
			item.Name = subject.Name
			item.Color = subject.Color
			item.Deleted = false
		}
		out.Subjects = append(out.Subjects, item)
	}
	return out, nil
}

func (i *Interactor) ExportJournal(ctx context.Context, input analyticsdto.ExportInput) (analyticsdto.ExportOutput, error) {
	notes, err := i.svc.ExportJournal(ctx, input.Days)
	if err != nil {
		return analyticsdto.ExportOutput{Notes: notes}, err
	}
	return analyticsdto.ExportOutput{Notes: notes}, nil
}

func toDays(days []domain.DayTotal) []analyticsdto.DayOutput {
	out := make([]analyticsdto.DayOutput, 0, len(days))
	for _, d := range days {
		out = append(out, analyticsdto.DayOutput{Day: d.Day, Seconds: d.Seconds})
	}
	return out
}
