package dto

import "time"

type SummaryInput struct {
	Window string
}

type SubjectTotalOutput struct {
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
	Deleted   bool   `json:"deleted,omitempty"`
}

type DayOutput struct {
	Day     string `json:"day"`
	Seconds int64  `json:"seconds"`
}

type SummaryOutput struct {
	Window      string               `json:"window"`
	From        time.Time            `json:"from"`
	Today       int64                `json:"today_seconds"`
	Week        int64                `json:"week_seconds"`
	Month       int64                `json:"month_seconds"`
	WindowTotal int64                `json:"window_seconds"`
	Formatted   string               `json:"formatted"`
	Subjects    []SubjectTotalOutput `json:"subjects"`
	Daily       []DayOutput          `json:"daily"`
	Heatmap     []DayOutput          `json:"heatmap"`
	Hourly      []int64              `json:"hourly"`
	Streak      int                  `json:"streak"`
}

type ExportInput struct {
	Days int
}

type ExportOutput struct {
	Notes []string `json:"notes"`
}
