package dto

import "time"

type StartInput struct {
	SubjectID string
}

type StateOutput struct {
	Status             string     `json:"status"`
	SubjectID          string     `json:"subject_id,omitempty"`
	MarkerID           string     `json:"marker_id,omitempty"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	ElapsedSeconds     int64      `json:"elapsed_seconds"`
	AccumulatedSeconds int64      `json:"accumulated_seconds"`
	DisplaySeconds     int64      `json:"display_seconds"`
	LastSubjectID      string     `json:"last_subject_id,omitempty"`
	Pending            bool       `json:"pending"`
}

type SessionOutput struct {
	ID              string    `json:"id"`
	SubjectID       string    `json:"subject_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	Description     string    `json:"description,omitempty"`
	IsInterrupted   bool      `json:"is_interrupted"`
}

// RecentSessionsOutput carries a revision that changes whenever the
// session history does, so readers can skip recomputation.
type RecentSessionsOutput struct {
	Revision uint64          `json:"revision"`
	Sessions []SessionOutput `json:"sessions"`
}
