package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "studytrack/internal/platform/errors"
)

type MarkerStatus string

const (
	MarkerRunning MarkerStatus = "running"
	MarkerPaused  MarkerStatus = "paused"
)

// Marker is the durable record saying a segment is open. At most one marker
// per owner has status running.
type Marker struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	SubjectID string       `json:"subject_id"`
	StartTime time.Time    `json:"start_time"`
	Status    MarkerStatus `json:"status"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CachedMarker mirrors a marker locally. Pending marks a start intent the
// store has not confirmed yet.
type CachedMarker struct {
	Marker  Marker `json:"marker"`
	Pending bool   `json:"pending"`
}

// Session is a completed, immutable focus segment.
type Session struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	SubjectID     string    `json:"subject_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Description   string    `json:"description,omitempty"`
	IsInterrupted bool      `json:"is_interrupted"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.SubjectID) == "" {
		return fmt.Errorf("%w: session subject is required", apperrors.ErrInvalidInput)
	}
	if s.EndTime.Before(s.StartTime) {
		return fmt.Errorf("%w: session ends before it starts", apperrors.ErrInvalidInput)
	}
	return nil
}

func (s Session) Seconds() int64 {
	return ElapsedSeconds(s.StartTime, s.EndTime)
}

// SessionFilter narrows a session query. Zero fields do not filter.
type SessionFilter struct {
	OwnerID   string
	SubjectID string
	StartTime time.Time
	From      time.Time
	To        time.Time
	Limit     int
}

// PausedDraft carries the accumulation chain across a pause, including
// across process restarts.
type PausedDraft struct {
	AccumulatedSeconds int64  `json:"accumulated_seconds"`
	LastSubjectID      string `json:"last_subject_id"`
}

// ElapsedSeconds is the whole seconds from start to end, never negative.
func ElapsedSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
