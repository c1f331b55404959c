package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "studytrack/internal/platform/errors"
)

type WindowKind string

const (
	WindowToday WindowKind = "today"
	WindowWeek  WindowKind = "week"
	WindowMonth WindowKind = "month"
	WindowDays  WindowKind = "days"
)

// Window scopes aggregation to sessions starting at or after its start.
type Window struct {
	Kind WindowKind
	Days int
}

// ParseWindow accepts today, week, month or a day count such as 7d or 30.
func ParseWindow(raw string) (Window, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "", string(WindowWeek):
		return Window{Kind: WindowWeek}, nil
	case string(WindowToday), "day":
		return Window{Kind: WindowToday}, nil
	case string(WindowMonth):
		return Window{Kind: WindowMonth}, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil || n <= 0 {
		return Window{}, fmt.Errorf("%w: window %q", apperrors.ErrInvalidInput, raw)
	}
	return Window{Kind: WindowDays, Days: n}, nil
}

func (w Window) String() string {
	if w.Kind == WindowDays {
		return fmt.Sprintf("%dd", w.Days)
	}
	return string(w.Kind)
}

// Start returns the local midnight the window opens at. Weeks start on
// Sunday; a day window of N covers today and the N-1 days before it.
func (w Window) Start(now time.Time, loc *time.Location) time.Time {
	today := StartOfDay(now, loc)
	switch w.Kind {
	case WindowWeek:
		return today.AddDate(0, 0, -int(today.Weekday()))
	case WindowMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	case WindowDays:
		return today.AddDate(0, 0, -(w.Days - 1))
	default:
		return today
	}
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayKey is the local calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}
