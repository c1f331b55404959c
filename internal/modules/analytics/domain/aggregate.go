package domain

import (
	"fmt"
	"sort"
	"time"
)

// Entry is a completed session as the aggregator sees it.
type Entry struct {
	SubjectID string
	Start     time.Time
	End       time.Time
}

// LiveSegment is the running, not yet recorded segment.
type LiveSegment struct {
	SubjectID      string
	StartTime      time.Time
	ElapsedSeconds int64
}

type SubjectTotal struct {
	SubjectID string
	Seconds   int64
}

type DayTotal struct {
	Day     string
	Seconds int64
}

// duration is min(end, now) - start, clamped at zero.
func duration(e Entry, now time.Time) time.Duration {
	end := e.End
	if end.IsZero() || end.After(now) {
		end = now
	}
	if d := end.Sub(e.Start); d > 0 {
		return d
	}
	return 0
}

func liveSeconds(live *LiveSegment) int64 {
	if live == nil || live.ElapsedSeconds < 0 {
		return 0
	}
	return live.ElapsedSeconds
}

// TotalSeconds sums entries starting at or after from, plus the live
// segment when it started inside the window.
func TotalSeconds(entries []Entry, live *LiveSegment, from, now time.Time) int64 {
	var sum time.Duration
	for _, e := range entries {
		if e.Start.Before(from) {
			continue
		}
		sum += duration(e, now)
	}
	total := int64(sum / time.Second)
	if live != nil && !live.StartTime.Before(from) {
		total += liveSeconds(live)
	}
	return total
}

// PerSubjectSeconds groups TotalSeconds by subject, largest first. Subjects
// with nothing recorded are left out.
func PerSubjectSeconds(entries []Entry, live *LiveSegment, from, now time.Time) []SubjectTotal {
	sums := map[string]time.Duration{}
	for _, e := range entries {
		if e.Start.Before(from) {
			continue
		}
		sums[e.SubjectID] += duration(e, now)
	}
	totals := map[string]int64{}
	for subjectID, d := range sums {
		totals[subjectID] = int64(d / time.Second)
	}
	if live != nil && !live.StartTime.Before(from) {
		totals[live.SubjectID] += liveSeconds(live)
	}

	out := make([]SubjectTotal, 0, len(totals))
	for subjectID, seconds := range totals {
		if seconds <= 0 {
			continue
		}
		out = append(out, SubjectTotal{SubjectID: subjectID, Seconds: seconds})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out
}

// Heatmap buckets every entry by the local day it started on. Days with
// no activity are absent.
func Heatmap(entries []Entry, live *LiveSegment, now time.Time, loc *time.Location) map[string]int64 {
	sums := map[string]time.Duration{}
	for _, e := range entries {
		sums[DayKey(e.Start, loc)] += duration(e, now)
	}
	out := make(map[string]int64, len(sums)+1)
	for day, d := range sums {
		if seconds := int64(d / time.Second); seconds > 0 {
			out[day] = seconds
		}
	}
	if seconds := liveSeconds(live); seconds > 0 {
		out[DayKey(live.StartTime, loc)] += seconds
	}
	return out
}

// LastNDays lists the last n local days ending today, oldest first.
func LastNDays(now time.Time, loc *time.Location, n int) []string {
	if n <= 0 {
		return []string{}
	}
	today := StartOfDay(now, loc)
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, today.AddDate(0, 0, -i).Format(time.DateOnly))
	}
	return out
}

// DailyTrend is the dense form of Heatmap over the last days, oldest
// first, with zero-activity days included.
func DailyTrend(entries []Entry, live *LiveSegment, days int, now time.Time, loc *time.Location) []DayTotal {
	heat := Heatmap(entries, live, now, loc)
	keys := LastNDays(now, loc, days)
	out := make([]DayTotal, 0, len(keys))
	for _, day := range keys {
		out = append(out, DayTotal{Day: day, Seconds: heat[day]})
	}
	return out
}

// HourlyPattern attributes each whole entry to the local hour it started in.
func HourlyPattern(entries []Entry, now time.Time, loc *time.Location) [24]int64 {
	var sums [24]time.Duration
	for _, e := range entries {
		sums[e.Start.In(loc).Hour()] += duration(e, now)
	}
	var out [24]int64
	for hour, d := range sums {
		out[hour] = int64(d / time.Second)
	}
	return out
}

// Streak counts consecutive active days ending today. A quiet today is a
// streak of zero regardless of earlier days.
func Streak(heatmap map[string]int64, now time.Time, loc *time.Location) int {
	today := StartOfDay(now, loc)
	streak := 0
	for {
		day := today.AddDate(0, 0, -streak).Format(time.DateOnly)
		if heatmap[day] <= 0 {
			return streak
		}
		streak++
	}
}

// FormatHoursMinutes renders seconds as "1h 5m", or "5m" under an hour.
func FormatHoursMinutes(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
