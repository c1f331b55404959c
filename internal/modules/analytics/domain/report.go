package domain

import "time"

// Record is a completed session with the fields the journal prints.
type Record struct {
	ID          string
	SubjectID   string
	Start       time.Time
	End         time.Time
	Description string
	Interrupted bool
}

func (r Record) Entry() Entry {
	return Entry{SubjectID: r.SubjectID, Start: r.Start, End: r.End}
}

// Snapshot is the session history at one revision plus the live segment.
type Snapshot struct {
	Revision uint64
	Records  []Record
	Live     *LiveSegment
}

func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.Entry())
	}
	return out
}

type SubjectInfo struct {
	ID    string
	Name  string
	Color string
}

// Report is the aggregate view of one window. Subject names are joined in
// later, so a Report stays valid across subject renames.
type Report struct {
	Window      Window
	From        time.Time
	Today       int64
	Week        int64
	Month       int64
	WindowTotal int64
	Subjects    []SubjectTotal
	Daily       []DayTotal
	Heatmap     []DayTotal
	Hourly      [24]int64
	Streak      int
}

const (
	TrendDays   = 14
	HeatmapDays = 30
)

// BuildReport folds a snapshot into every metric the dashboard shows.
func BuildReport(snap Snapshot, w Window, now time.Time, loc *time.Location) Report {
	entries := snap.Entries()
	from := w.Start(now, loc)
	heat := Heatmap(entries, snap.Live, now, loc)

	heatDays := LastNDays(now, loc, HeatmapDays)
	heatmap := make([]DayTotal, 0, len(heatDays))
	for _, day := range heatDays {
		heatmap = append(heatmap, DayTotal{Day: day, Seconds: heat[day]})
	}

	return Report{
		Window:      w,
		From:        from,
		Today:       TotalSeconds(entries, snap.Live, Window{Kind: WindowToday}.Start(now, loc), now),
		Week:        TotalSeconds(entries, snap.Live, Window{Kind: WindowWeek}.Start(now, loc), now),
		Month:       TotalSeconds(entries, snap.Live, Window{Kind: WindowMonth}.Start(now, loc), now),
		WindowTotal: TotalSeconds(entries, snap.Live, from, now),
		Subjects:    PerSubjectSeconds(entries, snap.Live, from, now),
		Daily:       DailyTrend(entries, snap.Live, TrendDays, now, loc),
		Heatmap:     heatmap,
		Hourly:      HourlyPattern(entries, now, loc),
		Streak:      Streak(heat, now, loc),
	}
}
