package stats

import (
	"context"
	"strings"
	"testing"

	analyticsdto "studytrack/internal/modules/analytics/dto"
)

type stubStats struct{ windows []string }

func (s *stubStats) Summary(_ context.Context, in analyticsdto.SummaryInput) (analyticsdto.SummaryOutput, error) {
	s.windows = append(s.windows, in.Window)
	return analyticsdto.SummaryOutput{
		Window: in.Window,
		Today:  1800,
		Subjects: []analyticsdto.SubjectTotalOutput{
			{SubjectID: "gone", Name: "gone", Color: "#6c7086", Seconds: 600, Formatted: "10m", Deleted: true},
		},
	}, nil
}

func TestWindowCyclesAndReloads(t *testing.T) {
	t.Parallel()
	port := &stubStats{}
	m := New(port)
	if m.Window() != "week" {
		t.Fatalf("expected week by default, got %s", m.Window())
	}
	cmd := m.SetWindow(nextWindow(m.Window()))
	msg := cmd().(SummaryLoadedMsg)
	if m.Window() != "month" || port.windows[0] != "month" {
		t.Fatalf("expected month reload, got %s / %v", m.Window(), port.windows)
	}
	m, _ = m.Update(msg)
	if !strings.Contains(m.render(), "gone (deleted)") {
		t.Fatalf("deleted subjects must stay visible")
	}
	if nextWindow("month") != "today" || nextWindow("30d") != "today" {
		t.Fatalf("window cycle must wrap to today")
	}
}

func TestSparklineScalesToPeak(t *testing.T) {
	t.Parallel()
	got := []rune(sparkline([]int64{0, 5, 10}))
	if got[0] != ' ' || got[2] != '█' || got[1] == '█' {
		t.Fatalf("unexpected sparkline %q", string(got))
	}
	if sparkline(make([]int64, 3)) != "   " {
		t.Fatalf("empty pattern must render blanks")
	}
}

func TestNilPortLoadsEmptySummary(t *testing.T) {
	t.Parallel()
	msg := New(nil).Refresh()()
	if loaded, ok := msg.(SummaryLoadedMsg); !ok || loaded.Err != nil {
		t.Fatalf("expected empty summary, got %#v", msg)
	}
}
