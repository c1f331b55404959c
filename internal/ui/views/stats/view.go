package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "studytrack/internal/modules/analytics/dto"
	"studytrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StatsPort interface {
	Summary(ctx context.Context, input analyticsdto.SummaryInput) (analyticsdto.SummaryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SummaryLoadedMsg struct {
	Summary analyticsdto.SummaryOutput
	Err     error
}

var windows = []string{"today", "week", "month"}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    StatsPort
	window  string
	summary analyticsdto.SummaryOutput
	errText string
	body    viewport.Model
	width   int
	height  int
}

func New(port StatsPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	return Model{port: port, window: "week", body: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.body.Width = max(m.width-2, 1)
		m.body.Height = max(m.height-2, 1)
		m.body.SetContent(m.render())

	case SummaryLoadedMsg:
		if msg.Err != nil {
			m.errText = msg.Err.Error()
		} else {
			m.errText = ""
			m.summary = msg.Summary
		}
		m.body.SetContent(m.render())
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "w" {
			m.window = nextWindow(m.window)
			return m, m.Refresh()
		}
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(max(m.width-2, 1)).
		Height(max(m.height-2, 1)).
		Render(m.body.View())
}

// SetWindow switches the window and returns the reload command.
func (m *Model) SetWindow(window string) tea.Cmd {
	m.window = window
	return m.Refresh()
}

func (m Model) Window() string { return m.window }

func (m Model) Refresh() tea.Cmd {
	window := m.window
	return func() tea.Msg {
		if m.port == nil {
			return SummaryLoadedMsg{}
		}
		out, err := m.port.Summary(context.Background(), analyticsdto.SummaryInput{Window: window})
		return SummaryLoadedMsg{Summary: out, Err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func nextWindow(current string) string {
	for i, w := range windows {
		if w == current {
			return windows[(i+1)%len(windows)]
		}
	}
	return windows[0]
}

func (m Model) render() string {
	s := m.summary
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Stats: "+m.window) + "  " + theme.Muted.Render("w: cycle window") + "\n\n")
	if m.errText != "" {
		sb.WriteString(theme.Warn.Render(m.errText) + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %d days\n\n",
		theme.Muted.Render("today"), hours(s.Today),
		theme.Muted.Render("week"), hours(s.Week),
		theme.Muted.Render("month"), hours(s.Month),
		theme.Muted.Render("streak"), s.Streak))

	sb.WriteString(theme.Title.Render("Subjects") + "\n")
	var top int64
	for _, subject := range s.Subjects {
		top = max(top, subject.Seconds)
	}
	for _, subject := range s.Subjects {
		name := subject.Name
		if subject.Deleted {
			name += " (deleted)"
		}
		sb.WriteString(fmt.Sprintf(" %-20s %8s %s\n", truncate(name, 20), subject.Formatted, theme.Bar(subject.Seconds, top, 24, subject.Color)))
	}
	if len(s.Subjects) == 0 {
		sb.WriteString(theme.Muted.Render(" nothing recorded in this window") + "\n")
	}

	sb.WriteString("\n" + theme.Title.Render("Last 14 days") + "\n")
	var peak int64
	for _, day := range s.Daily {
		peak = max(peak, day.Seconds)
	}
	for _, day := range s.Daily {
		sb.WriteString(fmt.Sprintf(" %s %6s %s\n", day.Day, hours(day.Seconds), theme.Bar(day.Seconds, peak, 24, string(theme.Sapphire))))
	}

	sb.WriteString("\n" + theme.Title.Render("Last 30 days") + "\n ")
	for _, day := range s.Heatmap {
		sb.WriteString(heatCell(day.Seconds))
	}
	sb.WriteString("\n\n" + theme.Title.Render("By hour started") + "\n " + sparkline(s.Hourly) + "\n")
	sb.WriteString(theme.Muted.Render(" 0     6     12    18   23") + "\n")
	return sb.String()
}

var sparks = []rune("▁▂▃▄▅▆▇█")

func sparkline(values []int64) string {
	var top int64
	for _, v := range values {
		top = max(top, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		if top == 0 || v == 0 {
			out[i] = ' '
			continue
		}
		out[i] = sparks[int(v*int64(len(sparks)-1)/top)]
	}
	return string(out)
}

func hours(seconds int64) string {
	return fmt.Sprintf("%.1fh", float64(seconds)/3600)
}

func heatCell(seconds int64) string {
	switch {
	case seconds <= 0:
		return theme.Muted.Render("·")
	case seconds < 30*60:
		return lipgloss.NewStyle().Foreground(theme.Surface1).Render("■")
	case seconds < 2*60*60:
		return lipgloss.NewStyle().Foreground(theme.Sapphire).Render("■")
	default:
		return lipgloss.NewStyle().Foreground(theme.Green).Render("■")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
