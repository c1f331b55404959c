package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analyticsdto "studytrack/internal/modules/analytics/dto"
	focusdto "studytrack/internal/modules/focus/dto"
	subjectdto "studytrack/internal/modules/subject/dto"
	"studytrack/internal/ui/components"
	"studytrack/internal/ui/theme"
	focusview "studytrack/internal/ui/views/focus"
	statsview "studytrack/internal/ui/views/stats"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type focusPort interface {
	Start(ctx context.Context, input focusdto.StartInput) (focusdto.StateOutput, error)
	Pause(ctx context.Context) (focusdto.StateOutput, error)
	Resume(ctx context.Context) (focusdto.StateOutput, error)
	Stop(ctx context.Context) (focusdto.StateOutput, error)
	Restore(ctx context.Context) (focusdto.StateOutput, error)
	Poll(ctx context.Context) (focusdto.StateOutput, error)
	Tick(ctx context.Context) focusdto.StateOutput
}

type subjectPort interface {
	List(ctx context.Context) ([]subjectdto.SubjectOutput, error)
	Create(ctx context.Context, input subjectdto.CreateInput) (subjectdto.SubjectOutput, error)
}

type analyticsPort interface {
	Summary(ctx context.Context, input analyticsdto.SummaryInput) (analyticsdto.SummaryOutput, error)
	ExportJournal(ctx context.Context, input analyticsdto.ExportInput) (analyticsdto.ExportOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabFocus tabID = iota
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{"Focus", "Stats"}

// ─── async messages ──────────────────────────────────────────────────────────

type tickMsg time.Time

type stateMsg struct {
	action string
	state  focusdto.StateOutput
	err    error
}

type todayLoadedMsg struct {
	seconds int64
	elapsed int64
	err     error
}

type subjectCreatedMsg struct {
	subject subjectdto.SubjectOutput
	err     error
}

type exportedMsg struct {
	out analyticsdto.ExportOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Start   key.Binding
	Pause   key.Binding
	Resume  key.Binding
	Stop    key.Binding
	Window  key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start subject")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Window:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "stats window")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Resume, k.Stop},
		{k.Tab, k.Window},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the one-second
// tick, the periodic store poll, the help overlay and the command palette.
type Model struct {
	focus     focusPort
	subjects  subjectPort
	analytics analyticsPort

	focusView focusview.Model
	statsView statsview.Model

	state     focusdto.StateOutput
	today     int64
	todayAt   int64
	pollEvery int
	ticks     int
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel wires the ports. pollInterval is rounded to whole ticks.
func NewModel(focus focusPort, subjects subjectPort, analytics analyticsPort, pollInterval time.Duration) Model {
	every := int(pollInterval / time.Second)
	if every < 1 {
		every = 1
	}
	var stats statsview.StatsPort
	if analytics != nil {
		stats = analytics
	}
	return Model{
		focus:     focus,
		subjects:  subjects,
		analytics: analytics,
		focusView: focusview.New(subjects),
		statsView: statsview.New(stats),
		state:     focusdto.StateOutput{Status: "idle"},
		pollEvery: every,
		activeTab: tabFocus,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.focusView.Init(),
		m.statsView.Init(),
		m.transitionCmd("restore", m.focus.Restore),
		m.loadTodayCmd(),
		tick(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette takes all key input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tickMsg:
		m.ticks++
		m.state = m.focus.Tick(context.Background())
		m.focusView.SetState(m.state, m.todaySeconds())
		cmds = append(cmds, tick())
		if m.ticks%m.pollEvery == 0 {
			cmds = append(cmds, m.transitionCmd("poll", m.focus.Poll))
		}
		return m, tea.Batch(cmds...)

	case stateMsg:
		if msg.err != nil {
			if msg.action != "poll" {
				m.status = msg.action + ": " + msg.err.Error()
			}
			return m, nil
		}
		changed := msg.state.Status != m.state.Status || msg.state.MarkerID != m.state.MarkerID
		m.state = msg.state
		m.focusView.SetState(m.state, m.todaySeconds())
		if msg.action != "poll" {
			m.status = msg.action + ": " + m.describe(m.state)
		}
		if changed || msg.action != "poll" {
			return m, tea.Batch(m.loadTodayCmd(), m.statsView.Refresh())
		}
		return m, nil

	case todayLoadedMsg:
		if msg.err == nil {
			m.today = msg.seconds
			m.todayAt = msg.elapsed
			m.focusView.SetState(m.state, m.todaySeconds())
		}
		return m, nil

	case subjectCreatedMsg:
		if msg.err != nil {
			m.status = "subject:add: " + msg.err.Error()
			return m, nil
		}
		m.status = "subject added: " + msg.subject.Name
		return m, m.focusView.LoadSubjects()

	case exportedMsg:
		if msg.err != nil {
			m.status = "journal:export: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("journal: wrote %d notes", len(msg.out.Notes))
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case statsview.SummaryLoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case focusview.SubjectsLoadedMsg:
		var cmd tea.Cmd
		m.focusView, cmd = m.focusView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the subject list while its filter is open.
		if m.activeTab == tabFocus && m.focusView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "s":
			if m.activeTab == tabFocus {
				return m, m.startSelected()
			}
		case "p":
			return m, m.transitionCmd("pause", m.focus.Pause)
		case "r":
			return m, m.transitionCmd("resume", m.focus.Resume)
		case "x":
			return m, m.transitionCmd("stop", m.focus.Stop)
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabFocus:
		m.focusView, tabCmd = m.focusView.Update(msg)
	case tabStats:
		m.statsView, tabCmd = m.statsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabStats:
		content = m.statsView.View()
	default:
		content = m.focusView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	bar := "studytrack  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	switch m.state.Status {
	case "running":
		left = theme.Hot.Render("● "+m.focusView.SubjectName(m.state.SubjectID)+" "+focusview.FormatClock(m.state.DisplaySeconds)) + "  " + left
	case "paused":
		left = theme.Warn.Render("‖ "+focusview.FormatClock(m.state.DisplaySeconds)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "focus:start":
		if len(parts) >= 2 {
			return m, m.startCmd(parts[1])
		}
		return m, m.startSelected()

	case "focus:pause":
		return m, m.transitionCmd("pause", m.focus.Pause)

	case "focus:resume":
		return m, m.transitionCmd("resume", m.focus.Resume)

	case "focus:stop":
		return m, m.transitionCmd("stop", m.focus.Stop)

	case "focus:sync":
		return m, m.transitionCmd("sync", m.focus.Poll)

	case "subject:add":
		if len(parts) < 2 {
			m.status = "usage: subject:add <name> [#color]"
			return m, nil
		}
		in := subjectdto.CreateInput{Name: strings.Join(parts[1:], " ")}
		if last := parts[len(parts)-1]; len(parts) > 2 && strings.HasPrefix(last, "#") {
			in.Color = last
			in.Name = strings.Join(parts[1:len(parts)-1], " ")
		}
		return m, m.createSubjectCmd(in)

	case "stats:window":
		if len(parts) < 2 {
			m.status = "usage: stats:window <today|week|month|Nd>"
			return m, nil
		}
		m.activeTab = tabStats
		return m, m.statsView.SetWindow(parts[1])

	case "journal:export":
		days := 7
		if len(parts) >= 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n <= 0 {
				m.status = "invalid days: " + parts[1]
				return m, nil
			}
			days = n
		}
		return m, m.exportCmd(days)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// todaySeconds extends the last loaded total by what the live segment has
// accrued since it was loaded.
func (m Model) todaySeconds() int64 {
	if m.state.Status != "running" {
		return m.today
	}
	return m.today + max(m.state.ElapsedSeconds-m.todayAt, 0)
}

func (m Model) describe(st focusdto.StateOutput) string {
	switch st.Status {
	case "running":
		note := "running " + m.focusView.SubjectName(st.SubjectID)
		if st.Pending {
			note += " (offline)"
		}
		return note
	case "paused":
		return "paused at " + focusview.FormatClock(st.AccumulatedSeconds)
	}
	return "idle"
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.focusView, _ = m.focusView.Update(sz)
	m.statsView, _ = m.statsView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) startSelected() tea.Cmd {
	id, ok := m.focusView.SelectedSubjectID()
	if !ok {
		return func() tea.Msg { return stateMsg{action: "start", err: fmt.Errorf("no subject selected")} }
	}
	return m.startCmd(id)
}

func (m Model) startCmd(subjectID string) tea.Cmd {
	return func() tea.Msg {
		st, err := m.focus.Start(context.Background(), focusdto.StartInput{SubjectID: subjectID})
		return stateMsg{action: "start", state: st, err: err}
	}
}

func (m Model) transitionCmd(action string, fn func(context.Context) (focusdto.StateOutput, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := fn(context.Background())
		return stateMsg{action: action, state: st, err: err}
	}
}

func (m Model) loadTodayCmd() tea.Cmd {
	elapsed := m.state.ElapsedSeconds
	return func() tea.Msg {
		if m.analytics == nil {
			return todayLoadedMsg{}
		}
		out, err := m.analytics.Summary(context.Background(), analyticsdto.SummaryInput{Window: "today"})
		return todayLoadedMsg{seconds: out.Today, elapsed: elapsed, err: err}
	}
}

func (m Model) createSubjectCmd(in subjectdto.CreateInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.subjects.Create(context.Background(), in)
		return subjectCreatedMsg{subject: out, err: err}
	}
}

func (m Model) exportCmd(days int) tea.Cmd {
	return func() tea.Msg {
		if m.analytics == nil {
			return exportedMsg{err: fmt.Errorf("analytics not configured")}
		}
		out, err := m.analytics.ExportJournal(context.Background(), analyticsdto.ExportInput{Days: days})
		return exportedMsg{out: out, err: err}
	}
}
