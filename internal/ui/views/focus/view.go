package focus

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	focusdto "studytrack/internal/modules/focus/dto"
	subjectdto "studytrack/internal/modules/subject/dto"
	"studytrack/internal/ui/theme"
)

type SubjectPort interface {
	List(ctx context.Context) ([]subjectdto.SubjectOutput, error)
}

type SubjectsLoadedMsg struct {
	Subjects []subjectdto.SubjectOutput
	Err      error
}

type subjectItem struct {
	subject subjectdto.SubjectOutput
}

func (i subjectItem) Title() string       { return theme.Swatch(i.subject.Color) + " " + i.subject.Name }
func (i subjectItem) Description() string { return i.subject.ID }
func (i subjectItem) FilterValue() string { return i.subject.Name }

// Model is the focus tab: the subject list on the left and the timer on
// the right. The timer state is pushed in by the app model.
type Model struct {
	port     SubjectPort
	list     list.Model
	spinner  spinner.Model
	loading  bool
	state    focusdto.StateOutput
	today    int64
	names    map[string]string
	width    int
	height   int
	loadErr  string
	subjects []subjectdto.SubjectOutput
}

func New(port SubjectPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Subjects"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, spinner: sp, loading: true, state: focusdto.StateOutput{Status: "idle"}, names: map[string]string{}}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.LoadSubjects(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*4/10, m.height)

	case SubjectsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.loadErr = msg.Err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.subjects = msg.Subjects
		items := make([]list.Item, len(msg.Subjects))
		for i, s := range msg.Subjects {
			items[i] = subjectItem{subject: s}
			m.names[s.ID] = s.Name
		}
		cmds = append(cmds, m.list.SetItems(items))

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading subjects…")
	}

	listW := m.width * 4 / 10
	timerW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	timerPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(timerW-2, 1)).
		Height(max(m.height-2, 1)).
		Render(m.renderTimer())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, timerPane)
}

// SetState replaces the timer state and today's total shown in the pane.
func (m *Model) SetState(state focusdto.StateOutput, todaySeconds int64) {
	m.state = state
	m.today = todaySeconds
}

func (m Model) SelectedSubjectID() (string, bool) {
	if item, ok := m.list.SelectedItem().(subjectItem); ok {
		return item.subject.ID, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SubjectName resolves an id against the loaded list, falling back to the id.
func (m Model) SubjectName(id string) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return id
}

func (m Model) LoadSubjects() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return SubjectsLoadedMsg{}
		}
		subjects, err := m.port.List(context.Background())
		return SubjectsLoadedMsg{Subjects: subjects, Err: err}
	}
}

func (m Model) renderTimer() string {
	st := m.state
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Focus") + "\n")
	sb.WriteString(theme.PhaseStyle(st.Status).Render(FormatClock(st.DisplaySeconds)) + "\n")

	switch st.Status {
	case "running":
		sb.WriteString(theme.Hot.Render("● "+m.SubjectName(st.SubjectID)) + "\n")
		if st.Pending {
			sb.WriteString(theme.Warn.Render("offline: waiting to sync") + "\n")
		}
	case "paused":
		sb.WriteString(theme.Warn.Render("paused: "+m.SubjectName(st.LastSubjectID)) + "\n")
	default:
		sb.WriteString(theme.Muted.Render("idle") + "\n")
	}
	if st.AccumulatedSeconds > 0 {
		sb.WriteString(theme.Muted.Render("chain:  ") + FormatClock(st.AccumulatedSeconds) + "\n")
	}
	sb.WriteString(theme.Muted.Render("today:  ") + FormatClock(m.today) + "\n")
	if m.loadErr != "" {
		sb.WriteString("\n" + theme.Warn.Render(m.loadErr) + "\n")
	}
	if len(m.subjects) == 0 {
		sb.WriteString("\n" + theme.Muted.Render("no subjects yet: :subject:add <name>") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("s: start  p: pause  r: resume  x: stop"))
	return sb.String()
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
