// Package editor provides the out-of-window editor console: a Bubble Tea view of
// loop telemetry that sends play, pause, step, reset and quit commands to the
// frame loop. The same console runs in the local terminal or over SSH.
package editor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/sandbox/internal/core"
)

// PollInterval is how often the console reads the status board.
const PollInterval = 100 * time.Millisecond

// pollMsg triggers a status board read.
type pollMsg time.Time

func pollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	stateStyles = map[core.SimState]lipgloss.Style{
		core.StateRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		core.StatePaused:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		core.StateStepping:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		core.StateResetting: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	}

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Console is the Bubble Tea model for the editor console.
type Console struct {
	scene    string
	board    *core.StatusBoard
	inbox    chan<- core.Command
	status   core.Status
	table    table.Model
	help     help.Model
	keys     KeyMap
	interval time.Duration
	width    int
	height   int
	notice   string // result of the last command
	sent     int
	dropped  int
	detached bool
	quit     bool
}

// NewConsole creates a console reading board and sending to inbox.
func NewConsole(scene string, board *core.StatusBoard, inbox chan<- core.Command) Console {
	h := help.New()
	h.ShowAll = false

	m := Console{
		scene:    scene,
		board:    board,
		inbox:    inbox,
		help:     h,
		keys:     DefaultKeyMap(),
		interval: PollInterval,
		width:    80,
		height:   24,
	}
	m.table = m.createTable()
	m.refresh()
	return m
}

// createTable creates the timings table.
func (m *Console) createTable() table.Model {
	columns := []table.Column{
		{Title: "Subsystem", Width: 14},
		{Title: "Last ms", Width: 9},
		{Title: "Share", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(max(m.height-12, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// refresh pulls the latest status and rebuilds the table rows.
func (m *Console) refresh() {
	if m.board == nil {
		return
	}
	m.status = m.board.Snapshot()

	total := 0.0
	for _, t := range m.status.Timings {
		total += t.Ms
	}
	rows := make([]table.Row, len(m.status.Timings))
	for i, t := range m.status.Timings {
		share := 0.0
		if total > 0 {
			share = t.Ms / total * 100
		}
		rows[i] = table.Row{t.Name, fmt.Sprintf("%.3f", t.Ms), fmt.Sprintf("%.0f%%", share)}
	}
	m.table.SetRows(rows)
}

// send delivers cmd without blocking. A full inbox drops the command.
func (m *Console) send(cmd core.Command) {
	if m.inbox == nil {
		m.notice = "no sandbox attached"
		return
	}
	select {
	case m.inbox <- cmd:
		m.sent++
		m.notice = "sent " + cmd.String()
	default:
		m.dropped++
		m.notice = "busy, dropped " + cmd.String()
	}
}

// Init starts polling the status board.
func (m Console) Init() tea.Cmd {
	return pollCmd(m.interval)
}

// Update handles messages for the console.
func (m Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.send(core.CommandQuit)
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Detach):
			m.detached = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.send(core.CommandToggle)
		case key.Matches(msg, m.keys.Step):
			m.send(core.CommandStep)
		case key.Matches(msg, m.keys.Reset):
			m.send(core.CommandReset)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case pollMsg:
		m.refresh()
		return m, pollCmd(m.interval)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.refresh()
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

// View renders the console.
func (m Console) View() string {
	if m.detached || m.quit {
		return ""
	}

	st := m.status
	stateStyle, ok := stateStyles[st.State]
	if !ok {
		stateStyle = lipgloss.NewStyle()
	}

	var info strings.Builder
	fmt.Fprintf(&info, "state   %s\n", stateStyle.Render(st.State.String()))
	fmt.Fprintf(&info, "frame   %d\n", st.Frame)
	fmt.Fprintf(&info, "ticks   %d (+%d)\n", st.Ticks, st.Substeps)
	fmt.Fprintf(&info, "fps     %.1f (avg %.1f)\n", st.FPS, st.FPSAvg)
	fmt.Fprintf(&info, "dt      %.2fms\n", st.Dt*1000)
	fmt.Fprintf(&info, "acc     %.4fs", st.Accumulator)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(info.String()),
		"  ",
		boxStyle.Render(m.table.View()),
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render("SANDBOX EDITOR - " + m.scene))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(helpStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Detached reports whether the user left the console without stopping the sandbox.
func (m Console) Detached() bool { return m.detached }

// Quit reports whether the user asked the sandbox to quit.
func (m Console) Quit() bool { return m.quit }

// Status returns the status shown in the last refresh.
func (m Console) Status() core.Status { return m.status }

// Run runs the console on the local terminal until the user detaches, quits,
// or ctx ends.
func Run(ctx context.Context, m Console, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
