// Package dashboard renders the terminal dashboard shown by `seurat serve --tui`.
// The serve command pushes StatsMsg and EventMsg values into the running
// program; the model itself never touches the engine.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	// Colors
	primaryColor = lipgloss.Color("205")     // Pink
	successColor = lipgloss.Color("#10b981") // Green
	mutedColor   = lipgloss.Color("#94a3b8") // Muted gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	settledStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// maxEvents bounds the activity log.
const maxEvents = 8

// settledAlpha mirrors the simulation's rest threshold.
const settledAlpha = 0.001

// KeyMap defines the dashboard key bindings
type KeyMap struct {
	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// StatsMsg carries an engine snapshot into the dashboard.
type StatsMsg struct {
	Nodes    int
	Links    int
	Changed  int
	Sessions int
	Alpha    float64
}

// EventMsg appends one line to the activity log.
type EventMsg struct {
	Line string
}

// Model is the dashboard TUI model
type Model struct {
	addr     string
	spinner  spinner.Model
	progress progress.Model
	width    int

	stats     StatsMsg
	haveStats bool
	events    []string
	quitting  bool
}

// New creates a dashboard model for the server at addr.
func New(addr string) Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize progress bar
	p := progress.New(progress.WithDefaultGradient())

	return Model{
		addr:     addr,
		spinner:  s,
		progress: p,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 40
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case StatsMsg:
		m.stats = msg
		m.haveStats = true
		return m, nil

	case EventMsg:
		m.events = append(m.events, msg.Line)
		if len(m.events) > maxEvents {
			m.events = m.events[len(m.events)-maxEvents:]
		}
		return m, nil
	}

	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s  %s\n\n",
		m.spinner.View(),
		titleStyle.Render("seurat live"),
		mutedStyle.Render(m.addr)))

	if m.haveStats {
		b.WriteString("  " + statStyle.Render(fmt.Sprintf(
			"%d nodes · %d links · %d changed · %d sessions",
			m.stats.Nodes, m.stats.Links, m.stats.Changed, m.stats.Sessions)) + "\n\n")
		b.WriteString("  " + m.renderCooling() + "\n")
	} else {
		b.WriteString("  " + mutedStyle.Render("waiting for engine...") + "\n")
	}

	if len(m.events) > 0 {
		b.WriteString("\n" + mutedStyle.Render("  recent") + "\n")
		for _, line := range m.events {
			b.WriteString("  " + mutedStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("  q quit") + "\n")

	return b.String()
}

// renderCooling shows how far the simulation has cooled toward rest.
func (m Model) renderCooling() string {
	if m.stats.Alpha < settledAlpha {
		return settledStyle.Render("settled ✓")
	}

	cooled := 1 - m.stats.Alpha
	if cooled < 0 {
		cooled = 0
	}
	if cooled > 1 {
		cooled = 1
	}
	return fmt.Sprintf("%s  %s",
		m.progress.ViewAs(cooled),
		mutedStyle.Render(fmt.Sprintf("alpha %.3f", m.stats.Alpha)))
}
