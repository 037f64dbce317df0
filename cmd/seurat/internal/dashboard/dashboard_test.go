package dashboard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update should return a dashboard Model")
	return model, cmd
}

func TestStatsMsgDrivesView(t *testing.T) {
	m := New("ws://localhost:8649/live")

	m, _ = update(t, m, StatsMsg{Nodes: 5, Links: 4, Changed: 1, Sessions: 2, Alpha: 0.4})
	out := m.View()

	assert.Contains(t, out, "5 nodes · 4 links · 1 changed · 2 sessions")
	assert.Contains(t, out, "alpha 0.400")
	assert.Contains(t, out, "ws://localhost:8649/live")
}

func TestViewBeforeStatsShowsWaiting(t *testing.T) {
	m := New("ws://localhost:8649/live")
	assert.Contains(t, m.View(), "waiting for engine")
}

func TestSettledSimulationShowsCheck(t *testing.T) {
	m := New("addr")
	m, _ = update(t, m, StatsMsg{Nodes: 1, Alpha: 0.0005})
	assert.Contains(t, m.View(), "settled")
	assert.NotContains(t, m.View(), "alpha 0.000")
}

func TestEventLogTrimsToMax(t *testing.T) {
	m := New("addr")
	for i := 0; i < maxEvents+3; i++ {
		m, _ = update(t, m, EventMsg{Line: strings.Repeat("x", i+1)})
	}

	require.Len(t, m.events, maxEvents)
	assert.Equal(t, strings.Repeat("x", maxEvents+3), m.events[maxEvents-1])
	assert.Equal(t, strings.Repeat("x", 4), m.events[0])
}

func TestQuitKeyStopsProgram(t *testing.T) {
	m := New("addr")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestWindowSizeClampsProgressWidth(t *testing.T) {
	m := New("addr")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 50})
	assert.Equal(t, 60, m.progress.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 50})
	assert.Equal(t, 10, m.progress.Width)
}
