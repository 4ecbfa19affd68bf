// Package history provides the earnings history tab.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbridges/modpay-tui/internal/app"
	"github.com/mbridges/modpay-tui/internal/models"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	OlderWeek key.Binding
	NewerWeek key.Binding
	ThisWeek  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		OlderWeek: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "older week"),
		),
		NewerWeek: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "newer week"),
		),
		ThisWeek: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this week"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	width    int
	height   int
	keys     keyMap

	weekOffset int
	week       []models.DailyDelta
	weekErr    error
}

// New creates a new history model.
func New(state *app.State, commands *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.commands.LoadWeek(0)
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case app.WeekLoadedMsg:
		if msg.Offset == m.weekOffset {
			m.week = msg.Entries
			m.weekErr = msg.Error
		}

	case app.HistoryLoadedMsg:
		// The deltas changed underneath us, reload the visible week.
		return m, m.commands.LoadWeek(m.weekOffset)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.OlderWeek):
		m.weekOffset--
		return m, m.commands.LoadWeek(m.weekOffset)

	case key.Matches(msg, m.keys.NewerWeek):
		if m.weekOffset < 0 {
			m.weekOffset++
			return m, m.commands.LoadWeek(m.weekOffset)
		}

	case key.Matches(msg, m.keys.ThisWeek):
		if m.weekOffset != 0 {
			m.weekOffset = 0
			return m, m.commands.LoadWeek(0)
		}
	}
	return m, nil
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.OlderWeek,
		m.keys.NewerWeek,
		m.keys.ThisWeek,
	}
}
