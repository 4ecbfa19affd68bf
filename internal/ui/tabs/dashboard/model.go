// Package dashboard provides the main revenue overview tab.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbridges/modpay-tui/internal/app"
)

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "sync now"),
		),
	}
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	width    int
	height   int
	keys     keyMap
}

// New creates a new dashboard model.
func New(state *app.State, commands *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: commands,
		keys:     defaultKeyMap(),
	}
}

// Init initializes the dashboard tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dashboard tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	// Refresh is handled globally; the dashboard renders shared state.
	return m, nil
}

// SetSize sets the available size for the dashboard tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Refresh,
	}
}
