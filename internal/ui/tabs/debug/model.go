// Package debug provides the diagnostics tab: fetch traces, sync
// status, and destructive account actions.
package debug

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbridges/modpay-tui/internal/app"
	"github.com/mbridges/modpay-tui/internal/config"
	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
)

// keyMap defines the key bindings specific to the debug tab.
type keyMap struct {
	Reload key.Binding
	Reset  key.Binding
	Up     key.Binding
	Down   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload traces"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset account"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the debug tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	config   *config.Config
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	traces       []revenue.FetchTrace
	status       models.SyncStatus
	snapshots    []models.RevenueSnapshot
	confirmReset bool
}

// New creates a new debug model.
func New(state *app.State, commands *app.Commands, cfg *config.Config) *Model {
	return &Model{
		state:    state,
		commands: commands,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the debug tab.
func (m *Model) Init() tea.Cmd {
	return m.commands.LoadTraces()
}

// Update handles messages for the debug tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case app.TracesLoadedMsg:
		m.traces = msg.Traces
		m.status = msg.Status
		m.snapshots = msg.Snapshots
		m.viewport.SetContent(m.renderTraces())

	case app.ServiceEventMsg:
		// Any sync activity invalidates the shown traces.
		return m, m.commands.LoadTraces()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if m.confirmReset {
		switch msg.String() {
		case "enter":
			m.confirmReset = false
			return m, m.commands.ResetAccount()
		default:
			m.confirmReset = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		return m, m.commands.LoadTraces()

	case key.Matches(msg, m.keys.Reset):
		m.confirmReset = true

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetSize sets the available size for the debug tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(0, height-10)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Reload,
		m.keys.Reset,
	}
}
