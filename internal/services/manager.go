// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbridges/modpay-tui/internal/config"
	"github.com/mbridges/modpay-tui/internal/db"
	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/services/history"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
	"github.com/mbridges/modpay-tui/internal/services/session"
	syncsvc "github.com/mbridges/modpay-tui/internal/services/sync"
)

type (
	// SessionChangedEvent is emitted when the captured session changes.
	SessionChangedEvent struct {
		Profile   models.Profile
		Onboarded bool
	}

	// IdentityChangedEvent is emitted when the active user switches.
	// All cached per-user display state must be dropped.
	IdentityChangedEvent struct {
		UserID string
	}

	// RevenueUpdatedEvent is emitted after a successful reconciliation.
	RevenueUpdatedEvent struct {
		UserID  string
		Revenue models.CombinedRevenue
	}

	// SyncFailedEvent is emitted when a reconciliation gives up.
	SyncFailedEvent struct {
		UserID  string
		Outcome models.SyncOutcome
		Err     error
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionChangedEvent) isServiceEvent()  {}
func (IdentityChangedEvent) isServiceEvent() {}
func (RevenueUpdatedEvent) isServiceEvent()  {}
func (SyncFailedEvent) isServiceEvent()      {}
func (ErrorEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          gosync.RWMutex
	session     *session.Service
	engine      *syncsvc.Engine
	scheduler   *syncsvc.Scheduler
	history     *history.Service
	primary     *revenue.PrimarySource
	database    *db.DB
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	lastUserID string
}

// NewManager creates and wires all services from the configuration.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}

	var err error
	m.session, err = session.New(cfg.SessionPath, cfg.ModrinthToken)
	if err != nil {
		return nil, err
	}

	if cfg.TargetCurrency != "" && m.session.TargetCurrency() == "" {
		if err := m.session.SetTargetCurrency(cfg.TargetCurrency); err != nil {
			return nil, fmt.Errorf("failed to set display currency: %w", err)
		}
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.history = history.New(m.database)

	m.primary = revenue.NewPrimarySource(revenue.PrimaryConfig{
		APIURL:   cfg.ModrinthAPIURL,
		V3APIURL: cfg.ModrinthV3APIURL,
	})
	rates := revenue.NewRateProvider(cfg.RatesAPIURL)
	points := revenue.NewPointsSource(m.session)

	m.engine = syncsvc.NewEngine(
		m.database,
		m.primary,
		points,
		rates,
		m.session,
		syncsvc.DesktopNotifier{},
		syncsvc.NewFileWidget(cfg.WidgetPath),
	)

	m.scheduler = syncsvc.NewScheduler(m.engine, m.session, m.database, syncsvc.SchedulerConfig{
		Interval:      cfg.SyncInterval,
		RetentionDays: cfg.RetentionDays,
	})

	m.lastUserID = m.session.UserID()

	go m.routeEvents()

	return m, nil
}

// Start launches the periodic sync loop.
func (m *Manager) Start(ctx context.Context) {
	m.scheduler.Start(ctx)
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.session.Events():
			m.handleSessionEvent(event)

		case event := <-m.scheduler.Events():
			m.handleSyncEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSessionEvent(event session.Event) {
	switch event.Type {
	case session.EventSessionLoaded, session.EventSessionChanged:
		m.broadcast(SessionChangedEvent{
			Profile:   m.session.Profile(),
			Onboarded: m.session.Onboarded(),
		})
		// New token or points: reconcile immediately rather than
		// waiting out the interval.
		m.scheduler.RequestSync()

	case session.EventIdentityChanged:
		m.handleIdentitySwitch()

	case session.EventError:
		m.broadcast(ErrorEvent{
			Service: "session",
			Error:   event.Error,
		})
	}
}

// handleIdentitySwitch drops all cached state belonging to the previous
// user so nothing of theirs bleeds into the new user's view.
func (m *Manager) handleIdentitySwitch() {
	newUserID := m.session.UserID()

	m.mu.Lock()
	previous := m.lastUserID
	m.lastUserID = newUserID
	m.mu.Unlock()

	if previous != "" && previous != newUserID {
		m.engine.ForgetUser(previous)
	}

	m.broadcast(IdentityChangedEvent{UserID: newUserID})
	m.scheduler.RequestSync()
}

func (m *Manager) handleSyncEvent(event syncsvc.Event) {
	switch event.Type {
	case syncsvc.EventSyncCompleted:
		m.broadcast(RevenueUpdatedEvent{
			UserID:  event.UserID,
			Revenue: event.Revenue,
		})

	case syncsvc.EventSyncFailed:
		m.broadcast(SyncFailedEvent{
			UserID:  event.UserID,
			Outcome: event.Outcome,
			Err:     event.Err,
		})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// RefreshRevenue forces an immediate reconciliation.
func (m *Manager) RefreshRevenue() {
	m.scheduler.RequestSync()
}

// SyncOnce runs a single reconciliation synchronously. Used by the
// headless mode where no scheduler loop runs.
func (m *Manager) SyncOnce(ctx context.Context) (models.CombinedRevenue, error) {
	userID := m.session.UserID()
	if userID == "" {
		return models.CombinedRevenue{}, fmt.Errorf("no session captured yet")
	}
	return m.engine.Sync(ctx, userID)
}

// ResetAccount wipes the captured session, the user's snapshot history,
// and all cached state.
func (m *Manager) ResetAccount(ctx context.Context) error {
	userID := m.session.UserID()

	if err := m.session.Reset(); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	if userID != "" {
		if err := m.database.DeleteUserHistory(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete history: %w", err)
		}
		m.engine.ForgetUser(userID)
	}

	m.mu.Lock()
	m.lastUserID = ""
	m.mu.Unlock()

	return nil
}

// SyncStatus returns the current sync loop status.
func (m *Manager) SyncStatus() models.SyncStatus {
	return m.scheduler.Status()
}

// FetchTraces returns recent primary-source fetch traces for debugging.
func (m *Manager) FetchTraces() []revenue.FetchTrace {
	return m.primary.Traces()
}

// Session returns the session service.
func (m *Manager) Session() *session.Service {
	return m.session
}

// History returns the history service.
func (m *Manager) History() *history.Service {
	return m.history
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)
	m.scheduler.Stop()

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.session.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
