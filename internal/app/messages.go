package app

import (
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/services"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
)

type (
	// TickMsg is sent on the periodic UI tick.
	TickMsg struct {
		Time time.Time
	}

	// SubscriptionEventMsg carries the service event channel after the
	// model subscribes.
	SubscriptionEventMsg struct {
		Channel chan services.ServiceEvent
	}

	// ServiceEventMsg wraps an event from the service manager.
	ServiceEventMsg struct {
		Event services.ServiceEvent
	}

	// HistoryLoadedMsg carries freshly computed daily deltas.
	HistoryLoadedMsg struct {
		Deltas []models.DailyDelta
		Error  error
	}

	// WeekLoadedMsg carries one zero-filled week window.
	WeekLoadedMsg struct {
		Offset  int
		Entries []models.DailyDelta
		Error   error
	}

	// TracesLoadedMsg carries the diagnostics payload for the debug tab:
	// recent fetch traces, sync status, and the newest raw snapshots.
	TracesLoadedMsg struct {
		Traces    []revenue.FetchTrace
		Status    models.SyncStatus
		Snapshots []models.RevenueSnapshot
	}

	// ResetAccountResultMsg reports the outcome of an account reset.
	ResetAccountResultMsg struct {
		Error error
	}

	// RefreshMsg requests a refresh of the given resource.
	RefreshMsg struct {
		Resource string
	}

	// AddNotificationMsg adds a notification to the state.
	AddNotificationMsg struct {
		Type     NotificationType
		Message  string
		Duration time.Duration
	}

	// RemoveNotificationMsg removes a notification by ID.
	RemoveNotificationMsg struct {
		ID string
	}

	// StartLoadingMsg marks a resource as loading.
	StartLoadingMsg struct {
		Resource string
	}

	// StopLoadingMsg marks a resource as done loading.
	StopLoadingMsg struct {
		Resource string
	}

	// ErrorMsg carries an error to surface to the user.
	ErrorMsg struct {
		Error error
	}

	// TabSwitchMsg switches the active tab.
	TabSwitchMsg struct {
		Tab TabID
	}

	// ToggleHelpMsg toggles the help overlay.
	ToggleHelpMsg struct{}
)
