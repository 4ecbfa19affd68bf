package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbridges/modpay-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// refreshRevenueCmd asks the scheduler for an immediate reconciliation.
// The result arrives later as a service event.
func refreshRevenueCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.RefreshRevenue()
		return StartLoadingMsg{Resource: "revenue"}
	}
}

// loadHistoryCmd recomputes the daily deltas for the active user.
func loadHistoryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		userID := mgr.Session().UserID()
		if userID == "" {
			return HistoryLoadedMsg{}
		}
		deltas, err := mgr.History().Deltas(context.Background(), userID)
		return HistoryLoadedMsg{Deltas: deltas, Error: err}
	}
}

// loadWeekCmd loads one week window of daily deltas.
func loadWeekCmd(mgr *services.Manager, offset int) tea.Cmd {
	return func() tea.Msg {
		userID := mgr.Session().UserID()
		if userID == "" {
			return WeekLoadedMsg{Offset: offset}
		}
		entries, err := mgr.History().Week(context.Background(), userID, offset)
		return WeekLoadedMsg{Offset: offset, Entries: entries, Error: err}
	}
}

// loadTracesCmd loads the recent fetch traces, sync status, and the
// newest raw snapshots.
func loadTracesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		msg := TracesLoadedMsg{
			Traces: mgr.FetchTraces(),
			Status: mgr.SyncStatus(),
		}
		if userID := mgr.Session().UserID(); userID != "" {
			// Best effort; the debug view renders fine without them.
			msg.Snapshots, _ = mgr.History().Snapshots(context.Background(), userID, 5)
		}
		return msg
	}
}

// resetAccountCmd wipes the session and snapshot history.
func resetAccountCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ResetAccountResultMsg{Error: mgr.ResetAccount(context.Background())}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions for tabs.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// RefreshRevenue returns a command that triggers a reconciliation.
func (c *Commands) RefreshRevenue() tea.Cmd {
	return refreshRevenueCmd(c.manager)
}

// LoadHistory returns a command that recomputes daily deltas.
func (c *Commands) LoadHistory() tea.Cmd {
	return loadHistoryCmd(c.manager)
}

// LoadWeek returns a command that loads one week window.
func (c *Commands) LoadWeek(offset int) tea.Cmd {
	return loadWeekCmd(c.manager, offset)
}

// LoadTraces returns a command that loads fetch traces.
func (c *Commands) LoadTraces() tea.Cmd {
	return loadTracesCmd(c.manager)
}

// ResetAccount returns a command that wipes the account.
func (c *Commands) ResetAccount() tea.Cmd {
	return resetAccountCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
