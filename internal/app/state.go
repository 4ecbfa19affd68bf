// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Revenue bool
	History bool
}

// State holds the shared application state read by every tab.
type State struct {
	mu sync.RWMutex

	revenue   *models.CombinedRevenue
	profile   models.Profile
	onboarded bool
	status    models.SyncStatus
	deltas    []models.DailyDelta

	Loading LoadingState

	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "revenue":
		s.Loading.Revenue = loading
	case "history":
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Revenue || s.Loading.History
}

// SetRevenue stores the latest reconciled revenue.
func (s *State) SetRevenue(revenue models.CombinedRevenue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revenue = &revenue
	s.lastUpdated = time.Now()
	s.Loading.Initial = false
	s.Loading.Revenue = false
}

// GetRevenue returns the latest reconciled revenue, or nil before the
// first sync completes.
func (s *State) GetRevenue() *models.CombinedRevenue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revenue
}

// SetProfile stores the authenticated identity.
func (s *State) SetProfile(profile models.Profile, onboarded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.onboarded = onboarded
}

// GetProfile returns the authenticated identity.
func (s *State) GetProfile() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, s.onboarded
}

// SetStatus stores the sync loop status.
func (s *State) SetStatus(status models.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// GetStatus returns the sync loop status.
func (s *State) GetStatus() models.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetDeltas stores the daily earning deltas.
func (s *State) SetDeltas(deltas []models.DailyDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = deltas
	s.Loading.History = false
}

// GetDeltas returns a copy of the daily earning deltas.
func (s *State) GetDeltas() []models.DailyDelta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deltas := make([]models.DailyDelta, len(s.deltas))
	copy(deltas, s.deltas)
	return deltas
}

// ResetUserData drops everything belonging to the previous identity.
func (s *State) ResetUserData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revenue = nil
	s.deltas = nil
	s.profile = models.Profile{}
	s.onboarded = false
	s.Loading.Initial = true
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time revenue data arrived.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TimeSinceUpdate returns the duration since the last revenue update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.lastUpdated)
}
