package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/mbridges/modpay-tui/internal/db"
	"github.com/mbridges/modpay-tui/internal/logger"
	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 30 * time.Second
)

// EventType identifies scheduler lifecycle events.
type EventType int

const (
	EventSyncStarted EventType = iota
	EventSyncCompleted
	EventSyncFailed
)

// Event is emitted on every sync attempt boundary.
type Event struct {
	Type      EventType
	UserID    string
	Revenue   models.CombinedRevenue
	Outcome   models.SyncOutcome
	Err       error
	Timestamp time.Time
}

// IdentityProvider tells the scheduler which user to sync.
type IdentityProvider interface {
	UserID() string
}

// SchedulerConfig tunes the periodic sync loop.
type SchedulerConfig struct {
	Interval      time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetentionDays int
}

// Scheduler runs the reconciliation engine on a fixed interval, retries
// transient failures with backoff, and sweeps expired snapshots.
type Scheduler struct {
	engine   *Engine
	identity IdentityProvider
	database *db.DB
	cfg      SchedulerConfig

	eventChan   chan Event
	requestChan chan struct{}
	stopChan    chan struct{}
	stopOnce    gosync.Once

	statusMu gosync.RWMutex
	status   models.SyncStatus
}

// NewScheduler creates a scheduler. Zero config fields get defaults.
func NewScheduler(engine *Engine, identity IdentityProvider, database *db.DB, cfg SchedulerConfig) *Scheduler {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	return &Scheduler{
		engine:      engine,
		identity:    identity,
		database:    database,
		cfg:         cfg,
		eventChan:   make(chan Event, 100),
		requestChan: make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
	}
}

// Events exposes the scheduler's event stream.
func (s *Scheduler) Events() <-chan Event {
	return s.eventChan
}

// Status returns a copy of the current sync status.
func (s *Scheduler) Status() models.SyncStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// RequestSync asks for an immediate sync. Requests arriving while one
// is already pending coalesce.
func (s *Scheduler) RequestSync() {
	select {
	case s.requestChan <- struct{}{}:
	default:
	}
}

// Start runs the sync loop until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop terminates the loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cycle(ctx)
		case <-s.requestChan:
			s.cycle(ctx)
		}
	}
}

// cycle performs one sync run including transient-failure retries and
// the retention sweep.
func (s *Scheduler) cycle(ctx context.Context) {
	userID := s.identity.UserID()
	if userID == "" {
		return
	}

	s.sweep(ctx)
	s.sendEvent(Event{Type: EventSyncStarted, UserID: userID, Timestamp: time.Now()})

	var (
		combined models.CombinedRevenue
		err      error
	)
	backoff := s.cfg.RetryBackoff
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		combined, err = s.engine.Sync(ctx, userID)
		if err == nil || !revenue.IsTransient(err) {
			break
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}
		logger.Warn("sync attempt failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	outcome := classifyOutcome(err)
	s.recordStatus(err)

	if err != nil {
		s.sendEvent(Event{
			Type:      EventSyncFailed,
			UserID:    userID,
			Outcome:   outcome,
			Err:       err,
			Timestamp: time.Now(),
		})
		return
	}

	s.sendEvent(Event{
		Type:      EventSyncCompleted,
		UserID:    userID,
		Revenue:   combined,
		Outcome:   outcome,
		Timestamp: time.Now(),
	})
}

// classifyOutcome maps a sync error to the retry policy bucket.
func classifyOutcome(err error) models.SyncOutcome {
	switch {
	case err == nil:
		return models.SyncSuccess
	case revenue.IsTransient(err):
		return models.SyncRetry
	default:
		return models.SyncPermanentFailure
	}
}

func (s *Scheduler) recordStatus(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	now := time.Now()
	s.status.LastAttempt = now
	if err == nil {
		s.status.Offline = false
		s.status.AuthRequired = false
		s.status.LastSuccess = now
		s.status.LastError = ""
		return
	}

	s.status.LastError = err.Error()
	s.status.Offline = revenue.IsTransient(err)
	s.status.AuthRequired = errors.Is(err, revenue.ErrUnauthenticated)
}

// sweep removes snapshots older than the retention window.
func (s *Scheduler) sweep(ctx context.Context) {
	if s.cfg.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	removed, err := s.database.DeleteSnapshotsBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("retention sweep removed snapshots", "count", removed, "cutoff", cutoff)
	}
}

func (s *Scheduler) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Drop the oldest so a slow consumer never blocks syncs.
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}
