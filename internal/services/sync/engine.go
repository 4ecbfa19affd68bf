// Package sync implements the revenue reconciliation engine and the
// scheduler that drives it.
package sync

import (
	"context"
	"errors"
	"fmt"
	"math"
	gosync "sync"
	"time"

	"github.com/mbridges/modpay-tui/internal/config"
	"github.com/mbridges/modpay-tui/internal/db"
	"github.com/mbridges/modpay-tui/internal/logger"
	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
)

const (
	// debounceEpsilon is the smallest total change worth a new snapshot.
	debounceEpsilon = 0.001

	// stalenessThreshold forces a snapshot when the prior one is older,
	// even if the total is unchanged.
	stalenessThreshold = 1 * time.Hour
)

// PrimarySource fetches fresh revenue from the primary platform.
type PrimarySource interface {
	Fetch(ctx context.Context, token string) (models.RevenueReading, *models.Profile, error)
}

// SecondarySource supplies the points-derived revenue in base currency.
type SecondarySource interface {
	ValueInBase() float64
}

// RateSource converts base currency to a display currency.
type RateSource interface {
	Rate(ctx context.Context, target string, fallback float64) float64
}

// SessionStore is the identity layer the engine reads from and reports
// profile updates to.
type SessionStore interface {
	Token() string
	TargetCurrency() string
	SetProfile(profile models.Profile) error
}

// Notifier receives revenue-increase events. Delivery is best effort.
type Notifier interface {
	NotifyIncrease(amount float64, currency string)
}

// DisplaySink receives the converted total after every successful
// reconciliation, whether or not a snapshot was written.
type DisplaySink interface {
	Update(total float64, currency string)
}

// Engine reconciles the two revenue sources into a combined value and
// decides whether to persist a snapshot.
type Engine struct {
	db        *db.DB
	primary   PrimarySource
	secondary SecondarySource
	rates     RateSource
	session   SessionStore
	notifier  Notifier
	display   DisplaySink

	lockMu    gosync.Mutex
	userLocks map[string]*gosync.Mutex

	lastMu      gosync.RWMutex
	lastPrimary map[string]models.RevenueReading

	now func() time.Time
}

// NewEngine creates a reconciliation engine. notifier and display may
// be nil, in which case the corresponding sink is skipped.
func NewEngine(database *db.DB, primary PrimarySource, secondary SecondarySource, rates RateSource, session SessionStore, notifier Notifier, display DisplaySink) *Engine {
	return &Engine{
		db:          database,
		primary:     primary,
		secondary:   secondary,
		rates:       rates,
		session:     session,
		notifier:    notifier,
		display:     display,
		userLocks:   make(map[string]*gosync.Mutex),
		lastPrimary: make(map[string]models.RevenueReading),
		now:         time.Now,
	}
}

// userLock returns the advisory lock serializing reconciliations for
// one user. The debounce read-then-write must not race itself.
func (e *Engine) userLock(userID string) *gosync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()

	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &gosync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// ForgetUser drops cached readings for a user. Must be called when the
// active identity switches so stale values cannot leak into the new
// user's display.
func (e *Engine) ForgetUser(userID string) {
	e.lastMu.Lock()
	defer e.lastMu.Unlock()
	delete(e.lastPrimary, userID)
}

// Sync performs one reconciliation for the user: fetch both sources,
// combine, convert, conditionally persist, and feed the sinks.
//
// A failure of one source degrades the result; only when neither source
// can produce a usable value does Sync abort with ErrSyncFailed (or
// ErrUnauthenticated), leaving prior persisted state untouched.
func (e *Engine) Sync(ctx context.Context, userID string) (models.CombinedRevenue, error) {
	if userID == "" {
		return models.CombinedRevenue{}, fmt.Errorf("no user to sync")
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	token := e.session.Token()
	target := e.session.TargetCurrency()
	if target == "" {
		target = config.BaseCurrency
	}

	// The rate lookup depends only on settings, so it is pipelined with
	// the revenue fetch. Failures inside never propagate.
	rateCh := make(chan float64, 1)
	go func() {
		rateCh <- e.rates.Rate(ctx, target, 1.0)
	}()

	secondaryValue := e.secondary.ValueInBase()

	var (
		reading    models.RevenueReading
		profile    *models.Profile
		primaryErr error
	)
	if token == "" && secondaryValue > 0 {
		// Points-only mode: no primary credentials configured, so the
		// primary side is cleanly zero rather than a failure.
		reading = models.RevenueReading{}
	} else {
		reading, profile, primaryErr = e.primary.Fetch(ctx, token)
	}

	degraded := false
	if primaryErr != nil {
		logger.Warn("primary revenue fetch failed", "user", userID, "error", primaryErr)
		degraded = true

		last, hasLast := e.lastKnownPrimary(userID)
		secondaryUsable := secondaryValue > 0

		if !hasLast && !secondaryUsable {
			// Neither source has anything to show. Leave persisted
			// state untouched and let the caller keep last-known-good
			// display values.
			if errors.Is(primaryErr, revenue.ErrUnauthenticated) {
				return models.CombinedRevenue{}, primaryErr
			}
			return models.CombinedRevenue{}, fmt.Errorf("%w: %w", revenue.ErrSyncFailed, primaryErr)
		}

		// Substitute the failed side with its last known value (or
		// zero) and carry on.
		reading = last
	} else {
		e.rememberPrimary(userID, reading)
		if profile != nil {
			if err := e.session.SetProfile(*profile); err != nil {
				logger.Warn("failed to store profile", "error", err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		// Torn down mid-fetch: no partial snapshot writes.
		return models.CombinedRevenue{}, err
	}

	totalBase := reading.TotalAmount + secondaryValue
	rate := <-rateCh

	combined := models.CombinedRevenue{
		TotalConverted:     totalBase * rate,
		PrimaryConverted:   reading.TotalAmount * rate,
		SecondaryConverted: secondaryValue * rate,
		Last24hConverted:   reading.Last24Hours * rate,
		Currency:           target,
		Degraded:           degraded,
		FetchedAt:          e.now(),
	}

	// Persist only fully fresh data. A degraded reading reuses a prior
	// value and must not be re-recorded as a new fact.
	if !degraded {
		written, increase, err := e.persistIfChanged(ctx, userID, reading, secondaryValue, totalBase)
		if err != nil {
			return combined, err
		}
		combined.SnapshotWritten = written

		if written && increase > 0 && e.notifier != nil {
			e.notifier.NotifyIncrease(increase*rate, target)
		}
	}

	// Display freshness tracks every successful fetch, not only
	// persisted deltas.
	if e.display != nil {
		e.display.Update(combined.TotalConverted, target)
	}

	return combined, nil
}

// persistIfChanged applies the debounce policy: write a snapshot only
// when there is no prior one, the total moved by more than the epsilon,
// or the prior one is stale. Returns whether a write happened and the
// increase over the prior total.
func (e *Engine) persistIfChanged(ctx context.Context, userID string, reading models.RevenueReading, secondaryValue, totalBase float64) (bool, float64, error) {
	prior, err := e.db.LatestSnapshot(ctx, userID)
	if err != nil {
		return false, 0, fmt.Errorf("debounce check failed: %w", err)
	}

	now := e.now()
	write := prior == nil
	var increase float64

	if prior != nil {
		priorTotal := prior.Total()
		increase = totalBase - priorTotal

		if math.Abs(totalBase-priorTotal) > debounceEpsilon {
			write = true
		} else if now.Sub(prior.Timestamp) > stalenessThreshold {
			write = true
		}
	}

	if !write {
		return false, 0, nil
	}

	snap := &models.RevenueSnapshot{
		UserID:           userID,
		Timestamp:        now,
		PrimaryRevenue:   reading.TotalAmount,
		SecondaryRevenue: secondaryValue,
		Currency:         config.BaseCurrency,
	}
	if err := e.db.InsertSnapshot(ctx, snap); err != nil {
		return false, 0, fmt.Errorf("snapshot write failed: %w", err)
	}

	return true, increase, nil
}

func (e *Engine) rememberPrimary(userID string, reading models.RevenueReading) {
	e.lastMu.Lock()
	defer e.lastMu.Unlock()
	e.lastPrimary[userID] = reading
}

func (e *Engine) lastKnownPrimary(userID string) (models.RevenueReading, bool) {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	reading, ok := e.lastPrimary[userID]
	return reading, ok
}
