package sync

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
)

type staticIdentity struct {
	userID string
}

func (s *staticIdentity) UserID() string {
	return s.userID
}

// sequencedPrimary returns queued errors before settling on a reading.
type sequencedPrimary struct {
	errs    []error
	reading models.RevenueReading
	calls   int
}

func (s *sequencedPrimary) Fetch(ctx context.Context, token string) (models.RevenueReading, *models.Profile, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return models.RevenueReading{}, nil, err
		}
	}
	return s.reading, nil, nil
}

func newTestScheduler(t *testing.T, primary PrimarySource, cfg SchedulerConfig) (*Scheduler, *engineFixture) {
	t.Helper()

	f := newEngineFixture(t)
	engine := NewEngine(f.db, primary, f.points, f.rates, f.session, nil, nil)
	sched := NewScheduler(engine, &staticIdentity{userID: "u1"}, f.db, cfg)
	t.Cleanup(sched.Stop)
	return sched, f
}

func waitForSchedulerEvent(t *testing.T, events <-chan Event, want EventType) Event {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-events:
			if event.Type == want {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event type %d", want)
		}
	}
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.SyncOutcome
	}{
		{"nil error", nil, models.SyncSuccess},
		{"connection reset", syscall.ECONNRESET, models.SyncRetry},
		{"deadline exceeded", context.DeadlineExceeded, models.SyncRetry},
		{"unauthenticated", revenue.ErrUnauthenticated, models.SyncPermanentFailure},
		{"parse failure", errors.New("invalid payload"), models.SyncPermanentFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyOutcome(tt.err); got != tt.want {
				t.Errorf("classifyOutcome(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestScheduler_InitialSyncEmitsCompletion(t *testing.T) {
	primary := &sequencedPrimary{reading: models.RevenueReading{TotalAmount: 50.0}}
	sched, _ := newTestScheduler(t, primary, SchedulerConfig{Interval: time.Hour})

	sched.Start(context.Background())

	event := waitForSchedulerEvent(t, sched.Events(), EventSyncCompleted)
	if event.Outcome != models.SyncSuccess {
		t.Errorf("expected SyncSuccess, got %v", event.Outcome)
	}
	if event.Revenue.TotalConverted != 50.0 {
		t.Errorf("expected total 50.0, got %f", event.Revenue.TotalConverted)
	}
	if event.UserID != "u1" {
		t.Errorf("expected user u1, got %s", event.UserID)
	}
}

func TestScheduler_RequestSyncTriggersCycle(t *testing.T) {
	primary := &sequencedPrimary{reading: models.RevenueReading{TotalAmount: 50.0}}
	sched, _ := newTestScheduler(t, primary, SchedulerConfig{Interval: time.Hour})

	sched.Start(context.Background())
	waitForSchedulerEvent(t, sched.Events(), EventSyncCompleted)

	sched.RequestSync()
	waitForSchedulerEvent(t, sched.Events(), EventSyncCompleted)

	if primary.calls < 2 {
		t.Errorf("expected at least 2 fetches, got %d", primary.calls)
	}
}

func TestScheduler_TransientFailureRetried(t *testing.T) {
	primary := &sequencedPrimary{
		errs:    []error{syscall.ECONNRESET, syscall.ECONNRESET},
		reading: models.RevenueReading{TotalAmount: 50.0},
	}
	sched, _ := newTestScheduler(t, primary, SchedulerConfig{
		Interval:     time.Hour,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})

	sched.Start(context.Background())

	event := waitForSchedulerEvent(t, sched.Events(), EventSyncCompleted)
	if event.Outcome != models.SyncSuccess {
		t.Errorf("expected success after retries, got %v", event.Outcome)
	}
	if primary.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", primary.calls)
	}
}

func TestScheduler_PermanentFailureNotRetried(t *testing.T) {
	primary := &sequencedPrimary{
		errs: []error{revenue.ErrUnauthenticated, revenue.ErrUnauthenticated, revenue.ErrUnauthenticated},
	}
	sched, _ := newTestScheduler(t, primary, SchedulerConfig{
		Interval:     time.Hour,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})

	sched.Start(context.Background())

	event := waitForSchedulerEvent(t, sched.Events(), EventSyncFailed)
	if event.Outcome != models.SyncPermanentFailure {
		t.Errorf("expected SyncPermanentFailure, got %v", event.Outcome)
	}
	if primary.calls != 1 {
		t.Errorf("permanent failure must not be retried, got %d attempts", primary.calls)
	}

	status := sched.Status()
	if !status.AuthRequired {
		t.Error("expected AuthRequired status")
	}
	if status.Offline {
		t.Error("auth failure is not an offline condition")
	}
}

func TestScheduler_ExhaustedRetriesReportRetryOutcome(t *testing.T) {
	primary := &sequencedPrimary{
		errs: []error{syscall.ECONNRESET, syscall.ECONNRESET, syscall.ECONNRESET},
	}
	sched, _ := newTestScheduler(t, primary, SchedulerConfig{
		Interval:     time.Hour,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})

	sched.Start(context.Background())

	event := waitForSchedulerEvent(t, sched.Events(), EventSyncFailed)
	if event.Outcome != models.SyncRetry {
		t.Errorf("expected SyncRetry, got %v", event.Outcome)
	}
	if primary.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", primary.calls)
	}
	if !sched.Status().Offline {
		t.Error("exhausted transient retries should mark status offline")
	}
}

func TestScheduler_RetentionSweep(t *testing.T) {
	primary := &sequencedPrimary{reading: models.RevenueReading{TotalAmount: 50.0}}
	sched, f := newTestScheduler(t, primary, SchedulerConfig{
		Interval:      time.Hour,
		RetentionDays: 30,
	})

	old := &models.RevenueSnapshot{
		UserID:         "u1",
		Timestamp:      time.Now().UTC().AddDate(0, 0, -60),
		PrimaryRevenue: 1.0,
		Currency:       "USD",
	}
	if err := f.db.InsertSnapshot(context.Background(), old); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	sched.Start(context.Background())
	waitForSchedulerEvent(t, sched.Events(), EventSyncCompleted)

	count, err := f.db.CountSnapshots(context.Background(), "u1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	// The expired seed is swept, the fresh sync writes one.
	if count != 1 {
		t.Errorf("expected 1 snapshot after sweep, got %d", count)
	}
}

func TestScheduler_NoUserSkipsCycle(t *testing.T) {
	f := newEngineFixture(t)
	primary := &sequencedPrimary{}
	engine := NewEngine(f.db, primary, f.points, f.rates, f.session, nil, nil)
	sched := NewScheduler(engine, &staticIdentity{userID: ""}, f.db, SchedulerConfig{Interval: time.Hour})
	t.Cleanup(sched.Stop)

	sched.Start(context.Background())
	sched.RequestSync()

	select {
	case event := <-sched.Events():
		t.Fatalf("expected no events without a user, got %v", event.Type)
	case <-time.After(100 * time.Millisecond):
	}
	if primary.calls != 0 {
		t.Errorf("expected no fetches, got %d", primary.calls)
	}
}
