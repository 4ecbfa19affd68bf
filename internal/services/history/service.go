package history

import (
	"context"
	"fmt"
	"time"

	"github.com/mbridges/modpay-tui/internal/db"
	"github.com/mbridges/modpay-tui/internal/models"
)

// historyWindowDays bounds how far back the display read path looks.
// Several weeks of deltas is enough for week navigation and the recent
// activity list.
const historyWindowDays = 90

// Service is the read path over the snapshot store. It never blocks the
// writer and tolerates seeing pre- or post-write state.
type Service struct {
	db  *db.DB
	now func() time.Time
}

// New creates a history service backed by the snapshot store.
func New(database *db.DB) *Service {
	return &Service{db: database, now: time.Now}
}

// Deltas returns the per-day earning deltas for a user over the recent
// history window, oldest first.
func (s *Service) Deltas(ctx context.Context, userID string) ([]models.DailyDelta, error) {
	since := s.now().UTC().AddDate(0, 0, -historyWindowDays)
	snapshots, err := s.db.SnapshotsSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	return DailyDeltas(snapshots), nil
}

// Week returns the 7-day delta window for the given week offset
// (0 = current week, negative = past weeks).
func (s *Service) Week(ctx context.Context, userID string, weekOffset int) ([]models.DailyDelta, error) {
	deltas, err := s.Deltas(ctx, userID)
	if err != nil {
		return nil, err
	}
	return WeekWindow(deltas, weekOffset, s.now()), nil
}

// Recent returns up to n most recent daily deltas, newest first.
func (s *Service) Recent(ctx context.Context, userID string, n int) ([]models.DailyDelta, error) {
	deltas, err := s.Deltas(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RecentDeltas(deltas, n), nil
}

// Snapshots returns up to limit raw snapshots for a user, newest first.
func (s *Service) Snapshots(ctx context.Context, userID string, limit int) ([]models.RevenueSnapshot, error) {
	return s.db.RecentSnapshots(ctx, userID, limit)
}
