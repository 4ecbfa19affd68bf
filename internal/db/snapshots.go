package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
)

// InsertSnapshot persists a snapshot and assigns its ID.
func (db *DB) InsertSnapshot(ctx context.Context, snap *models.RevenueSnapshot) error {
	if snap.UserID == "" {
		return fmt.Errorf("snapshot user id is empty")
	}

	timestamp := snap.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	query := `
		INSERT INTO revenue_snapshots (user_id, timestamp, primary_revenue, secondary_revenue, currency)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query,
		snap.UserID,
		timestamp.UnixMilli(),
		snap.PrimaryRevenue,
		snap.SecondaryRevenue,
		snap.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		snap.ID = id
	}
	snap.Timestamp = timestamp

	return nil
}

// LatestSnapshot returns the most recent snapshot for a user, or nil if
// the user has no history yet.
func (db *DB) LatestSnapshot(ctx context.Context, userID string) (*models.RevenueSnapshot, error) {
	query := `
		SELECT id, user_id, timestamp, primary_revenue, secondary_revenue, currency
		FROM revenue_snapshots
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`
	snap, err := scanSnapshot(db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	return snap, nil
}

// RecentSnapshots returns up to limit snapshots for a user, newest first.
func (db *DB) RecentSnapshots(ctx context.Context, userID string, limit int) ([]models.RevenueSnapshot, error) {
	query := `
		SELECT id, user_id, timestamp, primary_revenue, secondary_revenue, currency
		FROM revenue_snapshots
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSnapshots(rows)
}

// SnapshotsSince returns all snapshots for a user at or after the given
// time, oldest first.
func (db *DB) SnapshotsSince(ctx context.Context, userID string, since time.Time) ([]models.RevenueSnapshot, error) {
	query := `
		SELECT id, user_id, timestamp, primary_revenue, secondary_revenue, currency
		FROM revenue_snapshots
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`
	rows, err := db.QueryContext(ctx, query, userID, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots since %v: %w", since, err)
	}
	defer func() { _ = rows.Close() }()

	return collectSnapshots(rows)
}

// CountSnapshots returns the number of snapshots stored for a user.
func (db *DB) CountSnapshots(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM revenue_snapshots WHERE user_id = ?", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// DeleteSnapshotsBefore removes snapshots older than the cutoff across
// all users. Used by the retention sweep.
func (db *DB) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		"DELETE FROM revenue_snapshots WHERE timestamp < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// DeleteUserHistory removes all snapshots for a user (account reset).
func (db *DB) DeleteUserHistory(ctx context.Context, userID string) error {
	if _, err := db.ExecContext(ctx,
		"DELETE FROM revenue_snapshots WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete history for user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.RevenueSnapshot, error) {
	var snap models.RevenueSnapshot
	var unixMilli int64

	err := row.Scan(
		&snap.ID,
		&snap.UserID,
		&unixMilli,
		&snap.PrimaryRevenue,
		&snap.SecondaryRevenue,
		&snap.Currency,
	)
	if err != nil {
		return nil, err
	}

	snap.Timestamp = time.UnixMilli(unixMilli).UTC()
	return &snap, nil
}

func collectSnapshots(rows *sql.Rows) ([]models.RevenueSnapshot, error) {
	var snapshots []models.RevenueSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, rows.Err()
}
