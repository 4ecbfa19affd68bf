package db

import (
	"context"
	"testing"
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
)

func insertTestSnapshot(t *testing.T, db *DB, userID string, ts time.Time, primary, secondary float64) *models.RevenueSnapshot {
	t.Helper()

	snap := &models.RevenueSnapshot{
		UserID:           userID,
		Timestamp:        ts,
		PrimaryRevenue:   primary,
		SecondaryRevenue: secondary,
		Currency:         "USD",
	}
	if err := db.InsertSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("InsertSnapshot() failed: %v", err)
	}
	return snap
}

func TestInsertSnapshot(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	snap := insertTestSnapshot(t, db, "user-1", time.Now(), 100.0, 5.0)

	if snap.ID == 0 {
		t.Error("InsertSnapshot() should set ID")
	}
}

func TestInsertSnapshot_EmptyUser(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	err := db.InsertSnapshot(context.Background(), &models.RevenueSnapshot{Currency: "USD"})
	if err == nil {
		t.Error("InsertSnapshot() with empty user id should fail")
	}
}

func TestLatestSnapshot(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	insertTestSnapshot(t, db, "user-1", now.Add(-2*time.Hour), 90.0, 0)
	insertTestSnapshot(t, db, "user-1", now, 100.0, 5.0)
	insertTestSnapshot(t, db, "user-2", now.Add(time.Hour), 500.0, 0)

	latest, err := db.LatestSnapshot(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if latest == nil {
		t.Fatal("LatestSnapshot() returned nil")
	}
	if latest.PrimaryRevenue != 100.0 {
		t.Errorf("PrimaryRevenue = %v, want 100.0", latest.PrimaryRevenue)
	}
	if !latest.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", latest.Timestamp, now)
	}
}

func TestLatestSnapshot_NoHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	latest, err := db.LatestSnapshot(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if latest != nil {
		t.Errorf("LatestSnapshot() = %+v, want nil", latest)
	}
}

func TestRecentSnapshots(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		insertTestSnapshot(t, db, "user-1", base.Add(time.Duration(i)*time.Minute), float64(i), 0)
	}

	snaps, err := db.RecentSnapshots(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("RecentSnapshots() failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("len = %d, want 3", len(snaps))
	}
	// Newest first
	if snaps[0].PrimaryRevenue != 4.0 || snaps[2].PrimaryRevenue != 2.0 {
		t.Errorf("unexpected ordering: %+v", snaps)
	}
}

func TestSnapshotsSince(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Now().UTC()
	insertTestSnapshot(t, db, "user-1", base.Add(-48*time.Hour), 10.0, 0)
	insertTestSnapshot(t, db, "user-1", base.Add(-1*time.Hour), 20.0, 0)
	insertTestSnapshot(t, db, "user-1", base, 30.0, 0)

	snaps, err := db.SnapshotsSince(context.Background(), "user-1", base.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("SnapshotsSince() failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("len = %d, want 2", len(snaps))
	}
	// Oldest first
	if snaps[0].PrimaryRevenue != 20.0 || snaps[1].PrimaryRevenue != 30.0 {
		t.Errorf("unexpected ordering: %+v", snaps)
	}
}

func TestDeleteSnapshotsBefore(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Now().UTC()
	insertTestSnapshot(t, db, "user-1", base.Add(-400*24*time.Hour), 1.0, 0)
	insertTestSnapshot(t, db, "user-2", base.Add(-399*24*time.Hour), 2.0, 0)
	insertTestSnapshot(t, db, "user-1", base, 3.0, 0)

	deleted, err := db.DeleteSnapshotsBefore(context.Background(), base.Add(-365*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteSnapshotsBefore() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	n, err := db.CountSnapshots(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountSnapshots() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("user-1 count = %d, want 1", n)
	}
}

func TestDeleteUserHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now().UTC()
	insertTestSnapshot(t, db, "user-1", now, 1.0, 0)
	insertTestSnapshot(t, db, "user-2", now, 2.0, 0)

	if err := db.DeleteUserHistory(context.Background(), "user-1"); err != nil {
		t.Fatalf("DeleteUserHistory() failed: %v", err)
	}

	n, _ := db.CountSnapshots(context.Background(), "user-1")
	if n != 0 {
		t.Errorf("user-1 count = %d, want 0", n)
	}
	n, _ = db.CountSnapshots(context.Background(), "user-2")
	if n != 1 {
		t.Errorf("user-2 count = %d, want 1", n)
	}
}
