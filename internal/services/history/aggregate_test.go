package history

import (
	"testing"
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
)

func snap(t time.Time, primary, secondary float64) models.RevenueSnapshot {
	return models.RevenueSnapshot{
		UserID:           "user-1",
		Timestamp:        t,
		PrimaryRevenue:   primary,
		SecondaryRevenue: secondary,
		Currency:         "USD",
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyDeltas_FirstDayIsZero(t *testing.T) {
	deltas := DailyDeltas([]models.RevenueSnapshot{
		snap(day(2024, 3, 1).Add(10*time.Hour), 500.0, 25.0),
	})

	if len(deltas) != 1 {
		t.Fatalf("len = %d, want 1", len(deltas))
	}
	if deltas[0].Amount != 0 {
		t.Errorf("first day amount = %v, want 0", deltas[0].Amount)
	}
	if !deltas[0].DayStart.Equal(day(2024, 3, 1)) {
		t.Errorf("day start = %v", deltas[0].DayStart)
	}
}

func TestDailyDeltas_ClampsNegative(t *testing.T) {
	// totals 100 -> 130 -> 125: day2's drop is clamped, not negative
	deltas := DailyDeltas([]models.RevenueSnapshot{
		snap(day(2024, 3, 1).Add(8*time.Hour), 100.0, 0),
		snap(day(2024, 3, 2).Add(8*time.Hour), 130.0, 0),
		snap(day(2024, 3, 3).Add(8*time.Hour), 125.0, 0),
	})

	want := []float64{0, 30, 0}
	if len(deltas) != len(want) {
		t.Fatalf("len = %d, want %d", len(deltas), len(want))
	}
	for i, w := range want {
		if deltas[i].Amount != w {
			t.Errorf("deltas[%d].Amount = %v, want %v", i, deltas[i].Amount, w)
		}
	}
}

func TestDailyDeltas_BaselineFollowsDrop(t *testing.T) {
	// After a drop the baseline is the dropped total, so recovery counts
	// from there.
	deltas := DailyDeltas([]models.RevenueSnapshot{
		snap(day(2024, 3, 1), 100.0, 0),
		snap(day(2024, 3, 2), 80.0, 0),
		snap(day(2024, 3, 3), 95.0, 0),
	})

	want := []float64{0, 0, 15}
	for i, w := range want {
		if deltas[i].Amount != w {
			t.Errorf("deltas[%d].Amount = %v, want %v", i, deltas[i].Amount, w)
		}
	}
}

func TestDailyDeltas_MaxPerDay(t *testing.T) {
	// Intra-day dip must not register; the day is represented by its max.
	deltas := DailyDeltas([]models.RevenueSnapshot{
		snap(day(2024, 3, 1).Add(1*time.Hour), 100.0, 0),
		snap(day(2024, 3, 2).Add(1*time.Hour), 140.0, 0),
		snap(day(2024, 3, 2).Add(2*time.Hour), 120.0, 0),
		snap(day(2024, 3, 2).Add(3*time.Hour), 135.0, 0),
	})

	if deltas[1].Amount != 40.0 {
		t.Errorf("day 2 amount = %v, want 40.0", deltas[1].Amount)
	}
}

func TestDailyDeltas_CombinesSources(t *testing.T) {
	deltas := DailyDeltas([]models.RevenueSnapshot{
		snap(day(2024, 3, 1), 100.0, 10.0),
		snap(day(2024, 3, 2), 100.0, 30.0),
	})

	if deltas[1].Amount != 20.0 {
		t.Errorf("amount = %v, want 20.0 (secondary growth)", deltas[1].Amount)
	}
}

func TestDailyDeltas_NeverNegative(t *testing.T) {
	snapshots := []models.RevenueSnapshot{
		snap(day(2024, 3, 1), 50, 0),
		snap(day(2024, 3, 2), 70, 0),
		snap(day(2024, 3, 3), 10, 0),
		snap(day(2024, 3, 4), 200, 0),
		snap(day(2024, 3, 5), 150, 0),
	}

	deltas := DailyDeltas(snapshots)
	if deltas[0].Amount != 0 {
		t.Errorf("deltas[0].Amount = %v, want 0", deltas[0].Amount)
	}
	for i, d := range deltas {
		if d.Amount < 0 {
			t.Errorf("deltas[%d].Amount = %v, negative", i, d.Amount)
		}
	}
}

func TestDailyDeltas_Empty(t *testing.T) {
	if got := DailyDeltas(nil); got != nil {
		t.Errorf("DailyDeltas(nil) = %v, want nil", got)
	}
}

func TestWeekStart_Sunday(t *testing.T) {
	// 2024-03-06 is a Wednesday; its week starts Sunday 2024-03-03.
	now := time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)

	if got := WeekStart(now, 0); !got.Equal(day(2024, 3, 3)) {
		t.Errorf("WeekStart(offset=0) = %v, want 2024-03-03", got)
	}
	if got := WeekStart(now, -1); !got.Equal(day(2024, 2, 25)) {
		t.Errorf("WeekStart(offset=-1) = %v, want 2024-02-25", got)
	}
	// Forward navigation is bounded at the current week.
	if got := WeekStart(now, 3); !got.Equal(day(2024, 3, 3)) {
		t.Errorf("WeekStart(offset=3) = %v, want clamp to current week", got)
	}
}

func TestWeekWindow_ContainsTodayAndFillsGaps(t *testing.T) {
	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	deltas := []models.DailyDelta{
		{DayStart: day(2024, 3, 4), Amount: 12.0},
		{DayStart: day(2024, 3, 6), Amount: 3.5},
	}

	window := WeekWindow(deltas, 0, now)
	if len(window) != 7 {
		t.Fatalf("len = %d, want 7", len(window))
	}

	today := DayStart(now)
	foundToday := false
	for _, d := range window {
		if d.DayStart.Equal(today) {
			foundToday = true
			if d.Amount != 3.5 {
				t.Errorf("today's amount = %v, want 3.5", d.Amount)
			}
		}
	}
	if !foundToday {
		t.Error("window for offset 0 does not include today")
	}

	// Days without data are synthesized as zeros.
	if window[0].Amount != 0 || window[6].Amount != 0 {
		t.Errorf("expected zero-filled edges: %+v", window)
	}
	if window[1].Amount != 12.0 {
		t.Errorf("monday amount = %v, want 12.0", window[1].Amount)
	}
}

func TestWeekWindow_StableUnderRepeatedCalls(t *testing.T) {
	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	deltas := []models.DailyDelta{{DayStart: day(2024, 3, 5), Amount: 8.0}}

	first := WeekWindow(deltas, 0, now)
	second := WeekWindow(deltas, 0, now.Add(5*time.Hour))

	for i := range first {
		if !first[i].DayStart.Equal(second[i].DayStart) || first[i].Amount != second[i].Amount {
			t.Fatalf("window unstable at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRecentDeltas(t *testing.T) {
	deltas := []models.DailyDelta{
		{DayStart: day(2024, 3, 1), Amount: 1},
		{DayStart: day(2024, 3, 3), Amount: 3},
		{DayStart: day(2024, 3, 2), Amount: 2},
	}

	recent := RecentDeltas(deltas, 2)
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if !recent[0].DayStart.Equal(day(2024, 3, 3)) || !recent[1].DayStart.Equal(day(2024, 3, 2)) {
		t.Errorf("unexpected order: %+v", recent)
	}

	if got := RecentDeltas(deltas, 0); got != nil {
		t.Errorf("RecentDeltas(n=0) = %v, want nil", got)
	}
}
