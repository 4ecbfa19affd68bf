// Package history turns the raw snapshot series into per-day earning
// deltas and calendar-week windows for display.
package history

import (
	"sort"
	"time"

	"github.com/mbridges/modpay-tui/internal/models"
)

// DayStart returns midnight UTC of the day containing t.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday midnight UTC starting the week that is
// offset weeks away from the week containing now. Offsets greater than
// zero are clamped to the current week.
func WeekStart(now time.Time, offset int) time.Time {
	if offset > 0 {
		offset = 0
	}
	day := DayStart(now)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	return sunday.AddDate(0, 0, 7*offset)
}

// DailyDeltas computes per-day earning deltas from a snapshot series.
//
// Snapshots are bucketed by UTC calendar day and each day is represented
// by its maximum combined total, so a transient dip inside a day is not
// read as a loss. The earliest day always yields a zero delta: a
// cumulative total has no meaningful increment without a predecessor.
// Day-over-day drops (refunds, corrections) are clamped to zero, but the
// running baseline still follows the drop.
func DailyDeltas(snapshots []models.RevenueSnapshot) []models.DailyDelta {
	if len(snapshots) == 0 {
		return nil
	}

	dayMax := make(map[time.Time]float64)
	for _, snap := range snapshots {
		day := DayStart(snap.Timestamp)
		total := snap.Total()
		if existing, ok := dayMax[day]; !ok || total > existing {
			dayMax[day] = total
		}
	}

	days := make([]time.Time, 0, len(dayMax))
	for day := range dayMax {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	deltas := make([]models.DailyDelta, 0, len(days))
	first := true
	var previousTotal float64

	for _, day := range days {
		total := dayMax[day]
		if first {
			deltas = append(deltas, models.DailyDelta{DayStart: day, Amount: 0})
			first = false
		} else {
			amount := total - previousTotal
			if amount < 0 {
				amount = 0
			}
			deltas = append(deltas, models.DailyDelta{DayStart: day, Amount: amount})
		}
		previousTotal = total
	}

	return deltas
}

// WeekWindow slices deltas into the 7-day window for the given week
// offset (0 = the week containing now, negative = past weeks). Days
// without a computed delta are filled with zero. Forward navigation is
// bounded at the current week.
func WeekWindow(deltas []models.DailyDelta, weekOffset int, now time.Time) []models.DailyDelta {
	start := WeekStart(now, weekOffset)

	byDay := make(map[time.Time]float64, len(deltas))
	for _, d := range deltas {
		byDay[d.DayStart] = d.Amount
	}

	window := make([]models.DailyDelta, 7)
	for i := range window {
		day := start.AddDate(0, 0, i)
		window[i] = models.DailyDelta{DayStart: day, Amount: byDay[day]}
	}
	return window
}

// RecentDeltas returns up to n most recent deltas, newest first.
func RecentDeltas(deltas []models.DailyDelta, n int) []models.DailyDelta {
	if n <= 0 || len(deltas) == 0 {
		return nil
	}

	out := make([]models.DailyDelta, len(deltas))
	copy(out, deltas)
	sort.Slice(out, func(i, j int) bool { return out[i].DayStart.After(out[j].DayStart) })

	if len(out) > n {
		out = out[:n]
	}
	return out
}
