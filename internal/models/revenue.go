// Package models defines data structures and domain types.
package models

import "time"

// RevenueSnapshot is an immutable point-in-time record of a creator's
// cumulative revenue, always stored in the base currency.
type RevenueSnapshot struct {
	ID               int64
	UserID           string
	Timestamp        time.Time
	PrimaryRevenue   float64
	SecondaryRevenue float64
	Currency         string
}

// Total returns the combined cumulative revenue of the snapshot.
func (s RevenueSnapshot) Total() float64 {
	return s.PrimaryRevenue + s.SecondaryRevenue
}

// RevenueReading is the transient result of one primary-source fetch.
type RevenueReading struct {
	// TotalAmount is the all-time cumulative revenue in base currency.
	TotalAmount float64
	// Last24Hours is the revenue attributable to the trailing 24 hour
	// window. Zero when the winning tier cannot supply it.
	Last24Hours float64
}

// CombinedRevenue is the outcome of one reconciliation, converted to the
// user's display currency. It is never persisted.
type CombinedRevenue struct {
	TotalConverted     float64
	PrimaryConverted   float64
	SecondaryConverted float64
	Last24hConverted   float64
	Currency           string
	// Degraded is set when one of the two revenue sources could not be
	// freshly fetched and a cached or zero value was substituted.
	Degraded bool
	// SnapshotWritten reports whether this reconciliation passed the
	// debounce policy and persisted a new snapshot.
	SnapshotWritten bool
	FetchedAt       time.Time
}

// DailyDelta is the earnings attributed to one UTC calendar day.
type DailyDelta struct {
	// DayStart is midnight UTC of the day.
	DayStart time.Time
	// Amount is never negative; drops between days are clamped to zero.
	Amount float64
}

// Profile is the authenticated account identity surfaced by the primary
// source alongside a successful revenue fetch.
type Profile struct {
	UserID    string
	Username  string
	AvatarURL string
}
