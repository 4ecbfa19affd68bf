package models

import "time"

// SyncOutcome classifies the result of one scheduled reconciliation run.
type SyncOutcome int

const (
	// SyncSuccess means the run completed and display state was updated.
	SyncSuccess SyncOutcome = iota
	// SyncRetry means the run hit a transient I/O failure and should be
	// retried with backoff.
	SyncRetry
	// SyncPermanentFailure means the run failed in a way retrying within
	// the same cycle cannot fix (bad credentials, exhausted fallbacks).
	SyncPermanentFailure
)

// String returns the display name for a sync outcome.
func (o SyncOutcome) String() string {
	switch o {
	case SyncSuccess:
		return "Success"
	case SyncRetry:
		return "Retry"
	case SyncPermanentFailure:
		return "PermanentFailure"
	default:
		return "Unknown"
	}
}

// SyncStatus is the connectivity state shown to the user. A transient
// failure flips Offline until the next successful sync; previously
// displayed totals are never cleared.
type SyncStatus struct {
	Offline      bool
	Degraded     bool
	LastSuccess  time.Time
	LastAttempt  time.Time
	LastError    string
	AuthRequired bool
}
