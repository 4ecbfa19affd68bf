// Package revenue provides the revenue sources and currency conversion
// used by the reconciliation engine.
package revenue

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

var (
	// ErrUnauthenticated means no token is configured or the primary
	// platform rejected the token. Not retried automatically.
	ErrUnauthenticated = errors.New("not authenticated with primary platform")

	// ErrUnavailable means every fallback tier failed or returned a
	// non-positive total. Callers must not treat this as zero revenue.
	ErrUnavailable = errors.New("revenue unavailable from all sources")

	// ErrSyncFailed means both revenue sources failed in one
	// reconciliation; prior persisted state is left untouched.
	ErrSyncFailed = errors.New("sync failed: no revenue source reachable")
)

// IsTransient reports whether err is a retryable I/O condition: network
// timeout, DNS failure, connection reset, or a cancelled deadline.
// Authentication and parse failures are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthenticated) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	return false
}
