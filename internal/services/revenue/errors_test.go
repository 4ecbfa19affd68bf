package revenue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Timeout", timeoutErr{}, true},
		{"WrappedTimeout", fmt.Errorf("fetch: %w", timeoutErr{}), true},
		{"DNS", &net.DNSError{Err: "no such host", Name: "api.example"}, true},
		{"ConnReset", syscall.ECONNRESET, true},
		{"ConnRefused", syscall.ECONNREFUSED, true},
		{"DeadlineExceeded", context.DeadlineExceeded, true},
		{"Unauthenticated", ErrUnauthenticated, false},
		{"WrappedUnauthenticated", fmt.Errorf("user fetch: %w", ErrUnauthenticated), false},
		{"Unavailable", ErrUnavailable, false},
		{"Plain", errors.New("parse failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTraceRing(t *testing.T) {
	ring := NewTraceRing(3)

	for i := 0; i < 5; i++ {
		trace := FetchTrace{}
		trace.addf("fetch %d", i)
		ring.Add(trace)
	}

	all := ring.All()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Newest first, oldest evicted
	if all[0].Steps[0] != "fetch 4" || all[2].Steps[0] != "fetch 2" {
		t.Errorf("unexpected ring contents: %+v", all)
	}

	last := ring.Last()
	if last == nil || last.Steps[0] != "fetch 4" {
		t.Errorf("Last() = %+v", last)
	}
}

func TestTraceRingEmpty(t *testing.T) {
	ring := NewTraceRing(4)
	if got := ring.All(); len(got) != 0 {
		t.Errorf("All() on empty ring = %v", got)
	}
	if ring.Last() != nil {
		t.Error("Last() on empty ring should be nil")
	}
}
