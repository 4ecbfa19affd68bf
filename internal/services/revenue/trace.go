package revenue

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// FetchTrace is a diagnostic record of one primary-source fetch: which
// tier won or failed and why. It has no retention guarantee beyond the
// ring that holds it.
type FetchTrace struct {
	StartedAt time.Time
	Steps     []string
	Err       string
}

func (t *FetchTrace) addf(format string, args ...any) {
	t.Steps = append(t.Steps, fmt.Sprintf(format, args...))
}

// String renders the trace as one line per step.
func (t FetchTrace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch @ %s\n", t.StartedAt.UTC().Format(time.RFC3339))
	for _, step := range t.Steps {
		b.WriteString("  ")
		b.WriteString(step)
		b.WriteString("\n")
	}
	if t.Err != "" {
		fmt.Fprintf(&b, "  error: %s\n", t.Err)
	}
	return b.String()
}

// TraceRing keeps the most recent fetch traces in a fixed-size ring.
type TraceRing struct {
	mu     sync.Mutex
	traces []FetchTrace
	next   int
	filled bool
}

// NewTraceRing creates a ring holding up to capacity traces.
func NewTraceRing(capacity int) *TraceRing {
	if capacity < 1 {
		capacity = 1
	}
	return &TraceRing{traces: make([]FetchTrace, capacity)}
}

// Add records a trace, evicting the oldest when full.
func (r *TraceRing) Add(trace FetchTrace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.traces[r.next] = trace
	r.next = (r.next + 1) % len(r.traces)
	if r.next == 0 {
		r.filled = true
	}
}

// All returns the recorded traces, newest first.
func (r *TraceRing) All() []FetchTrace {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.filled {
		size = len(r.traces)
	}

	out := make([]FetchTrace, 0, size)
	for i := 1; i <= size; i++ {
		idx := (r.next - i + len(r.traces)) % len(r.traces)
		out = append(out, r.traces[idx])
	}
	return out
}

// Last returns the most recent trace, or nil if none recorded.
func (r *TraceRing) Last() *FetchTrace {
	all := r.All()
	if len(all) == 0 {
		return nil
	}
	return &all[0]
}
