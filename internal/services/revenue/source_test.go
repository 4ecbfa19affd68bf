package revenue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func jsonResponse(t *testing.T, status int, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body))}
}

// newTestSource builds a PrimarySource whose HTTP layer is routed
// through the given per-path handlers.
func newTestSource(t *testing.T, handlers map[string]func(req *http.Request) (*http.Response, error)) *PrimarySource {
	t.Helper()

	src := NewPrimarySource(PrimaryConfig{APIURL: "http://prim/v2", V3APIURL: "http://prim/v3"})
	src.client = &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			for prefix, handler := range handlers {
				if strings.HasPrefix(req.URL.Path, prefix) {
					return handler(req)
				}
			}
			return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader("not found"))}, nil
		},
	}}
	return src
}

func userHandler(t *testing.T) func(req *http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return jsonResponse(t, 200, User{ID: "u1", Username: "alice", AvatarURL: "http://a/img.png"}), nil
	}
}

func TestFetch_Tier1Wins(t *testing.T) {
	analyticsCalls := 0
	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user/u1/payout_history": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, PayoutHistory{AllTime: "123.45"}), nil
		},
		"/v2/user": userHandler(t),
		"/v3/analytics/revenue": func(req *http.Request) (*http.Response, error) {
			analyticsCalls++
			return jsonResponse(t, 200, AnalyticsResponse{}), nil
		},
	})

	reading, profile, err := src.Fetch(context.Background(), "token")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if reading.TotalAmount != 123.45 {
		t.Errorf("TotalAmount = %v, want 123.45", reading.TotalAmount)
	}
	if reading.Last24Hours != 0 {
		t.Errorf("Last24Hours = %v, want 0 (tier 1 cannot supply it)", reading.Last24Hours)
	}
	if profile == nil || profile.Username != "alice" || profile.UserID != "u1" {
		t.Errorf("profile = %+v", profile)
	}
	if analyticsCalls != 0 {
		t.Errorf("tier 2 invoked %d times after tier 1 won", analyticsCalls)
	}
}

func TestFetch_ZeroTotalFallsThroughToTier2(t *testing.T) {
	now := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user/u1/payout_history": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, PayoutHistory{AllTime: "0.00"}), nil
		},
		"/v2/user": userHandler(t),
		"/v3/analytics/revenue": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, map[string]map[string]float64{
				"projA": {
					"2024-01-01T00:00:00Z": 5.0,
					"2024-01-02T00:00:00Z": 3.0,
				},
			}), nil
		},
	})
	src.now = func() time.Time { return now }

	reading, _, err := src.Fetch(context.Background(), "token")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if reading.TotalAmount != 8.0 {
		t.Errorf("TotalAmount = %v, want 8.0", reading.TotalAmount)
	}
	if reading.Last24Hours != 0.0 {
		t.Errorf("Last24Hours = %v, want 0.0 (dates outside trailing 24h)", reading.Last24Hours)
	}
}

func TestFetch_AnalyticsTrailing24h(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user/u1/payout_history": func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("oops"))}, nil
		},
		"/v2/user": userHandler(t),
		"/v3/analytics/revenue": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, map[string]map[string]float64{
				"projA": {
					"2024-01-02T06:00:00Z": 2.5, // inside trailing 24h
					"2023-12-25T00:00:00Z": 7.5, // outside
					"not-a-date":           1.0, // skipped for 24h, counted in total
				},
			}), nil
		},
	})
	src.now = func() time.Time { return now }

	reading, _, err := src.Fetch(context.Background(), "token")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if reading.TotalAmount != 11.0 {
		t.Errorf("TotalAmount = %v, want 11.0", reading.TotalAmount)
	}
	if reading.Last24Hours != 2.5 {
		t.Errorf("Last24Hours = %v, want 2.5", reading.Last24Hours)
	}
}

func TestFetch_NoToken(t *testing.T) {
	src := newTestSource(t, nil)

	_, _, err := src.Fetch(context.Background(), "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Fetch() error = %v, want ErrUnauthenticated", err)
	}
}

func TestFetch_TokenRejected(t *testing.T) {
	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user": func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 401, Body: io.NopCloser(strings.NewReader("unauthorized"))}, nil
		},
	})

	_, _, err := src.Fetch(context.Background(), "bad-token")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Fetch() error = %v, want ErrUnauthenticated", err)
	}
}

func TestFetch_AllTiersNonPositive(t *testing.T) {
	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user/u1/payout_history": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, PayoutHistory{AllTime: "0"}), nil
		},
		"/v2/user": userHandler(t),
		"/v3/analytics/revenue": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, AnalyticsResponse{}), nil
		},
	})

	_, _, err := src.Fetch(context.Background(), "token")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrUnavailable", err)
	}
}

func TestFetch_AnalyticsNetworkErrorPropagates(t *testing.T) {
	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user/u1/payout_history": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, PayoutHistory{AllTime: "not-a-number"}), nil
		},
		"/v2/user": userHandler(t),
		"/v3/analytics/revenue": func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		},
	})

	_, _, err := src.Fetch(context.Background(), "token")
	if err == nil {
		t.Fatal("Fetch() should propagate analytics failure")
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Fetch() error = %v, want plain I/O error", err)
	}
}

func TestFetch_RecordsTraces(t *testing.T) {
	src := newTestSource(t, map[string]func(req *http.Request) (*http.Response, error){
		"/v2/user/u1/payout_history": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, 200, PayoutHistory{AllTime: "10.00"}), nil
		},
		"/v2/user": userHandler(t),
	})

	if _, _, err := src.Fetch(context.Background(), "token"); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	traces := src.Traces()
	if len(traces) != 1 {
		t.Fatalf("len(traces) = %d, want 1", len(traces))
	}
	got := traces[0].String()
	if !strings.Contains(got, "tier 1 won") {
		t.Errorf("trace missing tier 1 outcome:\n%s", got)
	}
}
