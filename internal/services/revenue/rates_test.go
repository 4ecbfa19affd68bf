package revenue

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestRateProvider(t *testing.T, fn func(req *http.Request) (*http.Response, error)) (*RateProvider, *int) {
	t.Helper()

	calls := 0
	p := NewRateProvider("http://rates")
	p.client = &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			calls++
			return fn(req)
		},
	}}
	return p, &calls
}

func TestRate_BaseCurrencyNoCall(t *testing.T) {
	p, calls := newTestRateProvider(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected for base currency")
		return nil, nil
	})

	if got := p.Rate(context.Background(), "USD", 1.0); got != 1.0 {
		t.Errorf("Rate(USD) = %v, want 1.0", got)
	}
	if *calls != 0 {
		t.Errorf("calls = %d, want 0", *calls)
	}
}

func TestRate_FetchAndCache(t *testing.T) {
	p, calls := newTestRateProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(t, 200, ratesResponse{Rates: map[string]float64{"EUR": 0.9}}), nil
	})

	if got := p.Rate(context.Background(), "EUR", 1.0); got != 0.9 {
		t.Errorf("Rate(EUR) = %v, want 0.9", got)
	}
	// Second lookup within TTL is served from cache.
	if got := p.Rate(context.Background(), "EUR", 1.0); got != 0.9 {
		t.Errorf("Rate(EUR) cached = %v, want 0.9", got)
	}
	if *calls != 1 {
		t.Errorf("calls = %d, want 1", *calls)
	}
}

func TestRate_CacheExpires(t *testing.T) {
	p, calls := newTestRateProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(t, 200, ratesResponse{Rates: map[string]float64{"EUR": 0.9}}), nil
	})

	base := time.Now()
	p.now = func() time.Time { return base }
	p.Rate(context.Background(), "EUR", 1.0)

	p.now = func() time.Time { return base.Add(rateCacheTTL + time.Minute) }
	p.Rate(context.Background(), "EUR", 1.0)

	if *calls != 2 {
		t.Errorf("calls = %d, want 2 after TTL expiry", *calls)
	}
}

func TestRate_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		fn   func(req *http.Request) (*http.Response, error)
	}{
		{
			name: "NetworkError",
			fn: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("dial timeout")
			},
		},
		{
			name: "MissingKey",
			fn: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(t, 200, ratesResponse{Rates: map[string]float64{"GBP": 0.8}}), nil
			},
		},
		{
			name: "BadJSON",
			fn: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("nonsense"))}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestRateProvider(t, tt.fn)
			if got := p.Rate(context.Background(), "EUR", 1.0); got != 1.0 {
				t.Errorf("Rate() = %v, want fallback 1.0", got)
			}
		})
	}
}

func TestRate_RoundTrip(t *testing.T) {
	const eurRate = 0.92

	p, _ := newTestRateProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(t, 200, ratesResponse{Rates: map[string]float64{"EUR": eurRate}}), nil
	})

	amount := 150.0
	converted := amount * p.Rate(context.Background(), "EUR", 1.0)
	back := converted / eurRate

	if math.Abs(back-amount) > 1e-9 {
		t.Errorf("round trip = %v, want %v", back, amount)
	}
}
