package revenue

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mbridges/modpay-tui/internal/config"
	"github.com/mbridges/modpay-tui/internal/logger"
)

// rateCacheTTL bounds how long a fetched exchange rate is reused.
const rateCacheTTL = 30 * time.Minute

type cachedRate struct {
	currency  string
	rate      float64
	fetchedAt time.Time
}

func (c *cachedRate) valid(currency string, now time.Time) bool {
	return c != nil && c.currency == currency && now.Sub(c.fetchedAt) < rateCacheTTL
}

// ratesResponse is the shape of GET /latest?from=BASE&to=TARGET.
type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// RateProvider fetches and caches the base-to-target exchange rate.
// Lookup failures never propagate: a caller-supplied fallback is
// returned instead, because conversion failure must never block display
// of raw totals.
type RateProvider struct {
	mu      sync.Mutex
	client  *http.Client
	baseURL string
	cache   *cachedRate
	now     func() time.Time
}

// NewRateProvider creates a rate provider backed by the given endpoint.
func NewRateProvider(baseURL string) *RateProvider {
	return &RateProvider{
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Rate returns the conversion factor from the base currency to target.
// The base currency itself always converts at 1.0 with no call. On any
// fetch failure the fallback is returned.
func (p *RateProvider) Rate(ctx context.Context, target string, fallback float64) float64 {
	if target == "" || target == config.BaseCurrency {
		return 1.0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache.valid(target, p.now()) {
		return p.cache.rate
	}

	rate, err := p.fetchRate(ctx, target)
	if err != nil {
		logger.Warn("exchange rate lookup failed", "currency", target, "error", err)
		return fallback
	}

	p.cache = &cachedRate{currency: target, rate: rate, fetchedAt: p.now()}
	return rate
}

func (p *RateProvider) fetchRate(ctx context.Context, target string) (float64, error) {
	params := url.Values{}
	params.Set("from", config.BaseCurrency)
	params.Set("to", target)

	var resp ratesResponse
	endpoint := p.baseURL + "/latest?" + params.Encode()
	if err := doJSONRequest(ctx, p.client, "GET", endpoint, "", &resp); err != nil {
		return 0, err
	}

	rate, ok := resp.Rates[target]
	if !ok {
		return 0, fmt.Errorf("rate for %s missing from response", target)
	}
	return rate, nil
}
