package revenue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mbridges/modpay-tui/internal/models"
)

const (
	// analyticsTimeFormat is the ISO-8601 seconds-precision UTC format
	// the analytics endpoint expects.
	analyticsTimeFormat = "2006-01-02T15:04:05Z"

	// analyticsEpochFloor is the start of the historical window queried
	// from the analytics endpoint.
	analyticsEpochFloor = "2020-01-01T00:00:00Z"

	traceCapacity = 8
)

// PrimaryConfig holds the endpoints for the primary revenue platform.
type PrimaryConfig struct {
	APIURL   string
	V3APIURL string
}

// PrimarySource fetches a creator's revenue from the primary platform
// using an ordered fallback chain: the payout-history summary first,
// then the raw analytics time series.
type PrimarySource struct {
	client *http.Client
	cfg    PrimaryConfig
	traces *TraceRing
	now    func() time.Time
}

// NewPrimarySource creates a primary revenue source.
func NewPrimarySource(cfg PrimaryConfig) *PrimarySource {
	return &PrimarySource{
		client: &http.Client{Timeout: requestTimeout},
		cfg:    cfg,
		traces: NewTraceRing(traceCapacity),
		now:    time.Now,
	}
}

// Traces returns the recent fetch traces, newest first. Read-only
// diagnostics; not part of the value contract.
func (s *PrimarySource) Traces() []FetchTrace {
	return s.traces.All()
}

// Fetch retrieves the current revenue reading for the given token. On
// success it also returns the authenticated account's profile for the
// identity layer.
//
// Fails with ErrUnauthenticated when no token is configured or the
// token is rejected, and with ErrUnavailable when every tier fails or
// yields a non-positive total.
func (s *PrimarySource) Fetch(ctx context.Context, token string) (models.RevenueReading, *models.Profile, error) {
	trace := FetchTrace{StartedAt: s.now()}
	defer func() { s.traces.Add(trace) }()

	if token == "" {
		trace.Err = "no token configured"
		return models.RevenueReading{}, nil, ErrUnauthenticated
	}

	user, err := FetchAuthenticatedUser(ctx, s.client, s.cfg.APIURL, token)
	if err != nil {
		trace.Err = err.Error()
		return models.RevenueReading{}, nil, err
	}
	if user.ID == "" {
		// Some token scopes hide the account id. Derive a stable stand-in
		// so per-user history still keys consistently.
		user.ID = fallbackUserID(token)
	}
	trace.addf("user: %s (%s)", user.Username, user.ID)

	profile := &models.Profile{
		UserID:    user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}

	// Tier 1: authoritative all-time total from the payout summary.
	// Cannot supply a 24h figure.
	if reading, ok := s.fetchSummaryTier(ctx, token, user.ID, &trace); ok {
		return reading, profile, nil
	}

	// Tier 2: sum the raw analytics time series.
	reading, err := s.fetchAnalyticsTier(ctx, token, &trace)
	if err != nil {
		trace.Err = err.Error()
		return models.RevenueReading{}, profile, err
	}

	return reading, profile, nil
}

// fallbackUserID derives a deterministic user id from the token.
func fallbackUserID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auto_generated_" + hex.EncodeToString(sum[:])
}

func (s *PrimarySource) fetchSummaryTier(ctx context.Context, token, userID string, trace *FetchTrace) (models.RevenueReading, bool) {
	history, err := FetchPayoutHistory(ctx, s.client, s.cfg.APIURL, token, userID)
	if err != nil {
		trace.addf("tier 1 failed: %v", err)
		return models.RevenueReading{}, false
	}

	allTime, err := decimal.NewFromString(history.AllTime)
	if err != nil {
		trace.addf("tier 1 unparseable all_time %q", history.AllTime)
		return models.RevenueReading{}, false
	}
	if !allTime.IsPositive() {
		trace.addf("tier 1 non-positive all_time %s", allTime)
		return models.RevenueReading{}, false
	}

	trace.addf("tier 1 won: all_time=%s", allTime)
	total, _ := allTime.Float64()
	return models.RevenueReading{TotalAmount: total}, true
}

func (s *PrimarySource) fetchAnalyticsTier(ctx context.Context, token string, trace *FetchTrace) (models.RevenueReading, error) {
	start, err := time.Parse(analyticsTimeFormat, analyticsEpochFloor)
	if err != nil {
		return models.RevenueReading{}, fmt.Errorf("bad analytics epoch floor: %w", err)
	}
	end := s.now().UTC()

	analytics, err := FetchRevenueAnalytics(ctx, s.client, s.cfg.V3APIURL, token, start, end)
	if err != nil {
		trace.addf("tier 2 failed: %v", err)
		return models.RevenueReading{}, err
	}

	dayAgo := end.Add(-24 * time.Hour)
	total := decimal.Zero
	last24h := decimal.Zero
	entries := 0

	for _, days := range analytics {
		for dateStr, amount := range days {
			value, err := decimal.NewFromString(amount.String())
			if err != nil {
				continue
			}
			entries++
			total = total.Add(value)

			// A single unparsable date is skipped, not fatal.
			date, err := time.Parse(analyticsTimeFormat, dateStr)
			if err != nil {
				continue
			}
			if !date.Before(dayAgo) {
				last24h = last24h.Add(value)
			}
		}
	}

	trace.addf("tier 2: entries=%d total=%s last24h=%s", entries, total, last24h)

	if !total.IsPositive() {
		trace.addf("tier 2 non-positive total")
		return models.RevenueReading{}, ErrUnavailable
	}

	totalF, _ := total.Float64()
	last24hF, _ := last24h.Float64()
	return models.RevenueReading{TotalAmount: totalF, Last24Hours: last24hF}, nil
}
