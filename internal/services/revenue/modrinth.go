package revenue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mbridges/modpay-tui/internal/logger"
	"github.com/mbridges/modpay-tui/internal/version"
)

const requestTimeout = 30 * time.Second

// userAgent identifies the client to the Modrinth API, which rejects
// anonymous user agents.
func userAgent() string {
	return "modpay-tui/" + version.GetVersion()
}

// User is the authenticated account returned by GET /user.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// PayoutHistory is the summary returned by GET /user/{id}/payout_history.
// all_time is a decimal string, not a number.
type PayoutHistory struct {
	AllTime string `json:"all_time"`
}

// AnalyticsResponse maps project id to date string to revenue amount.
// Amounts are kept as json.Number so summation can stay exact.
type AnalyticsResponse map[string]map[string]json.Number

func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: requestTimeout}
}

func doJSONRequest(ctx context.Context, client *http.Client, method, rawURL, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent())

	resp, err := defaultClient(client).Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: token rejected (status %d)", ErrUnauthenticated, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// FetchAuthenticatedUser retrieves the account the token belongs to.
func FetchAuthenticatedUser(ctx context.Context, client *http.Client, baseURL, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	var user User
	if err := doJSONRequest(ctx, client, "GET", baseURL+"/user", token, &user); err != nil {
		return nil, fmt.Errorf("user fetch: %w", err)
	}
	return &user, nil
}

// FetchPayoutHistory retrieves the all-time payout summary for a user.
func FetchPayoutHistory(ctx context.Context, client *http.Client, baseURL, token, userID string) (*PayoutHistory, error) {
	var history PayoutHistory
	endpoint := fmt.Sprintf("%s/user/%s/payout_history", baseURL, url.PathEscape(userID))
	if err := doJSONRequest(ctx, client, "GET", endpoint, token, &history); err != nil {
		return nil, fmt.Errorf("payout history fetch: %w", err)
	}
	return &history, nil
}

// FetchRevenueAnalytics retrieves per-project per-day revenue over the
// given UTC window from the v3 analytics endpoint.
func FetchRevenueAnalytics(ctx context.Context, client *http.Client, baseURL, token string, start, end time.Time) (AnalyticsResponse, error) {
	params := url.Values{}
	params.Set("start_date", start.UTC().Format(analyticsTimeFormat))
	params.Set("end_date", end.UTC().Format(analyticsTimeFormat))

	var analytics AnalyticsResponse
	endpoint := baseURL + "/analytics/revenue?" + params.Encode()
	if err := doJSONRequest(ctx, client, "GET", endpoint, token, &analytics); err != nil {
		return nil, fmt.Errorf("analytics fetch: %w", err)
	}
	return analytics, nil
}
