// Package rates resolves historical currency conversion rates, consulting
// local storage first and an external provider on miss.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/common"
)

// DefaultBaseURL is the production endpoint of the historical rate provider.
const DefaultBaseURL = "https://api.currencylayer.com/historical"

// Client fetches historical conversion rates from the currencylayer API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a provider client. An empty baseURL falls back to the
// production endpoint.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: rate provider API key", common.ErrMissingConfig)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// historicalResponse is the provider's wire format. Quotes are keyed by
// the concatenated currency pair, e.g. "EURUSD".
type historicalResponse struct {
	Quotes  map[string]float64 `json:"quotes"`
	Error   *providerError     `json:"error"`
	Success bool               `json:"success"`
}

type providerError struct {
	Info string `json:"info"`
	Code int    `json:"code"`
}

// FetchRate requests the rate for the first day of (year, month) with the
// given source and target currencies. A response without a usable quote is
// reported as common.ErrRateUnavailable, never defaulted to a multiplier.
func (c *Client) FetchRate(ctx context.Context, year, month int, from, to string) (float64, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse provider URL: %w", err)
	}

	q := u.Query()
	q.Set("access_key", c.apiKey)
	q.Set("date", fmt.Sprintf("%d-%02d-01", year, month))
	q.Set("source", from)
	q.Set("currencies", to)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create provider request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate provider request failed for %s/%s on %d-%02d: %w", from, to, year, month, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("%w: provider returned 429", common.ErrRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("rate provider returned non-OK status",
			"status", resp.StatusCode,
			"body", string(body))
		return 0, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var parsed historicalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Log the full raw payload so a format change is diagnosable,
		// distinct from an ordinary "no rate" miss.
		slog.Error("malformed rate provider payload",
			"from", from,
			"to", to,
			"year", year,
			"month", month,
			"raw", string(body))
		return 0, fmt.Errorf("%w: %v", common.ErrProviderResponse, err)
	}

	if !parsed.Success || parsed.Quotes == nil {
		slog.Warn("rate provider had no quote",
			"from", from,
			"to", to,
			"year", year,
			"month", month,
			"raw", string(body))
		return 0, fmt.Errorf("%w: %s to %s for %d-%02d", common.ErrRateUnavailable, from, to, year, month)
	}

	rate, ok := parsed.Quotes[from+to]
	if !ok || rate <= 0 {
		slog.Warn("rate provider response missing expected quote key",
			"key", from+to,
			"raw", string(body))
		return 0, fmt.Errorf("%w: %s to %s for %d-%02d", common.ErrRateUnavailable, from, to, year, month)
	}

	slog.Info("fetched historical rate",
		"from", from,
		"to", to,
		"year", year,
		"month", month,
		"rate", rate)
	return rate, nil
}
