// Package price fetches live market data for a resolved item and shapes it
// into display-ready fields.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/poporinglife/price-bot/internal/market"
)

const (
	latestPricePath      = "/get_latest_price/"
	defaultClientTimeout = 30 * time.Second
	defaultClientRPS     = 5
	headerOrigin         = "Origin"
	headerUserAgent      = "User-Agent"
)

var (
	// ErrAPIUnavailable marks transport or HTTP-status failures talking to
	// the price API, including client-side timeouts.
	ErrAPIUnavailable = errors.New("price api unavailable")

	// ErrBadPayload marks a success response whose body does not have the
	// expected shape. Logged under a different class than ErrAPIUnavailable.
	ErrBadPayload = errors.New("unexpected price payload")

	errUnknownMarket = errors.New("unknown market")
)

// Payload is the normalized wire payload of the latest-price endpoint.
// Timestamps are unix seconds; zero means absent.
type Payload struct {
	Price              int64 `json:"price"`
	Volume             int64 `json:"volume"`
	Timestamp          int64 `json:"timestamp"`
	LastKnownPrice     int64 `json:"last_known_price"`
	LastKnownTimestamp int64 `json:"last_known_timestamp"`
}

// ClientConfig configures the price API client.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
	RPS       float64

	// BaseURLs overrides the per-market API base URL when set for a market.
	BaseURLs map[market.Market]string
}

// Client calls the market-specific latest-price endpoints. One instance is
// shared by all requests; the per-market base URL and origin come from the
// market metadata.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a price API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultClientRPS
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type latestPriceEnvelope struct {
	Data *struct {
		Data *Payload `json:"data"`
	} `json:"data"`
}

// Latest fetches the current price payload for an item on one market.
// Failures wrap ErrAPIUnavailable or ErrBadPayload for classification.
func (c *Client) Latest(ctx context.Context, itemName string, m market.Market) (Payload, error) {
	info, ok := market.Lookup(m)
	if !ok {
		return Payload{}, fmt.Errorf("%w: %s", errUnknownMarket, m)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Payload{}, fmt.Errorf("price rate limit: %w", err)
	}

	base := info.APIBaseURL
	if override, ok := c.cfg.BaseURLs[m]; ok {
		base = override
	}

	endpoint := base + latestPricePath + url.PathEscape(itemName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("create price request: %w", err)
	}

	req.Header.Set(headerOrigin, info.Origin)
	req.Header.Set(headerUserAgent, c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("%w: status %d", ErrAPIUnavailable, resp.StatusCode)
	}

	var envelope latestPriceEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if envelope.Data == nil || envelope.Data.Data == nil {
		return Payload{}, fmt.Errorf("%w: missing data", ErrBadPayload)
	}

	return *envelope.Data.Data, nil
}
