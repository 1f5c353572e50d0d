package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	itemListPath          = "/get_item_list?includeRefine=1"
	defaultSourceTimeout  = 30 * time.Second
	defaultSourceRPS      = 1
	headerOrigin          = "Origin"
	headerUserAgent       = "User-Agent"
)

var errItemListStatus = errors.New("item list unexpected status")

// ItemSource supplies the raw item list the catalog is built from.
type ItemSource interface {
	Fetch(ctx context.Context) ([]RawItem, error)
}

// HTTPSourceConfig configures the HTTP item-list source.
type HTTPSourceConfig struct {
	BaseURL   string
	Origin    string
	UserAgent string
	Timeout   time.Duration
}

// HTTPSource fetches the item list from the market site's API.
type HTTPSource struct {
	cfg        HTTPSourceConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPSource creates an item-list source for the given API base URL.
func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}

	return &HTTPSource{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultSourceRPS), 1),
	}
}

type itemListEnvelope struct {
	Data *struct {
		ItemList []RawItem `json:"item_list"`
	} `json:"data"`
}

// Fetch retrieves and decodes the full item list.
func (s *HTTPSource) Fetch(ctx context.Context) ([]RawItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("item list rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+itemListPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create item list request: %w", err)
	}

	req.Header.Set(headerOrigin, s.cfg.Origin)
	req.Header.Set(headerUserAgent, s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("item list request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errItemListStatus, resp.StatusCode)
	}

	var envelope itemListEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode item list: %w", err)
	}

	if envelope.Data == nil {
		return nil, fmt.Errorf("decode item list: %w", errMissingData)
	}

	return envelope.Data.ItemList, nil
}

var errMissingData = errors.New("missing data field")
