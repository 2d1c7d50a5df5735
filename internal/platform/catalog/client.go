package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/envutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/httpx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// Client talks to the external venue catalog.
type Client interface {
	Search(ctx context.Context, q venue.Query) ([]venue.Candidate, error)
	Profile(ctx context.Context, venueID string) (venue.Profile, error)
	DeepLinkBase() string
}

type Config struct {
	BaseURL          string
	APIKey           string
	DeepLinkBase     string
	RequestsPerSec   float64
	Burst            int
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// ConfigFromEnv returns ok=false when CATALOG_BASE_URL is unset.
func ConfigFromEnv() (Config, bool) {
	base := strings.TrimRight(envutil.String("CATALOG_BASE_URL", ""), "/")
	if base == "" {
		return Config{}, false
	}
	return Config{
		BaseURL:          base,
		APIKey:           envutil.String("CATALOG_API_KEY", ""),
		DeepLinkBase:     strings.TrimRight(envutil.String("CATALOG_DEEP_LINK_BASE", base), "/"),
		RequestsPerSec:   envutil.Float("CATALOG_RPS", 5),
		Burst:            envutil.Int("CATALOG_BURST", 5),
		Timeout:          envutil.Seconds("UPSTREAM_TIMEOUT_SECONDS", 5*time.Second),
		FailureThreshold: uint32(envutil.Int("CATALOG_BREAKER_FAILURES", 5)),
		OpenTimeout:      envutil.Seconds("CATALOG_BREAKER_OPEN_SECONDS", 30*time.Second),
	}, true
}

type client struct {
	cfg        Config
	log        *logger.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func New(cfg Config, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("catalog: logger required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog: base url required")
	}
	if cfg.DeepLinkBase == "" {
		cfg.DeepLinkBase = cfg.BaseURL
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	c := &client{
		cfg:        cfg,
		log:        log.With("client", "VenueCatalog"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "venue-catalog",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Client errors say nothing about catalog health.
		IsSuccessful: func(err error) bool {
			return err == nil || !httpx.IsRetryableError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

func (c *client) DeepLinkBase() string { return c.cfg.DeepLinkBase }

type searchResponse struct {
	Results []venue.Candidate `json:"results"`
}

func (c *client) Search(ctx context.Context, q venue.Query) ([]venue.Candidate, error) {
	params := url.Values{}
	params.Set("q", q.Name)
	if q.Address != "" {
		params.Set("address", q.Address)
	}
	if q.Locality != "" {
		params.Set("locality", q.Locality)
	}
	raw, err := c.get(ctx, "/v1/venues/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("catalog search decode: %w", err)
	}
	return resp.Results, nil
}

func (c *client) Profile(ctx context.Context, venueID string) (venue.Profile, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return venue.Profile{}, fmt.Errorf("catalog profile: venue id required")
	}
	raw, err := c.get(ctx, "/v1/venues/"+url.PathEscape(venueID))
	if err != nil {
		return venue.Profile{}, err
	}
	var p venue.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return venue.Profile{}, fmt.Errorf("catalog profile decode: %w", err)
	}
	return p, nil
}

func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("catalog rate limit wait: %w", err)
	}
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &httpx.StatusError{Service: "catalog", StatusCode: resp.StatusCode, Body: string(raw)}
		}
		return raw, nil
	})
}
