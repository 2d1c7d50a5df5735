package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/envutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/httpx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// ErrQuotaExceeded means the search API refused the call for quota reasons.
// Callers fall back immediately instead of retrying.
var ErrQuotaExceeded = errors.New("web search quota exceeded")

type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

type client struct {
	baseURL    string
	apiKey     string
	engineID   string
	log        *logger.Logger
	httpClient *http.Client
}

// NewFromEnv returns (nil, nil) unless both WEBSEARCH_API_KEY and WEBSEARCH_ENGINE_ID are set.
func NewFromEnv(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("websearch: logger required")
	}
	key := envutil.String("WEBSEARCH_API_KEY", "")
	engine := envutil.String("WEBSEARCH_ENGINE_ID", "")
	if key == "" || engine == "" {
		return nil, nil
	}
	return &client{
		baseURL:    strings.TrimRight(envutil.String("WEBSEARCH_BASE_URL", "https://www.googleapis.com"), "/"),
		apiKey:     key,
		engineID:   engine,
		log:        log.With("client", "WebSearch"),
		httpClient: &http.Client{Timeout: envutil.Seconds("UPSTREAM_TIMEOUT_SECONDS", 5*time.Second)},
	}, nil
}

type searchResponse struct {
	Items []Result `json:"items"`
}

func (c *client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/customsearch/v1?"+params.Encode(), nil)
	if err != nil {
		return nil, err
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
	if isQuotaResponse(resp.StatusCode, raw) {
		c.log.Warn("Web search quota exhausted", "status", resp.StatusCode)
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpx.StatusError{Service: "websearch", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var out searchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("websearch decode: %w", err)
	}
	return out.Items, nil
}

func isQuotaResponse(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status != http.StatusForbidden {
		return false
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "quota") || strings.Contains(lower, "limit")
}

// PageSlugFromLink extracts <slug> from <base>/page/<slug>. Links on other hosts
// or paths yield ok=false.
func PageSlugFromLink(link, base string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return "", false
	}
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil || b.Host == "" {
		return "", false
	}
	if !strings.EqualFold(strings.TrimPrefix(u.Host, "www."), strings.TrimPrefix(b.Host, "www.")) {
		return "", false
	}
	prefix := strings.TrimRight(b.Path, "/") + "/page/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	slug := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
	if slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
