// File: internal/search/brave.go
package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// defaultQueryTimeout bounds a single search query. Evidence branches issue
// several queries in sequence, so one stalled provider must not become the
// slow path of the whole crawl.
const defaultQueryTimeout = 6 * time.Second

// BraveAdapter queries the Brave web search API. It is fail-soft: any
// transport or decode failure is logged and surfaces as an empty result set,
// never an error. Evidence collection degrades rather than aborts.
type BraveAdapter struct {
	apiKey     string
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

type braveSearchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// NewBraveAdapter builds the adapter. An empty API key produces an adapter
// that reports itself unavailable.
func NewBraveAdapter(apiKey string, httpClient *http.Client, logger *zap.Logger) *BraveAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BraveAdapter{
		apiKey:     apiKey,
		endpoint:   defaultBraveEndpoint,
		timeout:    defaultQueryTimeout,
		httpClient: httpClient,
		logger:     logger.Named("search.brave"),
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (a *BraveAdapter) WithEndpoint(endpoint string) *BraveAdapter {
	a.endpoint = endpoint
	return a
}

// WithTimeout overrides the per-query timeout. Non-positive values keep the
// default.
func (a *BraveAdapter) WithTimeout(d time.Duration) *BraveAdapter {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// Name identifies the adapter in evidence source lists.
func (a *BraveAdapter) Name() string { return "brave" }

// Available reports whether the adapter has credentials to operate.
func (a *BraveAdapter) Available() bool { return a.apiKey != "" }

// Search runs a single query and returns ranked results. Failures return an
// empty slice.
func (a *BraveAdapter) Search(ctx context.Context, query string) []schemas.SearchResult {
	if !a.Available() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResultsPerQuery))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		a.logger.Warn("Failed to build search request", zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Search request failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		a.logger.Warn("Search API returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query),
			zap.String("body", string(body)),
		)
		return nil
	}

	var payload braveSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to decode search response", zap.Error(err))
		return nil
	}

	results := make([]schemas.SearchResult, 0, len(payload.Web.Results))
	for i, r := range payload.Web.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, schemas.SearchResult{
			Rank:    i + 1,
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results
}

var _ schemas.SearchAdapter = (*BraveAdapter)(nil)

// maxResultsPerQuery caps how many hits each adapter asks for per query.
const maxResultsPerQuery = 10
