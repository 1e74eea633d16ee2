// File: internal/search/googlecse.go
package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
)

const defaultGoogleCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleCSEAdapter queries the Google Custom Search Engine API. Like the
// other adapters it is fail-soft and never returns an error.
type GoogleCSEAdapter struct {
	apiKey     string
	cseID      string
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

type googleCSEResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// NewGoogleCSEAdapter builds the adapter. Both the API key and the engine ID
// are required for the adapter to report itself available.
func NewGoogleCSEAdapter(apiKey, cseID string, httpClient *http.Client, logger *zap.Logger) *GoogleCSEAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleCSEAdapter{
		apiKey:     apiKey,
		cseID:      cseID,
		endpoint:   defaultGoogleCSEEndpoint,
		timeout:    defaultQueryTimeout,
		httpClient: httpClient,
		logger:     logger.Named("search.google_cse"),
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (a *GoogleCSEAdapter) WithEndpoint(endpoint string) *GoogleCSEAdapter {
	a.endpoint = endpoint
	return a
}

// WithTimeout overrides the per-query timeout. Non-positive values keep the
// default.
func (a *GoogleCSEAdapter) WithTimeout(d time.Duration) *GoogleCSEAdapter {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// Name identifies the adapter in evidence source lists.
func (a *GoogleCSEAdapter) Name() string { return "google_cse" }

// Available reports whether the adapter has credentials to operate.
func (a *GoogleCSEAdapter) Available() bool { return a.apiKey != "" && a.cseID != "" }

// Search runs a single query and returns ranked results. Failures return an
// empty slice.
func (a *GoogleCSEAdapter) Search(ctx context.Context, query string) []schemas.SearchResult {
	if !a.Available() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", a.apiKey)
	params.Set("cx", a.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResultsPerQuery))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		a.logger.Warn("Failed to build search request", zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")

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

	var payload googleCSEResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to decode search response", zap.Error(err))
		return nil
	}

	results := make([]schemas.SearchResult, 0, len(payload.Items))
	for i, item := range payload.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, schemas.SearchResult{
			Rank:    i + 1,
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results
}

var _ schemas.SearchAdapter = (*GoogleCSEAdapter)(nil)
