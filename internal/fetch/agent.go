// File: internal/fetch/agent.go
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/config"
)

// siteQueries maps each resolvable page type to the search terms appended to
// the site: restriction.
var siteQueries = map[schemas.PageType]string{
	schemas.PageAbout:   "about us",
	schemas.PageFAQ:     "faq OR returns policy OR shipping",
	schemas.PageProduct: "product",
}

// Agent resolves and downloads the handful of pages the probes need. URL
// resolution goes through the search adapters; downloads happen concurrently.
type Agent struct {
	primary    schemas.SearchAdapter
	secondary  schemas.SearchAdapter
	httpClient *http.Client
	cfg        config.FetchConfig
	logger     *zap.Logger
}

// NewAgent builds the fetch agent. Either adapter may be unavailable; the
// agent falls back from primary to secondary per lookup.
func NewAgent(primary, secondary schemas.SearchAdapter, httpClient *http.Client, cfg config.FetchConfig, logger *zap.Logger) *Agent {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Agent{
		primary:    primary,
		secondary:  secondary,
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger.Named("fetch_agent"),
	}
}

// Run resolves missing page URLs from the seed set, fetches everything
// concurrently and returns only the pages that came back with status 200.
func (a *Agent) Run(ctx context.Context, seeds map[schemas.PageType]string) []schemas.PageFetchResult {
	targets := a.resolveTargets(ctx, seeds)
	if len(targets) == 0 {
		return nil
	}

	var mu sync.Mutex
	var results []schemas.PageFetchResult

	g, gctx := errgroup.WithContext(ctx)
	for pageType, pageURL := range targets {
		g.Go(func() error {
			result := a.fetchPage(gctx, pageType, pageURL)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only collects them.
	_ = g.Wait()

	ok := results[:0]
	for _, r := range results {
		if r.Status == http.StatusOK {
			ok = append(ok, r)
		}
	}
	return ok
}

// resolveTargets fills in about/faq/product URLs that the seed set does not
// already provide, using site-restricted search.
func (a *Agent) resolveTargets(ctx context.Context, seeds map[schemas.PageType]string) map[schemas.PageType]string {
	targets := make(map[schemas.PageType]string, len(seeds)+len(siteQueries))
	for pageType, pageURL := range seeds {
		if pageURL != "" {
			targets[pageType] = pageURL
		}
	}

	domain := brandDomain(targets[schemas.PageHomepage])
	if domain == "" {
		return targets
	}

	for pageType, terms := range siteQueries {
		if _, have := targets[pageType]; have {
			continue
		}
		query := fmt.Sprintf("site:%s %s", domain, terms)
		if found := a.searchFirstOnDomain(ctx, query, domain); found != "" {
			targets[pageType] = found
		}
	}
	return targets
}

// searchFirstOnDomain queries the primary adapter (or the secondary when the
// primary is unavailable) and returns the first hit hosted on the brand
// domain.
func (a *Agent) searchFirstOnDomain(ctx context.Context, query, domain string) string {
	adapter := a.primary
	if adapter == nil || !adapter.Available() {
		adapter = a.secondary
	}
	if adapter == nil || !adapter.Available() {
		return ""
	}

	sctx, cancel := context.WithTimeout(ctx, a.cfg.SearchTimeout)
	defer cancel()

	for _, result := range adapter.Search(sctx, query) {
		u, err := url.Parse(result.URL)
		if err != nil {
			continue
		}
		if strings.Contains(u.Hostname(), domain) {
			return result.URL
		}
	}
	return ""
}

// fetchPage downloads a single page. Failures yield a zero-content result
// carrying the observed status, or 500 when the request never completed.
func (a *Agent) fetchPage(ctx context.Context, pageType schemas.PageType, pageURL string) schemas.PageFetchResult {
	result := schemas.PageFetchResult{
		URL:      pageURL,
		PageType: pageType,
		Status:   http.StatusInternalServerError,
	}

	fctx, cancel := context.WithTimeout(ctx, a.cfg.PageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fctx, http.MethodGet, pageURL, nil)
	if err != nil {
		a.logger.Warn("Failed to build page request", zap.String("url", pageURL), zap.Error(err))
		return result
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Page fetch failed",
			zap.String("url", pageURL),
			zap.String("page_type", string(pageType)),
			zap.Error(err),
		)
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		return result
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logger.Warn("Failed to read page body", zap.String("url", pageURL), zap.Error(err))
		result.Status = http.StatusInternalServerError
		return result
	}

	result.HTML = string(body)
	sum := sha256.Sum256(body)
	result.ContentHash = hex.EncodeToString(sum[:])
	return result
}

// brandDomain extracts the registrable host from a homepage URL, stripping
// any www prefix.
func brandDomain(homepage string) string {
	if homepage == "" {
		return ""
	}
	u, err := url.Parse(homepage)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

var _ schemas.FetchAgent = (*Agent)(nil)
