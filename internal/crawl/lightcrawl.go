// File: internal/crawl/lightcrawl.go
package crawl

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
)

// userAgents is rotated through on blocked attempts. Desktop browsers first,
// the honest bot identity last.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (compatible; AIDI-Bot/1.0; +https://probeworks.dev/bot)",
}

type lightCrawlState int

const (
	lightFailed lightCrawlState = iota
	// lightAccessible means every attempt was rejected but the host answered,
	// so the site is assumed to exist.
	lightAccessible
	lightSuccess
)

type lightCrawlResult struct {
	state       lightCrawlState
	statusCode  int
	html        string
	meta        schemas.PageMeta
	contentSize int
}

// performLightCrawl validates the site exists and captures its HTML and basic
// metadata. It rotates user agents, backing off briefly when the site answers
// 403 or 429.
func (a *HybridAgent) performLightCrawl(ctx context.Context, pageURL string) lightCrawlResult {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.PageTimeout)
	defer cancel()

	for i, ua := range userAgents {
		lastAttempt := i == len(userAgents)-1

		req, err := http.NewRequestWithContext(cctx, http.MethodGet, pageURL, nil)
		if err != nil {
			a.logger.Warn("Failed to build crawl request", zap.String("url", pageURL), zap.Error(err))
			return lightCrawlResult{state: lightFailed}
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			a.logger.Debug("Light crawl attempt failed",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			if lastAttempt {
				return lightCrawlResult{state: lightFailed}
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				a.logger.Debug("Failed to read crawl body", zap.Error(readErr))
				if lastAttempt {
					return lightCrawlResult{state: lightFailed}
				}
				continue
			}

			html := string(body)
			capped := html
			if len(capped) > a.cfg.MaxHTMLSize {
				capped = capped[:a.cfg.MaxHTMLSize]
			}
			return lightCrawlResult{
				state:       lightSuccess,
				statusCode:  resp.StatusCode,
				html:        capped,
				meta:        extractBasicMeta(capped),
				contentSize: len(html),
			}
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			a.logger.Debug("Light crawl blocked, rotating user agent",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", i+1),
			)
			if !lastAttempt {
				select {
				case <-time.After(a.cfg.RetryWait):
				case <-cctx.Done():
					return lightCrawlResult{state: lightFailed}
				}
			}
		}
	}

	// The host answered every attempt, it just refused to serve us content.
	return lightCrawlResult{state: lightAccessible, statusCode: http.StatusOK}
}

// extractBasicMeta parses the page head for title, description, keywords and
// Open Graph tags.
func extractBasicMeta(html string) schemas.PageMeta {
	var meta schemas.PageMeta

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return meta
	}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	meta.HasTitle = meta.Title != ""

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}
	meta.HasDescription = meta.Description != ""

	if kw, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		meta.Keywords = strings.TrimSpace(kw)
	}
	if ogTitle, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		meta.OGTitle = strings.TrimSpace(ogTitle)
	}
	if ogDesc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		meta.OGDescription = strings.TrimSpace(ogDesc)
	}
	if ogURL, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		meta.OGURL = strings.TrimSpace(ogURL)
	}

	return meta
}
