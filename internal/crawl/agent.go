// File: internal/crawl/agent.go
package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/config"
)

// Evidence source labels reported in CombinedEvidence.Sources.
const (
	sourceLightCrawl       = "light_crawl"
	sourceReputationSearch = "brave_search"
	sourceStructuredSearch = "google_cse"
	sourceDomain           = "domain"
	sourceFallback         = "intelligent_fallback"
)

// HybridAgent gathers brand evidence from four independent sources: a light
// crawl of the site itself, a reputation search, a structured-information
// search, and a pure hostname analysis. Any subset may fail; the agent
// combines whatever succeeded and never returns an error.
type HybridAgent struct {
	reputationSearch schemas.SearchAdapter
	structuredSearch schemas.SearchAdapter
	httpClient       *http.Client
	cfg              config.CrawlConfig
	cache            *evidenceCache
	logger           *zap.Logger
	now              func() time.Time
}

// NewHybridAgent builds the agent. Each agent owns its evidence cache.
func NewHybridAgent(reputation, structured schemas.SearchAdapter, httpClient *http.Client, cfg config.CrawlConfig, logger *zap.Logger) *HybridAgent {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HybridAgent{
		reputationSearch: reputation,
		structuredSearch: structured,
		httpClient:       httpClient,
		cfg:              cfg,
		cache:            newEvidenceCache(cfg.CacheTTL),
		logger:           logger.Named("crawl_agent"),
		now:              time.Now,
	}
}

// Execute runs the four-source evidence collection for a brand. Results are
// cached per (url, brand) pair; a cache hit skips all network work.
func (a *HybridAgent) Execute(ctx context.Context, input schemas.AgentInput) schemas.AgentOutput {
	startTime := a.now()

	brandName := input.BrandName
	if brandName == "" {
		brandName = BrandNameFromURL(input.WebsiteURL)
	}

	key := cacheKey(input.WebsiteURL, brandName)
	if evidence, ok := a.cache.get(key); ok {
		a.logger.Debug("Evidence cache hit",
			zap.String("brand", brandName),
			zap.String("url", input.WebsiteURL),
		)
		return schemas.AgentOutput{
			Evidence:      evidence,
			Cached:        true,
			ExecutionTime: time.Since(startTime).Milliseconds(),
		}
	}

	domain := hostnameOf(input.WebsiteURL)

	var (
		wg         sync.WaitGroup
		light      lightCrawlResult
		reputation reputationResult
		structured structuredResult
		domainInfo schemas.DomainInfo
		domainOK   bool
	)

	// All-settled fan-out: each branch records its own outcome and a failed
	// branch never disturbs its siblings.
	wg.Add(4)
	go func() {
		defer wg.Done()
		light = a.performLightCrawl(ctx, input.WebsiteURL)
	}()
	go func() {
		defer wg.Done()
		reputation = a.searchReputation(ctx, brandName, domain)
	}()
	go func() {
		defer wg.Done()
		structured = a.searchStructured(ctx, brandName, domain)
	}()
	go func() {
		defer wg.Done()
		domainInfo, domainOK = parseDomainInfo(input.WebsiteURL)
	}()
	wg.Wait()

	evidence := a.combine(brandName, input.WebsiteURL, light, reputation, structured, domainInfo, domainOK)
	if len(evidence.Sources) == 0 {
		a.logger.Warn("All evidence sources failed, synthesizing fallback",
			zap.String("brand", brandName),
			zap.String("url", input.WebsiteURL),
		)
		evidence = a.intelligentFallback(brandName, input.WebsiteURL)
	}

	a.cache.put(key, evidence)

	elapsed := time.Since(startTime)
	a.logger.Info("Hybrid crawl completed",
		zap.String("brand", brandName),
		zap.Strings("sources", evidence.Sources),
		zap.Int("quality_score", evidence.QualityScore),
		zap.Duration("duration", elapsed),
	)

	return schemas.AgentOutput{
		Evidence:      evidence,
		ExecutionTime: elapsed.Milliseconds(),
	}
}

// combine merges whichever branches succeeded into a single evidence record
// and computes the quality score: 25 per successful source, +25 for actual
// HTML, +15 for brand mentions, +10 for structured hits, capped at 100.
func (a *HybridAgent) combine(
	brandName, websiteURL string,
	light lightCrawlResult,
	reputation reputationResult,
	structured structuredResult,
	domainInfo schemas.DomainInfo,
	domainOK bool,
) schemas.CombinedEvidence {
	var sources []string
	if light.state == lightSuccess {
		sources = append(sources, sourceLightCrawl)
	}
	if reputation.ok {
		sources = append(sources, sourceReputationSearch)
	}
	if structured.ok {
		sources = append(sources, sourceStructuredSearch)
	}
	if domainOK {
		sources = append(sources, sourceDomain)
	}

	quality := len(sources) * 25
	if light.html != "" {
		quality += 25
	}
	if reputation.brandMentions > 0 {
		quality += 15
	}
	if structured.totalResults > 0 {
		quality += 10
	}
	if quality > 100 {
		quality = 100
	}

	return schemas.CombinedEvidence{
		BrandName:          brandName,
		WebsiteURL:         websiteURL,
		Sources:            sources,
		QualityScore:       quality,
		SiteExists:         light.state != lightFailed,
		StatusCode:         light.statusCode,
		HTML:               light.html,
		MetaData:           light.meta,
		ContentSize:        light.contentSize,
		BrandMentions:      reputation.brandMentions,
		ExternalMentions:   reputation.externalMentions,
		Reputation:         reputation.signals,
		KeyInformation:     structured.keyInfo,
		StructuredSnippets: structured.snippets,
		DomainInfo:         domainInfo,
		CrawlTimestamp:     a.now().UTC(),
	}
}

// intelligentFallback synthesizes minimal evidence when every source failed,
// so downstream probes always have textual context to work with.
func (a *HybridAgent) intelligentFallback(brandName, websiteURL string) schemas.CombinedEvidence {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>%[1]s - Official Website</title>
  <meta name="description" content="%[1]s official website and online presence">
  <meta property="og:title" content="%[1]s">
  <meta property="og:description" content="%[1]s official website">
  <meta property="og:url" content="%[2]s">
</head>
<body>
  <h1>%[1]s</h1>
  <p>Welcome to %[1]s's official website.</p>
  <div class="content">
    <section class="about">
      <h2>About %[1]s</h2>
      <p>%[1]s is a business entity with an established online presence.</p>
    </section>
  </div>
</body>
</html>`, brandName, websiteURL)

	return schemas.CombinedEvidence{
		BrandName:    brandName,
		WebsiteURL:   websiteURL,
		Sources:      []string{sourceFallback},
		QualityScore: 25,
		SiteExists:   true,
		HTML:         html,
		ContentSize:  len(html),
		MetaData: schemas.PageMeta{
			Title:          brandName + " - Official Website",
			Description:    brandName + " official website and online presence",
			OGTitle:        brandName,
			OGDescription:  brandName + " official website",
			OGURL:          websiteURL,
			HasTitle:       true,
			HasDescription: true,
		},
		CrawlTimestamp:    a.now().UTC(),
		Fallback:          true,
		EstimatedIndustry: guessIndustryFromDomain(websiteURL),
	}
}

// guessIndustryFromDomain maps domain keywords to a coarse industry label.
func guessIndustryFromDomain(websiteURL string) string {
	domain := strings.ToLower(websiteURL)
	switch {
	case strings.Contains(domain, "shop") || strings.Contains(domain, "store"):
		return "retail"
	case strings.Contains(domain, "tech") || strings.Contains(domain, "software"):
		return "technology"
	case strings.Contains(domain, "health") || strings.Contains(domain, "medical"):
		return "healthcare"
	case strings.Contains(domain, "finance") || strings.Contains(domain, "bank"):
		return "finance"
	default:
		return "general_business"
	}
}

// BrandNameFromURL derives a display name from the first hostname label,
// falling back to "Unknown Brand" for unparseable input. The CLI uses the
// same derivation when no brand name is given.
func BrandNameFromURL(websiteURL string) string {
	host := hostnameOf(websiteURL)
	if host == "" {
		return "Unknown Brand"
	}
	label := strings.SplitN(strings.TrimPrefix(host, "www."), ".", 2)[0]
	if label == "" {
		return "Unknown Brand"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func hostnameOf(websiteURL string) string {
	u, err := url.Parse(websiteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

var _ schemas.CrawlAgent = (*HybridAgent)(nil)
