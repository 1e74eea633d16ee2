// File: internal/crawl/structured.go
package crawl

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/probeworks/aidi/api/schemas"
)

var (
	foundedYearRe  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	headquartersRe = regexp.MustCompile(`(?i)(?:headquarter\w*|based|located)\s+in\s+([^.,]+)`)
	leadershipRe   = regexp.MustCompile(`(?i)(?:ceo|founder|president)[:\s]+([^.,]+)`)
	productsRe     = regexp.MustCompile(`(?i)(?:products|services|offers)[:\s]+([^.,]+)`)
	companySizeRe  = regexp.MustCompile(`(?i)(\d+[+\-\s]*(?:thousand|million|k|m)?\s*(?:employees|team|staff))`)
	fundingRe      = regexp.MustCompile(`(?i)(?:raised|funding|investment)\s+(?:of\s+)?\$?([^.,]+)`)
)

type structuredResult struct {
	ok           bool
	totalResults int
	snippets     []schemas.StructuredSnippet
	keyInfo      schemas.KeyInformation
}

// structuredQueries builds the five structured-information search queries.
func structuredQueries(brandName, domain string) []string {
	return []string{
		fmt.Sprintf("%q site:%s about", brandName, domain),
		fmt.Sprintf("%q site:%s products", brandName, domain),
		fmt.Sprintf("%q site:%s contact", brandName, domain),
		fmt.Sprintf("%q site:%s shipping", brandName, domain),
		fmt.Sprintf("%q founded history", brandName),
	}
}

// searchStructured fans the structured queries through the adapter, scoring
// each hit for brand relevance and mining the snippets for business facts.
func (a *HybridAgent) searchStructured(ctx context.Context, brandName, domain string) structuredResult {
	if a.structuredSearch == nil || !a.structuredSearch.Available() {
		return structuredResult{}
	}

	var allResults []schemas.SearchResult
	for _, query := range structuredQueries(brandName, domain) {
		allResults = append(allResults, a.structuredSearch.Search(ctx, query)...)
	}

	result := structuredResult{ok: true, totalResults: len(allResults)}
	for _, r := range allResults {
		result.snippets = append(result.snippets, schemas.StructuredSnippet{
			Title:          r.Title,
			Snippet:        r.Snippet,
			URL:            r.URL,
			RelevanceScore: relevanceScore(r, brandName),
		})
	}
	result.keyInfo = extractKeyInformation(allResults)
	return result
}

// relevanceScore rates how strongly a search hit relates to the brand.
func relevanceScore(result schemas.SearchResult, brandName string) int {
	text := strings.ToLower(result.Title + " " + result.Snippet)
	brand := strings.ToLower(brandName)

	score := 0
	if strings.Contains(text, brand) {
		score += 30
	}
	if strings.Contains(strings.ToLower(result.Title), brand) {
		score += 20
	}
	if strings.Contains(text, "about") {
		score += 10
	}
	if strings.Contains(text, "company") {
		score += 10
	}
	if strings.Contains(text, "official") {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

// extractKeyInformation mines snippets for business facts. First match wins
// per field; every field is best-effort and may remain empty.
func extractKeyInformation(results []schemas.SearchResult) schemas.KeyInformation {
	var info schemas.KeyInformation

	for _, result := range results {
		text := strings.ToLower(result.Snippet)

		if info.FoundedYear == "" &&
			(strings.Contains(text, "founded") || strings.Contains(text, "established") || strings.Contains(text, "since")) {
			if year := foundedYearRe.FindString(text); year != "" {
				info.FoundedYear = year
			}
		}

		if info.Headquarters == "" {
			if m := headquartersRe.FindStringSubmatch(text); m != nil {
				info.Headquarters = strings.TrimSpace(m[1])
			}
		}

		if info.Leadership == "" {
			if m := leadershipRe.FindStringSubmatch(text); m != nil {
				info.Leadership = strings.TrimSpace(m[1])
			}
		}

		if info.BusinessType == "" {
			info.BusinessType = classifyBusinessType(text)
		}

		if len(info.KeyProducts) < 3 {
			if m := productsRe.FindStringSubmatch(text); m != nil {
				info.KeyProducts = append(info.KeyProducts, strings.TrimSpace(m[1]))
			}
		}

		if info.CompanySize == "" {
			if m := companySizeRe.FindStringSubmatch(text); m != nil {
				info.CompanySize = strings.TrimSpace(m[1])
			}
		}

		if info.Funding == "" &&
			(strings.Contains(text, "funding") || strings.Contains(text, "raised") || strings.Contains(text, "investment")) {
			if m := fundingRe.FindStringSubmatch(text); m != nil {
				info.Funding = strings.TrimSpace(m[1])
			}
		}
	}

	return info
}

func classifyBusinessType(text string) string {
	switch {
	case strings.Contains(text, "ecommerce") || strings.Contains(text, "e-commerce") || strings.Contains(text, "online store"):
		return "ecommerce"
	case strings.Contains(text, "saas") || strings.Contains(text, "software as a service"):
		return "saas"
	case strings.Contains(text, "marketplace"):
		return "marketplace"
	case strings.Contains(text, "retail") || strings.Contains(text, "store"):
		return "retail"
	case strings.Contains(text, "service") || strings.Contains(text, "consulting"):
		return "services"
	default:
		return ""
	}
}
