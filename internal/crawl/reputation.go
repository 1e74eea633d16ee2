// File: internal/crawl/reputation.go
package crawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/probeworks/aidi/api/schemas"
)

// Sentiment keyword buckets applied to search result text.
var (
	positiveWords = []string{
		"excellent", "great", "amazing", "best", "top", "leading", "trusted", "reliable",
		"innovative", "outstanding", "superior", "quality", "professional", "recommended",
		"award-winning", "industry-leading", "cutting-edge", "world-class", "premium",
	}

	negativeWords = []string{
		"bad", "terrible", "worst", "scam", "fraud", "poor", "awful", "disappointing",
		"unreliable", "problematic", "issues", "complaints", "failed", "broken",
		"outdated", "overpriced", "misleading", "untrustworthy", "subpar",
	}

	trustIndicators = []string{
		"certified", "accredited", "verified", "licensed", "registered", "official",
		"authorized", "compliant", "secure", "encrypted", "privacy", "guarantee",
	}
)

type reputationResult struct {
	ok               bool
	totalResults     int
	brandMentions    int
	externalMentions int
	signals          schemas.ReputationSignals
}

// reputationQueries builds the five reputation search queries for a brand.
func reputationQueries(brandName, domain string) []string {
	return []string{
		fmt.Sprintf("%q site:%s (about OR company OR products OR services)", brandName, domain),
		fmt.Sprintf("%q reviews testimonials customer feedback", brandName),
		fmt.Sprintf("%q shipping returns policy FAQ", brandName),
		fmt.Sprintf("%q contact support help", brandName),
		fmt.Sprintf("%q -site:%s mentions news press", brandName, domain),
	}
}

// searchReputation fans the reputation queries through the adapter and
// analyzes the combined hits for sentiment and mention spread.
func (a *HybridAgent) searchReputation(ctx context.Context, brandName, domain string) reputationResult {
	if a.reputationSearch == nil || !a.reputationSearch.Available() {
		return reputationResult{}
	}

	var allResults []schemas.SearchResult
	for _, query := range reputationQueries(brandName, domain) {
		allResults = append(allResults, a.reputationSearch.Search(ctx, query)...)
	}

	result := reputationResult{ok: true, totalResults: len(allResults)}
	for _, r := range allResults {
		if strings.Contains(r.URL, domain) {
			result.brandMentions++
		} else {
			result.externalMentions++
		}
	}
	result.signals = analyzeReputationSignals(allResults)
	return result
}

// analyzeReputationSignals runs the keyword-bucket sentiment analysis over
// search results. The sentiment score starts at 50 and moves with each
// matched bucket, clamped to [0,100].
func analyzeReputationSignals(results []schemas.SearchResult) schemas.ReputationSignals {
	var s schemas.ReputationSignals

	for _, result := range results {
		text := strings.ToLower(result.Title + " " + result.Snippet)

		for _, word := range positiveWords {
			if strings.Contains(text, word) {
				s.PositiveSignals++
			}
		}
		for _, word := range negativeWords {
			if strings.Contains(text, word) {
				s.NegativeSignals++
			}
		}
		for _, word := range trustIndicators {
			if strings.Contains(text, word) {
				s.TrustSignals++
			}
		}

		if strings.Contains(text, "review") || strings.Contains(text, "rating") || strings.Contains(text, "testimonial") {
			s.ReviewMentions++
		}
		if strings.Contains(text, "press") || strings.Contains(text, "news") || strings.Contains(text, "media") {
			s.PressMentions++
		}
		if strings.Contains(text, "partner") || strings.Contains(text, "collaboration") || strings.Contains(text, "integration") {
			s.PartnershipMentions++
		}
	}

	score := 50 +
		s.PositiveSignals*8 -
		s.NegativeSignals*12 +
		s.TrustSignals*5 +
		s.ReviewMentions*3 +
		s.PressMentions*4 +
		s.PartnershipMentions*2
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	s.SentimentScore = score
	s.ReputationCategory = categorizeReputation(score)

	if s.PositiveSignals+s.NegativeSignals+s.TrustSignals > 5 {
		s.SignalStrength = "strong"
	} else {
		s.SignalStrength = "weak"
	}
	return s
}

func categorizeReputation(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 65:
		return "good"
	case score >= 50:
		return "neutral"
	case score >= 35:
		return "concerning"
	default:
		return "poor"
	}
}
