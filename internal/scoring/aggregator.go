// File: internal/scoring/aggregator.go
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/probeworks/aidi/api/schemas"
)

// Canonical dimension names of the scoring methodology.
const (
	DimSchemaStructuredData = "schema_structured_data"
	DimSemanticClarity      = "semantic_clarity"
	DimOntologiesTaxonomy   = "ontologies_taxonomy"
	DimKnowledgeGraphs      = "knowledge_graphs"
	DimLLMReadability       = "llm_readability"
	DimConversationalCopy   = "conversational_copy"
	DimGeoVisibility        = "geo_visibility"
	DimCitationStrength     = "citation_strength"
	DimAnswerQuality        = "answer_quality"
	DimSentimentTrust       = "sentiment_trust"
	DimHeroProducts         = "hero_products"
	DimShippingFreight      = "shipping_freight"
)

// Pillar names.
const (
	PillarInfrastructure = "infrastructure"
	PillarPerception     = "perception"
	PillarCommerce       = "commerce"
)

// DimensionWeights assigns each dimension its share of the overall score.
// Infrastructure dimensions sum to 0.40, perception to 0.35, commerce
// to 0.25.
var DimensionWeights = map[string]float64{
	DimSchemaStructuredData: 0.10,
	DimSemanticClarity:      0.10,
	DimOntologiesTaxonomy:   0.10,
	DimKnowledgeGraphs:      0.05,
	DimLLMReadability:       0.05,
	DimConversationalCopy:   0.05,

	DimGeoVisibility:    0.10,
	DimCitationStrength: 0.10,
	DimAnswerQuality:    0.10,
	DimSentimentTrust:   0.05,

	DimHeroProducts:    0.15,
	DimShippingFreight: 0.10,
}

// PillarWeights are the top-level pillar shares.
var PillarWeights = map[string]float64{
	PillarInfrastructure: 0.40,
	PillarPerception:     0.35,
	PillarCommerce:       0.25,
}

// DimensionPillars groups each dimension under its pillar.
var DimensionPillars = map[string]string{
	DimSchemaStructuredData: PillarInfrastructure,
	DimSemanticClarity:      PillarInfrastructure,
	DimOntologiesTaxonomy:   PillarInfrastructure,
	DimKnowledgeGraphs:      PillarInfrastructure,
	DimLLMReadability:       PillarInfrastructure,
	DimConversationalCopy:   PillarInfrastructure,

	DimGeoVisibility:    PillarPerception,
	DimCitationStrength: PillarPerception,
	DimAnswerQuality:    PillarPerception,
	DimSentimentTrust:   PillarPerception,

	DimHeroProducts:    PillarCommerce,
	DimShippingFreight: PillarCommerce,
}

// DimensionNames maps canonical names to display names.
var DimensionNames = map[string]string{
	DimSchemaStructuredData: "Schema & Structured Data",
	DimSemanticClarity:      "Semantic Clarity",
	DimOntologiesTaxonomy:   "Ontologies & Taxonomy",
	DimKnowledgeGraphs:      "Knowledge Graphs",
	DimLLMReadability:       "LLM Readability",
	DimConversationalCopy:   "Conversational Copy",
	DimGeoVisibility:        "Geographic Visibility",
	DimCitationStrength:     "Citation Strength",
	DimAnswerQuality:        "Answer Quality",
	DimSentimentTrust:       "Sentiment & Trust",
	DimHeroProducts:         "Hero Products",
	DimShippingFreight:      "Shipping & Freight",
}

// DisplayName returns the display name for a canonical dimension name,
// falling back to the canonical name itself.
func DisplayName(dimension string) string {
	if name, ok := DimensionNames[dimension]; ok {
		return name
	}
	return dimension
}

// CalculateOverallScore computes the weighted average over the dimensions
// that are present, adds the playbook boost, and clamps to [0,100].
// Dimensions without a registered weight are ignored.
func CalculateOverallScore(scores []schemas.DimensionScore, playbookBoost float64) int {
	var totalWeighted, totalWeight float64
	for _, d := range scores {
		weight, ok := DimensionWeights[d.DimensionName]
		if !ok {
			continue
		}
		totalWeighted += float64(d.Score) * weight
		totalWeight += weight
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = totalWeighted / totalWeight
	}
	overall += playbookBoost

	return int(math.Round(math.Max(0, math.Min(100, overall))))
}

// CalculatePillarScores computes the weighted average per pillar over the
// dimensions present in that pillar. A pillar with no scored dimensions
// is 0.
func CalculatePillarScores(scores []schemas.DimensionScore) schemas.PillarScores {
	type accumulator struct {
		totalWeighted float64
		totalWeight   float64
	}
	byPillar := map[string]*accumulator{
		PillarInfrastructure: {},
		PillarPerception:     {},
		PillarCommerce:       {},
	}

	for _, d := range scores {
		pillar, ok := DimensionPillars[d.DimensionName]
		if !ok {
			continue
		}
		weight := DimensionWeights[d.DimensionName]
		acc := byPillar[pillar]
		acc.totalWeighted += float64(d.Score) * weight
		acc.totalWeight += weight
	}

	average := func(pillar string) int {
		acc := byPillar[pillar]
		if acc.totalWeight == 0 {
			return 0
		}
		return int(math.Round(acc.totalWeighted / acc.totalWeight))
	}

	return schemas.PillarScores{
		Infrastructure: average(PillarInfrastructure),
		Perception:     average(PillarPerception),
		Commerce:       average(PillarCommerce),
	}
}

// GradeFromScore maps an overall score to its letter grade.
func GradeFromScore(score int) schemas.Grade {
	switch {
	case score >= 90:
		return schemas.GradeA
	case score >= 80:
		return schemas.GradeB
	case score >= 70:
		return schemas.GradeC
	case score >= 60:
		return schemas.GradeD
	default:
		return schemas.GradeF
	}
}

// GenerateVerdict produces the one-sentence summary for an overall score.
func GenerateVerdict(score int, brandName string) string {
	switch {
	case score >= 90:
		return fmt.Sprintf("%s has excellent AI visibility with competitive advantage", brandName)
	case score >= 80:
		return fmt.Sprintf("%s has good AI visibility with minor optimization opportunities", brandName)
	case score >= 70:
		return fmt.Sprintf("%s has average AI visibility with significant improvement potential", brandName)
	case score >= 60:
		return fmt.Sprintf("%s has poor AI visibility with major gaps in discoverability", brandName)
	default:
		return fmt.Sprintf("%s has critical AI visibility issues requiring immediate attention", brandName)
	}
}

// DimensionExtremes holds the display names of the standout dimensions.
type DimensionExtremes struct {
	Strongest          string
	Weakest            string
	BiggestOpportunity string
}

// IdentifyDimensionExtremes finds the strongest and weakest dimensions by
// score, and the biggest opportunity: the dimension maximizing
// (100 - score) * weight.
func IdentifyDimensionExtremes(scores []schemas.DimensionScore) DimensionExtremes {
	if len(scores) == 0 {
		return DimensionExtremes{Strongest: "N/A", Weakest: "N/A", BiggestOpportunity: "N/A"}
	}

	sorted := make([]schemas.DimensionScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	best := scores[0]
	bestOpportunity := opportunity(scores[0])
	for _, d := range scores[1:] {
		if o := opportunity(d); o > bestOpportunity {
			best = d
			bestOpportunity = o
		}
	}

	return DimensionExtremes{
		Strongest:          DisplayName(sorted[0].DimensionName),
		Weakest:            DisplayName(sorted[len(sorted)-1].DimensionName),
		BiggestOpportunity: DisplayName(best.DimensionName),
	}
}

func opportunity(d schemas.DimensionScore) float64 {
	return float64(100-d.Score) * DimensionWeights[d.DimensionName]
}

// GenerateRecommendations turns low-scoring dimensions into prioritized
// remediation suggestions. The six weakest dimensions are considered; only
// those under 70 produce a recommendation, capped at ten.
func GenerateRecommendations(evaluationID string, scores []schemas.DimensionScore) []schemas.Recommendation {
	sorted := make([]schemas.DimensionScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	if len(sorted) > 6 {
		sorted = sorted[:6]
	}

	recommendations := make([]schemas.Recommendation, 0, len(sorted))
	for _, d := range sorted {
		if d.Score >= 70 {
			continue
		}

		rec := schemas.Recommendation{EvaluationID: evaluationID}
		switch d.DimensionName {
		case DimSchemaStructuredData:
			rec.Priority = 2
			if d.Score < 40 {
				rec.Priority = 1
			}
			rec.Title = "Implement Schema.org Markup"
			rec.Description = "Add structured data markup to your website to help AI models understand your content better."
			rec.Category = "technical"
			rec.Impact = "high"
			rec.Effort = "medium"

		case DimSemanticClarity:
			rec.Priority = 2
			if d.Score < 50 {
				rec.Priority = 1
			}
			rec.Title = "Improve Content Clarity"
			rec.Description = "Standardize terminology and improve content hierarchy for better AI comprehension."
			rec.Category = "content"
			rec.Impact = "high"
			rec.Effort = "medium"

		case DimCitationStrength:
			rec.Priority = 3
			rec.Title = "Build Authority Citations"
			rec.Description = "Increase mentions in premium media and industry publications to strengthen AI recognition."
			rec.Category = "reputation"
			rec.Impact = "high"
			rec.Effort = "high"

		case DimHeroProducts:
			rec.Priority = 3
			if d.Score < 60 {
				rec.Priority = 2
			}
			rec.Title = "Optimize Product Information"
			rec.Description = "Enhance product descriptions and ensure clear value propositions for AI recommendation systems."
			rec.Category = "content"
			rec.Impact = "medium"
			rec.Effort = "low"

		default:
			rec.Priority = 3
			if d.Score < 50 {
				rec.Priority = 2
			}
			rec.Title = "Improve " + DisplayName(d.DimensionName)
			rec.Description = fmt.Sprintf("Focus on enhancing %s to boost AI visibility.", strings.ReplaceAll(d.DimensionName, "_", " "))
			rec.Category = "general"
			rec.Impact = "medium"
			rec.Effort = "medium"
		}

		recommendations = append(recommendations, rec)
	}

	if len(recommendations) > 10 {
		recommendations = recommendations[:10]
	}
	return recommendations
}
