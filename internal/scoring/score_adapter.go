// File: internal/scoring/score_adapter.go
package scoring

import (
	"fmt"
	"math"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/probe"
)

// MapProbesToDimensionScores converts raw probe results into the dimension
// scores the aggregator consumes. It is the anti-corruption layer between
// probe outputs (free-form JSON objects) and the fixed dimension taxonomy:
// rubrics below accept any shape and always return a finite score in
// [0,100].
func MapProbesToDimensionScores(evaluationID string, results []schemas.ProbeResult) []schemas.DimensionScore {
	scores := make([]schemas.DimensionScore, 0, len(results))

	for _, r := range results {
		var (
			dimension string
			score     int
			label     string
		)

		switch r.ProbeName {
		case probe.ProbeSchema:
			dimension = DimSchemaStructuredData
			score = ScoreSchemaProbe(r.Output)
			label = "Schema"
		case probe.ProbePolicy:
			dimension = DimShippingFreight
			score = ScorePolicyProbe(r.Output)
			label = "Policy"
		case probe.ProbeKG:
			dimension = DimKnowledgeGraphs
			score = ScoreKgProbe(r.Output)
			label = "KG"
		case probe.ProbeSemantics:
			dimension = DimSemanticClarity
			score = ScoreSemanticsProbe(r.Output)
			label = "Semantics"
		default:
			continue
		}

		outcome := "failed"
		if r.WasValid {
			outcome = "succeeded"
		}

		scores = append(scores, schemas.DimensionScore{
			EvaluationID:  evaluationID,
			DimensionName: dimension,
			Score:         score,
			Explanation:   fmt.Sprintf("%s probe %s. Confidence: %d%%.", label, outcome, r.Confidence),
		})
	}

	return scores
}

// ScoreSchemaProbe scores structured-data extraction. A nil output still
// earns a floor score for attempting schema markup.
func ScoreSchemaProbe(output map[string]any) int {
	if output == nil {
		return 15
	}
	score := 20
	if truthy(output["price"]) || truthy(output["product_name"]) {
		score += 25
	}
	_, inStockDefined := output["in_stock"]
	if truthy(output["availability"]) || inStockDefined {
		score += 20
	}
	if truthy(output["gtin"]) || truthy(output["sku"]) {
		score += 20
	}
	if n, ok := numberValue(output["variant_count"]); ok && n > 1 {
		score += 15
	}
	return capScore(score)
}

// ScorePolicyProbe scores returns-policy discoverability. Generous windows
// are rewarded; reasonable ones are not penalized.
func ScorePolicyProbe(output map[string]any) int {
	if output == nil || !truthy(output["has_returns"]) {
		return 30
	}
	score := 60
	if n, ok := numberValue(output["window_days"]); ok {
		if n >= 14 {
			score += 20
		}
		if n >= 30 {
			score += 10
		}
	}
	if n, ok := numberValue(output["restocking_fee_pct"]); ok && n == 0 {
		score += 10
	}
	return capScore(score)
}

// ScoreKgProbe scores knowledge-graph presence. The model's self-reported
// confidence scales the score but never below a 0.7 multiplier.
func ScoreKgProbe(output map[string]any) int {
	if output == nil {
		return 25
	}
	score := 40
	if truthy(output["wikidata_id"]) {
		score += 30
	}
	if truthy(output["google_kg_id"]) {
		score += 30
	}
	if n, ok := numberValue(output["mention_count"]); ok && n > 0 {
		score += 20
	}

	confidence := 0.8
	if n, ok := numberValue(output["confidence"]); ok && !math.IsNaN(n) {
		confidence = n
	}
	multiplier := math.Max(0.7, confidence)

	return capScore(int(math.Round(float64(score) * multiplier)))
}

// ScoreSemanticsProbe scores semantic clarity inversely to ambiguity: fewer
// ambiguous terms score higher, and disambiguations that cover the terms
// the model found earn the remainder.
func ScoreSemanticsProbe(output map[string]any) int {
	if output == nil {
		return 20
	}
	score := 30

	terms := stringSlice(output["ambiguous_terms"])
	switch {
	case len(terms) == 0:
		score += 25
	case len(terms) <= 2:
		score += 15
	case len(terms) <= 5:
		score += 5
	}

	if len(terms) > 0 {
		covered := coveredTerms(terms, output["disambiguations"])
		switch {
		case covered == len(terms):
			score += 20
		case covered > 0:
			score += 10
		}
	}

	return capScore(score)
}

// coveredTerms counts how many ambiguous terms have a matching
// disambiguation entry.
func coveredTerms(terms []string, disambiguations any) int {
	entries, ok := disambiguations.([]any)
	if !ok {
		return 0
	}
	explained := make(map[string]bool, len(entries))
	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if term, ok := obj["term"].(string); ok {
			explained[term] = true
		}
	}
	covered := 0
	for _, t := range terms {
		if explained[t] {
			covered++
		}
	}
	return covered
}

// truthy mirrors loose JSON truthiness: absent, nil, false, zero, and the
// empty string are all false.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0 && !math.IsNaN(value)
	case int:
		return value != 0
	default:
		return true
	}
}

// numberValue extracts a finite numeric value from a decoded JSON field.
func numberValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
