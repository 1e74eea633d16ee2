// File: internal/probe/probes.go
package probe

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/config"
)

const (
	ProbeSchema    = "schema_probe"
	ProbePolicy    = "policy_probe"
	ProbeKG        = "kg_probe"
	ProbeSemantics = "semantics_probe"
)

const schemaProbeDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"gtin": {"type": "string"},
		"price": {"type": "number"},
		"currency": {"type": "string"},
		"availability": {"type": "boolean"},
		"variant_count": {"type": "number"},
		"citations": {"type": "array", "items": {"type": "string", "format": "uri"}}
	}
}`

const policyProbeDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"has_returns": {"type": "boolean"},
		"window_days": {"type": "number"},
		"restocking_fee_pct": {"type": "number"},
		"citations": {"type": "array", "items": {"type": "string", "format": "uri"}}
	},
	"required": ["has_returns", "citations"]
}`

const kgProbeDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"wikidata_id": {"type": "string"},
		"google_kg_id": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["confidence"]
}`

const semanticsProbeDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"ambiguous_terms": {"type": "array", "items": {"type": "string"}},
		"disambiguations": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"term": {"type": "string"},
					"meaning": {"type": "string"},
					"url": {"type": "string", "format": "uri"}
				},
				"required": ["term", "meaning", "url"]
			}
		}
	},
	"required": ["ambiguous_terms"]
}`

func mustCompileSchema(name, doc string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.AssertFormat = true
	if err := c.AddResource(name, strings.NewReader(doc)); err != nil {
		panic(fmt.Sprintf("probe: add schema resource %s: %v", name, err))
	}
	schema, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("probe: compile schema %s: %v", name, err))
	}
	return schema
}

// CoreProbes returns the standard probe set. cfg.MaxPromptHTML caps how much
// fetched HTML each prompt embeds.
func CoreProbes(cfg config.ProbeConfig) []Probe {
	maxHTML := cfg.MaxPromptHTML

	return []Probe{
		{
			Name:   ProbeSchema,
			Schema: mustCompileSchema("schema_probe.json", schemaProbeDoc),
			Prompt: func(pctx Context) string {
				return fmt.Sprintf(`Analyze the following HTML content from a product page for the brand %s.
Extract the specified fields into a valid JSON object. If a field is not present, omit it.
Provide citation URLs from the provided pages.

HTML Content:
%s`, pctx.Brand.Name, truncate(pageHTML(pctx.Pages, schemas.PageProduct), maxHTML))
			},
		},
		{
			Name:   ProbePolicy,
			Schema: mustCompileSchema("policy_probe.json", policyProbeDoc),
			Prompt: func(pctx Context) string {
				return fmt.Sprintf(`Analyze the following HTML content from an FAQ or Returns page for %s.
Extract the specified policy details into a valid JSON object.
Provide the URL of the page where you found the information as a citation.

HTML Content:
%s`, pctx.Brand.Name, truncate(pageHTML(pctx.Pages, schemas.PageFAQ), maxHTML))
			},
		},
		{
			Name:   ProbeKG,
			Schema: mustCompileSchema("kg_probe.json", kgProbeDoc),
			Prompt: func(pctx Context) string {
				return fmt.Sprintf(`Based on your general knowledge and by searching public knowledge graphs, identify the Wikidata and Google Knowledge Graph IDs for the brand %q with the domain %s.
Return the IDs and your confidence in their accuracy as a valid JSON object.`,
					pctx.Brand.Name, pctx.Brand.WebsiteURL)
			},
		},
		{
			Name:   ProbeSemantics,
			Schema: mustCompileSchema("semantics_probe.json", semanticsProbeDoc),
			Prompt: func(pctx Context) string {
				return fmt.Sprintf(`Analyze the content from the 'About Us' page for %s (%s).
Identify any terms that could be considered ambiguous (e.g., generic words, acronyms, non-unique product names).
For each ambiguous term, provide a disambiguation that clarifies its meaning in the brand's context, along with a supporting URL.
Return a valid JSON object.

HTML Content:
%s`, pctx.Brand.Name, pctx.Brand.WebsiteURL, truncate(pageHTML(pctx.Pages, schemas.PageAbout), maxHTML))
			},
		},
	}
}
