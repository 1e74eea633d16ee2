// File: internal/probe/probe.go
package probe

import (
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/probeworks/aidi/api/schemas"
)

// Context carries the evidence a probe renders its prompt from.
type Context struct {
	Brand    schemas.Brand
	Pages    []schemas.PageFetchResult
	Evidence schemas.CombinedEvidence
}

// Probe is a declarative unit of evidence extraction: a prompt built from the
// evidence context and a schema the model's JSON output must satisfy. Probes
// are immutable configuration, not runtime state.
type Probe struct {
	Name   string
	Prompt func(Context) string
	Schema *jsonschema.Schema
}

// pageHTML returns the HTML of the first fetched page with the given type,
// or an empty string.
func pageHTML(pages []schemas.PageFetchResult, pageType schemas.PageType) string {
	for _, p := range pages {
		if p.PageType == pageType {
			return p.HTML
		}
	}
	return ""
}

// truncate caps prompt-embedded HTML so a huge page cannot blow the model's
// context window.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
