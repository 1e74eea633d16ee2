package schemas

import "context"

// SearchAdapter wraps one external search API. Implementations never return
// an error: any HTTP failure, timeout, or malformed provider payload is
// logged internally and yields an empty result set, because adapters sit on
// the hot path of every evaluation and must not become the slow or fragile
// part of it.
type SearchAdapter interface {
	// Search runs one query and returns rank-ordered results, or nil.
	Search(ctx context.Context, query string) []SearchResult
	// Available reports whether the adapter has the credentials it needs.
	Available() bool
	// Name identifies the provider in logs and evidence source lists.
	Name() string
}

// QueryResponse is the raw answer from one AI provider call.
type QueryResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// AIClient is a single AI model provider. The probe harness treats a
// returned error and a non-object Content identically: that attempt failed.
type AIClient interface {
	// Query sends a prompt and returns the provider's raw completion.
	Query(ctx context.Context, prompt string) (QueryResponse, error)
	// Provider returns the provider's stable name (e.g. "openai").
	Provider() string
}

// FetchAgent retrieves a small set of canonical pages for a brand.
type FetchAgent interface {
	// Run resolves and fetches the target pages, returning only successful
	// (status 200) fetches. Seed URLs, when present, skip discovery.
	Run(ctx context.Context, seeds map[PageType]string) []PageFetchResult
}

// AgentInput identifies the brand a crawl agent should gather evidence for.
type AgentInput struct {
	BrandName  string
	WebsiteURL string
}

// AgentOutput is the crawl agent's result envelope.
type AgentOutput struct {
	Evidence      CombinedEvidence
	Cached        bool
	ExecutionTime int64 // milliseconds
}

// CrawlAgent aggregates evidence about a brand. Execute never returns an
// error state: when every data source fails it synthesizes fallback
// evidence so downstream probes always have textual context.
type CrawlAgent interface {
	Execute(ctx context.Context, input AgentInput) AgentOutput
}

// Store is the persistence boundary of the evidence/scoring core. The core
// only produces to it; reading brands and serving the front end belong to
// other subsystems.
type Store interface {
	CreateEvaluation(ctx context.Context, eval Evaluation) error
	GetEvaluation(ctx context.Context, id string) (Evaluation, error)
	UpdateEvaluation(ctx context.Context, id string, patch EvaluationPatch) error
	// UpsertDimensionScore inserts or overwrites the score keyed by
	// (EvaluationID, DimensionName).
	UpsertDimensionScore(ctx context.Context, score DimensionScore) error
	CreateRecommendation(ctx context.Context, rec Recommendation) error
}
