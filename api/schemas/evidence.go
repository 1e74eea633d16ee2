package schemas

import "time"

// Brand is the unit under evaluation. It is owned by the persistence layer
// and read-only to the evidence/scoring core.
type Brand struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
}

// SearchResult is one normalized hit from an external search provider.
// Rank is 1-based in provider order.
type SearchResult struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// PageType classifies the canonical pages the selective fetcher targets.
type PageType string

const (
	PageAbout    PageType = "about"
	PageFAQ      PageType = "faq"
	PageProduct  PageType = "product"
	PageHomepage PageType = "homepage"
)

// PageFetchResult is one fetched canonical page. ContentHash is the SHA-256
// hex digest of the raw HTML, used for downstream dedup and caching.
type PageFetchResult struct {
	URL         string   `json:"url"`
	PageType    PageType `json:"page_type"`
	HTML        string   `json:"html"`
	ContentHash string   `json:"content_hash"`
	Status      int      `json:"status"`
}

// PageMeta holds the basic metadata extracted from a crawled page.
type PageMeta struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Keywords       string `json:"keywords,omitempty"`
	OGTitle        string `json:"og_title,omitempty"`
	OGDescription  string `json:"og_description,omitempty"`
	OGURL          string `json:"og_url,omitempty"`
	HasTitle       bool   `json:"has_title"`
	HasDescription bool   `json:"has_description"`
}

// ReputationSignals summarizes the keyword-bucket sentiment analysis run
// over search results about the brand.
type ReputationSignals struct {
	PositiveSignals     int    `json:"positive_signals"`
	NegativeSignals     int    `json:"negative_signals"`
	TrustSignals        int    `json:"trust_signals"`
	ReviewMentions      int    `json:"review_mentions"`
	PressMentions       int    `json:"press_mentions"`
	PartnershipMentions int    `json:"partnership_mentions"`
	SentimentScore      int    `json:"sentiment_score"`
	ReputationCategory  string `json:"reputation_category"`
	SignalStrength      string `json:"signal_strength"`
}

// KeyInformation holds best-effort business facts extracted from search
// snippets. Extraction is heuristic; any field may remain empty.
type KeyInformation struct {
	BusinessType string   `json:"business_type,omitempty"`
	FoundedYear  string   `json:"founded_year,omitempty"`
	Headquarters string   `json:"headquarters,omitempty"`
	Leadership   string   `json:"leadership,omitempty"`
	KeyProducts  []string `json:"key_products,omitempty"`
	CompanySize  string   `json:"company_size,omitempty"`
	Funding      string   `json:"funding,omitempty"`
}

// DomainTrustSignals are heuristic indicators derived purely from the
// hostname shape.
type DomainTrustSignals struct {
	HasComTLD   bool `json:"has_com_tld"`
	HasOrgTLD   bool `json:"has_org_tld"`
	ShortDomain bool `json:"short_domain"`
	NoHyphens   bool `json:"no_hyphens"`
	NoNumbers   bool `json:"no_numbers"`
}

// DomainInfo is the no-network breakdown of the brand's hostname.
type DomainInfo struct {
	Domain       string             `json:"domain"`
	TLD          string             `json:"tld"`
	SLD          string             `json:"sld"`
	Subdomains   []string           `json:"subdomains,omitempty"`
	IsWWW        bool               `json:"is_www"`
	DomainLength int                `json:"domain_length"`
	TrustSignals DomainTrustSignals `json:"trust_signals"`
}

// StructuredSnippet is one Google CSE hit annotated with a brand-relevance
// score in [0,100].
type StructuredSnippet struct {
	Title          string `json:"title"`
	Snippet        string `json:"snippet"`
	URL            string `json:"url"`
	RelevanceScore int    `json:"relevance_score"`
}

// CombinedEvidence is the hybrid crawl agent's merged view over whichever
// data sources succeeded. QualityScore is always in [0,100] and grows with
// the number of successful sources; Sources is never empty.
type CombinedEvidence struct {
	BrandName          string              `json:"brand_name"`
	WebsiteURL         string              `json:"website_url"`
	Sources            []string            `json:"sources"`
	QualityScore       int                 `json:"quality_score"`
	SiteExists         bool                `json:"site_exists"`
	StatusCode         int                 `json:"status_code,omitempty"`
	HTML               string              `json:"html,omitempty"`
	MetaData           PageMeta            `json:"meta_data"`
	ContentSize        int                 `json:"content_size"`
	BrandMentions      int                 `json:"brand_mentions"`
	ExternalMentions   int                 `json:"external_mentions"`
	Reputation         ReputationSignals   `json:"reputation_signals"`
	KeyInformation     KeyInformation      `json:"key_information"`
	StructuredSnippets []StructuredSnippet `json:"structured_snippets,omitempty"`
	DomainInfo         DomainInfo          `json:"domain_info"`
	CrawlTimestamp     time.Time           `json:"crawl_timestamp"`
	Fallback           bool                `json:"fallback,omitempty"`

	// EstimatedIndustry is only set on fallback evidence, guessed from
	// domain keywords.
	EstimatedIndustry string `json:"estimated_industry,omitempty"`
}
