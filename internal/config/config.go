// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Crawl    CrawlConfig    `mapstructure:"crawl" yaml:"crawl"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch"`
	Probe    ProbeConfig    `mapstructure:"probe" yaml:"probe"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Scoring  ScoringConfig  `mapstructure:"scoring" yaml:"scoring"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig holds the Postgres connection details. An empty URL means
// the in-memory store is used instead.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// NetworkConfig tunes the shared HTTP client.
type NetworkConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// SearchConfig configures the external search adapters.
type SearchConfig struct {
	BraveAPIKey  string        `mapstructure:"brave_api_key" yaml:"-"`
	GoogleAPIKey string        `mapstructure:"google_api_key" yaml:"-"`
	GoogleCSEID  string        `mapstructure:"google_cse_id" yaml:"google_cse_id"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RateLimit is queries per second allowed against each provider.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// CrawlConfig configures the hybrid crawl agent.
type CrawlConfig struct {
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	RetryWait   time.Duration `mapstructure:"retry_wait" yaml:"retry_wait"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	MaxHTMLSize int           `mapstructure:"max_html_size" yaml:"max_html_size"`
}

// FetchConfig configures the selective fetch agent.
type FetchConfig struct {
	SearchTimeout time.Duration `mapstructure:"search_timeout" yaml:"search_timeout"`
	PageTimeout   time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// ProbeConfig configures the probe harness.
type ProbeConfig struct {
	// MaxPromptHTML truncates page HTML embedded in probe prompts.
	MaxPromptHTML int `mapstructure:"max_prompt_html" yaml:"max_prompt_html"`
}

// LLMProvider identifies an AI model provider.
type LLMProvider string

const (
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderGemini    LLMProvider = "gemini"
)

// LLMModelConfig defines the configuration for a single provider client.
type LLMModelConfig struct {
	Provider   LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"-"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	MaxTokens  int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// MaxElapsed bounds the backoff retry loop per request.
	MaxElapsed time.Duration `mapstructure:"max_elapsed" yaml:"max_elapsed"`
}

// LLMConfig lists the providers the probe harness fans out to.
type LLMConfig struct {
	Models map[string]LLMModelConfig `mapstructure:"models" yaml:"models"`
}

// ScoringConfig holds scoring engine knobs.
type ScoringConfig struct {
	// PlaybookBoost is an optional additive adjustment sourced from an
	// external brand playbook. Applied before clamping to [0,100].
	PlaybookBoost float64 `mapstructure:"playbook_boost" yaml:"playbook_boost"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "aidi")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Network --
	v.SetDefault("network.request_timeout", "30s")
	v.SetDefault("network.ignore_tls_errors", false)

	// -- Search --
	v.SetDefault("search.timeout", "6s")
	v.SetDefault("search.rate_limit", 2.0)
	v.SetDefault("search.rate_burst", 5)

	// -- Crawl --
	v.SetDefault("crawl.page_timeout", "25s")
	v.SetDefault("crawl.retry_wait", "2s")
	v.SetDefault("crawl.cache_ttl", "10m")
	v.SetDefault("crawl.max_html_size", 50000)

	// -- Fetch --
	v.SetDefault("fetch.search_timeout", "5s")
	v.SetDefault("fetch.page_timeout", "12s")
	v.SetDefault("fetch.user_agent", "AIDI-Selective-Fetcher/1.0")

	// -- Probe --
	v.SetDefault("probe.max_prompt_html", 20000)

	// -- LLM --
	v.SetDefault("llm.models.openai.provider", "openai")
	v.SetDefault("llm.models.openai.model", "gpt-4o")
	v.SetDefault("llm.models.openai.api_timeout", "60s")
	v.SetDefault("llm.models.openai.max_tokens", 2048)
	v.SetDefault("llm.models.openai.max_elapsed", "2m")
	v.SetDefault("llm.models.anthropic.provider", "anthropic")
	v.SetDefault("llm.models.anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.models.anthropic.api_timeout", "60s")
	v.SetDefault("llm.models.anthropic.max_tokens", 2048)
	v.SetDefault("llm.models.anthropic.max_elapsed", "2m")
	v.SetDefault("llm.models.gemini.provider", "gemini")
	v.SetDefault("llm.models.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.models.gemini.api_timeout", "60s")
	v.SetDefault("llm.models.gemini.max_tokens", 2048)
	v.SetDefault("llm.models.gemini.max_elapsed", "2m")

	// -- Scoring --
	v.SetDefault("scoring.playbook_boost", 0.0)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a Config from a viper instance,
// binding credential fields to environment variables.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("search.brave_api_key", "BRAVE_API_KEY")
	v.BindEnv("search.google_api_key", "GOOGLE_API_KEY")
	v.BindEnv("search.google_cse_id", "GOOGLE_CSE_ID")
	v.BindEnv("llm.models.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.models.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.models.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("database.url", "AIDI_DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be a positive duration")
	}
	if c.Search.RateLimit <= 0 {
		return fmt.Errorf("search.rate_limit must be positive")
	}
	if c.Crawl.CacheTTL <= 0 {
		return fmt.Errorf("crawl.cache_ttl must be a positive duration")
	}
	if c.Crawl.MaxHTMLSize <= 0 {
		return fmt.Errorf("crawl.max_html_size must be positive")
	}
	for name, m := range c.LLM.Models {
		if m.Provider == "" {
			return fmt.Errorf("llm.models.%s.provider is required", name)
		}
		if m.APITimeout <= 0 {
			return fmt.Errorf("llm.models.%s.api_timeout must be a positive duration", name)
		}
	}
	return nil
}
