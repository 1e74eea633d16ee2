// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "aidi", cfg.Logger.ServiceName)
	assert.Equal(t, 6*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Crawl.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.Crawl.RetryWait)
	assert.Equal(t, 50000, cfg.Crawl.MaxHTMLSize)

	require.Contains(t, cfg.LLM.Models, "openai")
	require.Contains(t, cfg.LLM.Models, "anthropic")
	require.Contains(t, cfg.LLM.Models, "gemini")
	assert.Equal(t, ProviderGemini, cfg.LLM.Models["gemini"].Provider)

	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper_EnvBinding(t *testing.T) {
	t.Setenv("BRAVE_API_KEY", "brave-test-key")
	t.Setenv("AIDI_DATABASE_URL", "postgres://localhost/aidi_test")

	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "brave-test-key", cfg.Search.BraveAPIKey)
	assert.Equal(t, "postgres://localhost/aidi_test", cfg.Database.URL)
}

func TestValidate_Rejections(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "zero search timeout",
			mutate: func(c *Config) { c.Search.Timeout = 0 },
			errMsg: "search.timeout",
		},
		{
			name:   "negative rate limit",
			mutate: func(c *Config) { c.Search.RateLimit = -1 },
			errMsg: "search.rate_limit",
		},
		{
			name:   "zero cache ttl",
			mutate: func(c *Config) { c.Crawl.CacheTTL = 0 },
			errMsg: "crawl.cache_ttl",
		},
		{
			name: "model without provider",
			mutate: func(c *Config) {
				m := c.LLM.Models["openai"]
				m.Provider = ""
				c.LLM.Models["openai"] = m
			},
			errMsg: "provider is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
