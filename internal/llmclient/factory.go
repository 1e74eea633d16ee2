// internal/llmclient/factory.go
package llmclient

import (
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/config"
)

// NewClient is a factory function that creates an AIClient for a single model
// configuration.
func NewClient(cfg config.LLMModelConfig, httpClient *http.Client, logger *zap.Logger) (schemas.AIClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, httpClient, logger)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg, httpClient, logger)
	case config.ProviderGemini:
		return NewGeminiClient(cfg, httpClient, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported model provider configured: '%s'. Supported: [%s %s %s]",
			cfg.Provider, config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderGemini)
	}
}

// NewAvailableClients builds a client for every configured model that has an
// API key. Models without credentials are skipped rather than treated as
// errors, so a single key is enough to run an evaluation. The result is
// ordered by configuration name for deterministic fan-out.
func NewAvailableClients(cfg config.LLMConfig, httpClient *http.Client, logger *zap.Logger) ([]schemas.AIClient, error) {
	names := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	clients := make([]schemas.AIClient, 0, len(names))
	for _, name := range names {
		modelCfg := cfg.Models[name]
		if modelCfg.APIKey == "" {
			logger.Debug("Skipping model without credentials", zap.String("model", name))
			continue
		}
		client, err := NewClient(modelCfg, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to build client %q: %w", name, err)
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no model providers are configured with API keys")
	}
	return clients, nil
}
