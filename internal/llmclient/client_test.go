// internal/llmclient/client_test.go
package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/internal/config"
)

func testModelConfig(provider config.LLMProvider, endpoint string) config.LLMModelConfig {
	return config.LLMModelConfig{
		Provider:   provider,
		Model:      "test-model",
		APIKey:     "test-key",
		Endpoint:   endpoint,
		APITimeout: 5 * time.Second,
		MaxTokens:  512,
		MaxElapsed: 2 * time.Second,
	}
}

func TestOpenAIClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"price\": 10}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testModelConfig(config.ProviderOpenAI, server.URL), server.Client(), zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Query(context.Background(), "extract the price")
	require.NoError(t, err)
	assert.Equal(t, `{"price": 10}`, resp.Content)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, "openai", client.Provider())
}

func TestAnthropicClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"has_returns\": true}"}],"stop_reason":"end_turn","usage":{"input_tokens":4,"output_tokens":2}}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(testModelConfig(config.ProviderAnthropic, server.URL), server.Client(), zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Query(context.Background(), "extract the policy")
	require.NoError(t, err)
	assert.Equal(t, `{"has_returns": true}`, resp.Content)
	assert.Equal(t, "anthropic", client.Provider())
}

func TestGeminiClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"found_in_wikidata\": false}"}],"role":"model"},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":6,"candidatesTokenCount":4,"totalTokenCount":10}}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testModelConfig(config.ProviderGemini, server.URL), server.Client(), zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Query(context.Background(), "check the knowledge graph")
	require.NoError(t, err)
	assert.Equal(t, `{"found_in_wikidata": false}`, resp.Content)
	assert.Equal(t, "gemini", client.Provider())
}

func TestQuery_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}],"usage":{}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testModelConfig(config.ProviderOpenAI, server.URL), server.Client(), zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Query(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestQuery_PermanentOn4xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testModelConfig(config.ProviderOpenAI, server.URL), server.Client(), zap.NewNop())
	require.NoError(t, err)

	_, err = client.Query(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	cfg := testModelConfig(config.ProviderGemini, "")
	cfg.APIKey = ""

	_, err := NewClient(cfg, nil, zap.NewNop())
	require.Error(t, err)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	cfg := testModelConfig("mystery", "")

	_, err := NewClient(cfg, nil, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown or unsupported")
}

func TestNewAvailableClients_SkipsMissingKeys(t *testing.T) {
	cfg := config.LLMConfig{
		Models: map[string]config.LLMModelConfig{
			"openai":    testModelConfig(config.ProviderOpenAI, ""),
			"anthropic": {Provider: config.ProviderAnthropic, APITimeout: time.Second},
		},
	}

	clients, err := NewAvailableClients(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "openai", clients[0].Provider())
}

func TestNewAvailableClients_NoKeysAnywhere(t *testing.T) {
	cfg := config.LLMConfig{
		Models: map[string]config.LLMModelConfig{
			"gemini": {Provider: config.ProviderGemini, APITimeout: time.Second},
		},
	}

	_, err := NewAvailableClients(cfg, nil, zap.NewNop())
	require.Error(t, err)
}
