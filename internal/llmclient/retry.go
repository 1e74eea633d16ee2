// internal/llmclient/retry.go
package llmclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/internal/config"
)

// newRetryPolicy builds the exponential backoff used by every provider client.
func newRetryPolicy(cfg config.LLMModelConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.MaxElapsed
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 2 * time.Minute
	}
	b.MaxInterval = 30 * time.Second
	return b
}

// classifyAPIError turns a non-200 provider response into either a retryable
// or a permanent error. Rate limiting and server faults are transient; every
// other status reflects a bad request or bad credentials and retrying will not
// help.
func classifyAPIError(logger *zap.Logger, provider string, statusCode int, body []byte) error {
	logger.Error("Provider API returned error status",
		zap.String("provider", provider),
		zap.Int("status", statusCode),
		zap.String("response", string(body)),
	)
	err := fmt.Errorf("%s API error: status %d, body: %s", provider, statusCode, string(body))

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return err
	default:
		return backoff.Permanent(err)
	}
}
