// File: internal/search/ratelimit.go
package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/probeworks/aidi/api/schemas"
)

// Limited wraps a SearchAdapter with a token-bucket rate limiter. Queries
// block until the limiter admits them; a cancelled context during the wait
// surfaces as an empty result, matching the fail-soft adapter contract.
type Limited struct {
	inner   schemas.SearchAdapter
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewLimited wraps adapter with a limiter admitting qps queries per second
// with the given burst.
func NewLimited(adapter schemas.SearchAdapter, qps float64, burst int, logger *zap.Logger) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{
		inner:   adapter,
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
		logger:  logger.Named("search.ratelimit"),
	}
}

// Name delegates to the wrapped adapter.
func (l *Limited) Name() string { return l.inner.Name() }

// Available delegates to the wrapped adapter.
func (l *Limited) Available() bool { return l.inner.Available() }

// Search waits for limiter admission before delegating.
func (l *Limited) Search(ctx context.Context, query string) []schemas.SearchResult {
	if err := l.limiter.Wait(ctx); err != nil {
		l.logger.Warn("Rate limiter wait aborted",
			zap.String("adapter", l.inner.Name()),
			zap.Error(err),
		)
		return nil
	}
	return l.inner.Search(ctx, query)
}

var _ schemas.SearchAdapter = (*Limited)(nil)
