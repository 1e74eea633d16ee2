// File: internal/search/search_test.go
package search

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

	"github.com/probeworks/aidi/api/schemas"
)

func TestBraveAdapter_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "acme reviews", r.URL.Query().Get("q"))
		w.Write([]byte(`{"web":{"results":[
			{"title":"Acme Reviews","url":"https://reviews.example/acme","description":"Trusted by thousands"},
			{"title":"Acme on news","url":"https://news.example/acme","description":"Press coverage"}
		]}}`))
	}))
	defer server.Close()

	adapter := NewBraveAdapter("secret-token", server.Client(), zap.NewNop()).WithEndpoint(server.URL)
	require.True(t, adapter.Available())
	assert.Equal(t, "brave", adapter.Name())

	results := adapter.Search(context.Background(), "acme reviews")
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "https://reviews.example/acme", results[0].URL)
	assert.Equal(t, "Trusted by thousands", results[0].Snippet)
}

func TestBraveAdapter_FailSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := NewBraveAdapter("secret-token", server.Client(), zap.NewNop()).WithEndpoint(server.URL)

	results := adapter.Search(context.Background(), "acme")
	assert.Empty(t, results)
}

func TestBraveAdapter_SlowProviderHitsQueryTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"web":{"results":[{"title":"late","url":"https://late.example","description":""}]}}`))
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	adapter := NewBraveAdapter("secret-token", server.Client(), zap.NewNop()).
		WithEndpoint(server.URL).
		WithTimeout(50 * time.Millisecond)

	start := time.Now()
	results := adapter.Search(context.Background(), "acme")
	assert.Empty(t, results)
	assert.Less(t, time.Since(start), 2*time.Second, "query must be bounded by the adapter timeout")
}

func TestGoogleCSEAdapter_SlowProviderHitsQueryTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"items":[]}`))
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	adapter := NewGoogleCSEAdapter("api-key", "engine-id", server.Client(), zap.NewNop()).
		WithEndpoint(server.URL).
		WithTimeout(50 * time.Millisecond)

	start := time.Now()
	results := adapter.Search(context.Background(), "acme")
	assert.Empty(t, results)
	assert.Less(t, time.Since(start), 2*time.Second, "query must be bounded by the adapter timeout")
}

func TestBraveAdapter_UnavailableWithoutKey(t *testing.T) {
	adapter := NewBraveAdapter("", nil, zap.NewNop())
	assert.False(t, adapter.Available())
	assert.Nil(t, adapter.Search(context.Background(), "anything"))
}

func TestGoogleCSEAdapter_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "api-key", q.Get("key"))
		assert.Equal(t, "engine-id", q.Get("cx"))
		w.Write([]byte(`{"items":[{"title":"Acme schema","link":"https://acme.example/products","snippet":"structured data"}]}`))
	}))
	defer server.Close()

	adapter := NewGoogleCSEAdapter("api-key", "engine-id", server.Client(), zap.NewNop()).WithEndpoint(server.URL)
	require.True(t, adapter.Available())
	assert.Equal(t, "google_cse", adapter.Name())

	results := adapter.Search(context.Background(), "site:acme.example products")
	require.Len(t, results, 1)
	assert.Equal(t, "https://acme.example/products", results[0].URL)
}

func TestGoogleCSEAdapter_RequiresBothCredentials(t *testing.T) {
	adapter := NewGoogleCSEAdapter("api-key", "", nil, zap.NewNop())
	assert.False(t, adapter.Available())
	assert.Nil(t, adapter.Search(context.Background(), "anything"))
}

func TestGoogleCSEAdapter_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	adapter := NewGoogleCSEAdapter("api-key", "engine-id", server.Client(), zap.NewNop()).WithEndpoint(server.URL)
	assert.Empty(t, adapter.Search(context.Background(), "acme"))
}

type countingAdapter struct {
	calls atomic.Int32
}

func (c *countingAdapter) Name() string    { return "counting" }
func (c *countingAdapter) Available() bool { return true }
func (c *countingAdapter) Search(ctx context.Context, query string) []schemas.SearchResult {
	c.calls.Add(1)
	return []schemas.SearchResult{{Rank: 1, URL: "https://example.com"}}
}

func TestLimited_DelegatesAndThrottles(t *testing.T) {
	inner := &countingAdapter{}
	limited := NewLimited(inner, 100, 1, zap.NewNop())

	assert.Equal(t, "counting", limited.Name())
	assert.True(t, limited.Available())

	start := time.Now()
	for i := 0; i < 3; i++ {
		results := limited.Search(context.Background(), "q")
		require.Len(t, results, 1)
	}
	// Burst of 1 at 100 qps forces two waits of ~10ms.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestLimited_CancelledContext(t *testing.T) {
	inner := &countingAdapter{}
	limited := NewLimited(inner, 0.001, 1, zap.NewNop())

	// Drain the single burst token.
	limited.Search(context.Background(), "first")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	results := limited.Search(ctx, "second")
	assert.Nil(t, results)
	assert.Equal(t, int32(1), inner.calls.Load())
}
