// File: internal/fetch/agent_test.go
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/config"
)

type stubAdapter struct {
	name      string
	available bool
	results   map[string][]schemas.SearchResult
	queries   []string
}

func (s *stubAdapter) Name() string    { return s.name }
func (s *stubAdapter) Available() bool { return s.available }
func (s *stubAdapter) Search(ctx context.Context, query string) []schemas.SearchResult {
	s.queries = append(s.queries, query)
	for fragment, results := range s.results {
		if strings.Contains(query, fragment) {
			return results
		}
	}
	return nil
}

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		SearchTimeout: 2 * time.Second,
		PageTimeout:   2 * time.Second,
		UserAgent:     "AIDI-Selective-Fetcher/1.0",
	}
}

func TestRun_FetchesSeededPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AIDI-Selective-Fetcher/1.0", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/":
			w.Write([]byte("<html><body>home</body></html>"))
		case "/about":
			w.Write([]byte("<html><body>about</body></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	agent := NewAgent(&stubAdapter{}, nil, server.Client(), testFetchConfig(), zap.NewNop())

	results := agent.Run(context.Background(), map[schemas.PageType]string{
		schemas.PageHomepage: server.URL + "/",
		schemas.PageAbout:    server.URL + "/about",
		schemas.PageFAQ:      server.URL + "/missing",
	})

	require.Len(t, results, 2)
	byType := map[schemas.PageType]schemas.PageFetchResult{}
	for _, r := range results {
		byType[r.PageType] = r
	}

	home := byType[schemas.PageHomepage]
	assert.Equal(t, http.StatusOK, home.Status)
	assert.Contains(t, home.HTML, "home")

	wantHash := sha256.Sum256([]byte("<html><body>about</body></html>"))
	assert.Equal(t, hex.EncodeToString(wantHash[:]), byType[schemas.PageAbout].ContentHash)

	_, haveFAQ := byType[schemas.PageFAQ]
	assert.False(t, haveFAQ, "non-200 pages must be filtered out")
}

func TestRun_ResolvesMissingPagesViaSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>page</html>"))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")

	primary := &stubAdapter{
		name:      "brave",
		available: true,
		results: map[string][]schemas.SearchResult{
			"about us": {
				{Rank: 1, URL: "https://other.example/about"},
				{Rank: 2, URL: server.URL + "/about-us"},
			},
			"faq": {
				{Rank: 1, URL: server.URL + "/help/faq"},
			},
		},
	}

	agent := NewAgent(primary, nil, server.Client(), testFetchConfig(), zap.NewNop())

	results := agent.Run(context.Background(), map[schemas.PageType]string{
		schemas.PageHomepage: server.URL + "/",
	})

	urls := map[schemas.PageType]string{}
	for _, r := range results {
		urls[r.PageType] = r.URL
	}

	// Off-domain hits are skipped; the on-domain result wins.
	assert.Equal(t, server.URL+"/about-us", urls[schemas.PageAbout])
	assert.Equal(t, server.URL+"/help/faq", urls[schemas.PageFAQ])

	for _, q := range primary.queries {
		assert.Contains(t, q, "site:"+host)
	}
}

func TestRun_FallsBackToSecondaryAdapter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>page</html>"))
	}))
	defer server.Close()

	primary := &stubAdapter{name: "brave", available: false}
	secondary := &stubAdapter{
		name:      "google_cse",
		available: true,
		results: map[string][]schemas.SearchResult{
			"product": {{Rank: 1, URL: server.URL + "/products/widget"}},
		},
	}

	agent := NewAgent(primary, secondary, server.Client(), testFetchConfig(), zap.NewNop())

	results := agent.Run(context.Background(), map[schemas.PageType]string{
		schemas.PageHomepage: server.URL + "/",
	})

	assert.Empty(t, primary.queries)
	assert.NotEmpty(t, secondary.queries)

	var product *schemas.PageFetchResult
	for i := range results {
		if results[i].PageType == schemas.PageProduct {
			product = &results[i]
		}
	}
	require.NotNil(t, product)
	assert.Equal(t, server.URL+"/products/widget", product.URL)
}

func TestRun_NoSeedsNoAdapters(t *testing.T) {
	agent := NewAgent(nil, nil, nil, testFetchConfig(), zap.NewNop())
	assert.Empty(t, agent.Run(context.Background(), nil))
}
