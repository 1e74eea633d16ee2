// File: internal/crawl/cache.go
package crawl

import (
	"sync"
	"time"

	"github.com/probeworks/aidi/api/schemas"
)

type cacheEntry struct {
	evidence  schemas.CombinedEvidence
	timestamp time.Time
}

// evidenceCache is a TTL cache for combined evidence, keyed by
// websiteURL+"|"+brandName. Eviction is lazy: expired entries are dropped on
// the read that discovers them.
type evidenceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newEvidenceCache(ttl time.Duration) *evidenceCache {
	return &evidenceCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(websiteURL, brandName string) string {
	return websiteURL + "|" + brandName
}

func (c *evidenceCache) get(key string) (schemas.CombinedEvidence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return schemas.CombinedEvidence{}, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		return schemas.CombinedEvidence{}, false
	}
	return entry.evidence, true
}

func (c *evidenceCache) put(key string, evidence schemas.CombinedEvidence) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{evidence: evidence, timestamp: c.now()}
}
