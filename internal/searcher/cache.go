package searcher

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// queryCache is an LRU of search responses whose entries expire after ttl
type queryCache struct {
	mu    sync.RWMutex
	lru   *lru.Cache[[32]byte, *cacheEntry]
	ttl   time.Duration
	now   func() time.Time
	hits  int64
	total int64
}

func newQueryCache(size int, ttl time.Duration) *queryCache {
	c, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// only fails for a non-positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &queryCache{lru: c, ttl: ttl, now: time.Now}
}

// get returns a deep copy of a live entry
func (c *queryCache) get(key [32]byte) (*SearchResponse, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	entry, found := c.lru.Get(key)
	if !found {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	c.hits++
	return copySearchResponse(entry.response), true
}

func (c *queryCache) put(key [32]byte, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: c.now().Add(c.ttl),
	}

	c.mu.Lock()
	c.lru.Add(key, entry)
	c.mu.Unlock()
}

func (c *queryCache) purge() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
}

func (c *queryCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Entries int   `json:"entries"`
	Lookups int64 `json:"lookups"`
	Hits    int64 `json:"hits"`
}

// CacheStats returns the current cache counters
func (s *Searcher) CacheStats() CacheStats {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()
	return CacheStats{
		Entries: s.cache.lru.Len(),
		Lookups: s.cache.total,
		Hits:    s.cache.hits,
	}
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}
	dst := &SearchResponse{
		TotalMatches: src.TotalMatches,
		Duration:     src.Duration,
		CacheHit:     src.CacheHit,
		Results:      make([]SearchResult, len(src.Results)),
	}
	for i, r := range src.Results {
		dst.Results[i] = SearchResult{
			Component: r.Component.Clone(),
			Score:     r.Score,
		}
	}
	return dst
}

// cacheKey hashes the normalized request together with the store version,
// so any write to the index makes earlier entries unreachable
func cacheKey(req SearchRequest, version uint64) [32]byte {
	var data strings.Builder
	data.WriteString(strings.ToLower(req.Query))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.Fields))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.MaxResults))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", version))
	return sha256.Sum256([]byte(data.String()))
}
