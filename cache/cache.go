// Package cache provides memoization for input normalization.
// Caching speeds up scenarios where the same utterances arrive repeatedly,
// such as scripted conversations or load tests against one rule base.
package cache

import (
	"crypto/sha256"
	"sync"

	"github.com/yooz-lang/go-yooz/normalize"
)

// NormCache caches normalization results keyed by input hash.
type NormCache struct {
	mu        sync.Mutex
	cache     map[string]normalize.Result
	order     []string
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache with the specified maximum size.
// When the cache is full, the oldest entry is evicted (FIFO).
// Set maxSize to 0 for an unlimited cache.
func New(maxSize int) *NormCache {
	return &NormCache{
		cache:   make(map[string]normalize.Result),
		maxSize: maxSize,
	}
}

// hashInput creates a deterministic key for an utterance.
func hashInput(input string) string {
	sum := sha256.Sum256([]byte(input))
	return string(sum[:])
}

// Get retrieves a cached result for the given input.
func (c *NormCache) Get(input string) (normalize.Result, bool) {
	key := hashInput(input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if res, ok := c.cache[key]; ok {
		c.hits++
		return res, true
	}
	c.misses++
	return normalize.Result{}, false
}

// Put stores a result in the cache.
func (c *NormCache) Put(input string, res normalize.Result) {
	key := hashInput(input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.cache[key]; ok {
		c.cache[key] = res
		return
	}

	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
		c.evictions++
	}

	c.cache[key] = res
	c.order = append(c.order, key)
}

// GetOrCompute retrieves from cache or computes and caches the result.
func (c *NormCache) GetOrCompute(input string, compute func() normalize.Result) normalize.Result {
	if res, ok := c.Get(input); ok {
		return res
	}

	res := compute()
	c.Put(input, res)
	return res
}

// Clear removes all entries from the cache.
func (c *NormCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]normalize.Result)
	c.order = nil
}

// Size returns the current number of cached entries.
func (c *NormCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Stats holds cache statistics.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// Stats returns cache statistics.
func (c *NormCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Size:      len(c.cache),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}
