// Package suggest adds an in-process read path over the indexer: a short-TTL
// result cache with singleflight collapse so a burst of identical prefix
// queries costs one store round trip.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/logger"
)

// sweepThreshold bounds cache growth: once the map holds this many entries,
// a Set pass evicts everything expired.
const sweepThreshold = 4096

// Searcher is the slice of the indexer the cache needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]index.Result, error)
}

type entry struct {
	results   []index.Result
	expiresAt time.Time
}

// Cache memoizes suggest results for a short TTL. A TTL of zero disables
// memoization but keeps singleflight collapse for concurrent identical
// queries.
type Cache struct {
	searcher Searcher
	ttl      time.Duration
	group    singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry

	hits   atomic.Int64
	misses atomic.Int64
	logger *slog.Logger
}

// New creates a Cache over the given searcher.
func New(searcher Searcher, ttl time.Duration) *Cache {
	return &Cache{
		searcher: searcher,
		ttl:      ttl,
		entries:  make(map[string]entry),
		logger:   logger.WithComponent("suggest-cache"),
	}
}

// Suggest returns results for query, serving from cache when fresh. The
// second return value reports whether the result came from cache.
func (c *Cache) Suggest(ctx context.Context, query string, limit int) ([]index.Result, bool, error) {
	key := buildKey(query, limit)

	if results, ok := c.get(key); ok {
		c.hits.Add(1)
		return results, true, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.get(key); ok {
			return results, nil
		}
		results, err := c.searcher.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		c.set(key, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	c.misses.Add(1)
	return val.([]index.Result), false, nil
}

// Stats returns the cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) get(key string) ([]index.Result, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.results, true
}

func (c *Cache) set(key string, results []index.Result) {
	if c.ttl <= 0 {
		return
	}
	now := time.Now()
	c.mu.Lock()
	if len(c.entries) >= sweepThreshold {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = entry{results: results, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

func buildKey(query string, limit int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(query)), limit)
}
