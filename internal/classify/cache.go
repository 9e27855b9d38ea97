package classify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Cache stores categories by URL.  A miss is ("", false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (category string, ok bool, err error)
	Set(ctx context.Context, key, category string) error
}

// Cached consults a Cache before calling the wrapped classifier, and stores
// what it returns.  Cache failures are logged and otherwise ignored.
type Cached struct {
	next  Classifier
	cache Cache
	log   zerolog.Logger
}

// NewCached wraps next with cache.
func NewCached(next Classifier, cache Cache, log zerolog.Logger) *Cached {
	return &Cached{next: next, cache: cache, log: log}
}

// CacheKey returns the key Cached stores rawURL's category under: the URL
// as given, without surrounding space, since rules and predictors see the
// whole URL.  URLs without a host have no key.
func CacheKey(rawURL string) string {
	if Normalize(rawURL) == "" {
		return ""
	}
	return strings.TrimSpace(rawURL)
}

// Classify returns the cached category for rawURL, or classifies it.
func (c *Cached) Classify(ctx context.Context, rawURL string) (string, error) {
	key := CacheKey(rawURL)
	if key == "" {
		return c.next.Classify(ctx, rawURL)
	}

	switch category, ok, err := c.cache.Get(ctx, key); {
	case err != nil:
		c.log.Warn().Err(err).Str("url", key).Msg("category cache read failed")
	case ok:
		return category, nil
	}

	category, err := c.next.Classify(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, category); err != nil {
		c.log.Warn().Err(err).Str("url", key).Msg("category cache write failed")
	}
	return category, nil
}

type memoryEntry struct {
	category string
	expires  time.Time
}

// MemoryCache is an in-process Cache.  Entries older than the TTL are
// treated as missing; a zero TTL keeps entries forever.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.category, true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{category: category}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}
