package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// TTLTable maps recommendation classes to their cache lifetimes.
// BUY entries expire fastest (worth re-verifying), PASS slowest.
type TTLTable map[core.Recommendation]time.Duration

// NewTTLTable builds the TTL table from configuration.
func NewTTLTable(cfg config.CacheConfig) TTLTable {
	return TTLTable{
		core.RecommendationBuy:      cfg.TTLBuy,
		core.RecommendationResearch: cfg.TTLResearch,
		core.RecommendationPass:     cfg.TTLPass,
	}
}

// TTLFor returns the lifetime for a recommendation class.
func (t TTLTable) TTLFor(rec core.Recommendation) time.Duration {
	if ttl, ok := t[rec]; ok && ttl > 0 {
		return ttl
	}
	return t[core.RecommendationResearch]
}

type memoryEntry struct {
	key     string
	cached  *core.CachedDecision
	element *list.Element
}

// MemoryCache is an in-memory LRU implementation of the DecisionCache
// interface with per-class TTLs. Expired entries are dropped lazily on
// read and by a background sweep; the LRU bound kicks in at capacity.
type MemoryCache struct {
	entries map[string]*memoryEntry
	lru     *list.List // front = most recently used
	maxSize int
	ttls    TTLTable

	mu          sync.Mutex
	hits        int64
	misses      int64
	evictions   int64
	expirations int64

	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	now         func() time.Time
}

// NewMemoryCache creates a new in-memory decision cache
func NewMemoryCache(maxSize int, ttls TTLTable, cleanupFreq time.Duration, logger *zap.Logger) *MemoryCache {
	c := &MemoryCache{
		entries:     make(map[string]*memoryEntry),
		lru:         list.New(),
		maxSize:     maxSize,
		ttls:        ttls,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	if cleanupFreq > 0 {
		go c.startCleanupTask()
	}
	return c
}

// Get retrieves an unexpired entry, promoting it to most recently used.
func (c *MemoryCache) Get(ctx context.Context, key string) (*core.CachedDecision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.cached.ExpiresAt) {
		c.removeLocked(entry)
		c.expirations++
		c.misses++
		return nil, false
	}

	c.lru.MoveToFront(entry.element)
	entry.cached.Hits++
	c.hits++
	return entry.cached, true
}

// Put stores a decision keyed by its recommendation-class TTL.
func (c *MemoryCache) Put(ctx context.Context, key string, decision *core.Decision, html string) {
	now := c.now()
	cached := &core.CachedDecision{
		Decision:   decision,
		HTML:       html,
		InsertedAt: now,
		ExpiresAt:  now.Add(c.ttls.TTLFor(decision.Recommendation)),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.cached = cached
		c.lru.MoveToFront(existing.element)
		return
	}

	for c.maxSize > 0 && len(c.entries) >= c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*memoryEntry))
		c.evictions++
	}

	entry := &memoryEntry{key: key, cached: cached}
	entry.element = c.lru.PushFront(entry)
	c.entries[key] = entry
}

// Invalidate removes a specific entry.
func (c *MemoryCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		c.removeLocked(entry)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := 0
	for _, entry := range c.entries {
		if now.After(entry.cached.ExpiresAt) {
			c.removeLocked(entry)
			expired++
		}
	}
	c.expirations += int64(expired)
	if expired > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expired))
	}
	return nil
}

// Stats reports the administrative cache view.
func (c *MemoryCache) Stats(ctx context.Context) core.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	byClass := make(map[core.Recommendation]int)
	for _, entry := range c.entries {
		byClass[entry.cached.Decision.Recommendation]++
	}
	return core.CacheStats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		ByClass:     byClass,
	}
}

func (c *MemoryCache) removeLocked(entry *memoryEntry) {
	c.lru.Remove(entry.element)
	delete(c.entries, entry.key)
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}

// SetClock overrides the cache's time source. Tests only.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
