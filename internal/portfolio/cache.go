package portfolio

import (
	"sync"
	"time"

	"github.com/etflens/etflens/internal/domain"
)

type catalogEntry struct {
	etfs      []domain.ETF
	expiresAt time.Time
}

// catalogCache holds the last catalog read for a fixed TTL. A zero TTL disables it.
type catalogCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	entry *catalogEntry
}

func newCatalogCache(ttl time.Duration, now func() time.Time) *catalogCache {
	return &catalogCache{ttl: ttl, now: now}
}

func (c *catalogCache) get() ([]domain.ETF, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || !c.now().Before(c.entry.expiresAt) {
		return nil, false
	}
	return c.entry.etfs, true
}

func (c *catalogCache) set(etfs []domain.ETF) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &catalogEntry{
		etfs:      etfs,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *catalogCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
