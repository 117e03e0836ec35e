package unified

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
)

// CachedService memoizes dataset fetches for identical requests. It sits
// outside the orchestrator so the core stays side-effect-free: wiring it is
// a deployment decision, not part of the acquisition semantics.
type CachedService struct {
	inner   DatasetFetcher
	cache   *ttlCache
	metrics *observability.Metrics
}

// NewCachedService decorates inner with an LRU+TTL cache keyed by the full
// request tuple.
func NewCachedService(inner DatasetFetcher, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedService {
	return &CachedService{
		inner:   inner,
		cache:   newTTLCache(maxEntries, ttl),
		metrics: metrics,
	}
}

// Fetch returns a cached dataset when the same request was answered within
// the TTL, otherwise delegates and caches the success. Errors are never
// cached.
func (c *CachedService) Fetch(ctx context.Context, req Request) (*domain.UnifiedDataset, error) {
	key := cacheKey(req)
	cached, result := c.cache.get(key)
	c.metrics.CacheLookups.WithLabelValues(result).Inc()
	if cached != nil {
		return cached, nil
	}

	ds, err := c.inner.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, ds)
	return ds, nil
}

func cacheKey(req Request) string {
	return strings.Join([]string{req.Variables, req.Location, req.Mode, req.StartDate, req.EndDate}, "|")
}

// ttlCache is a thread-safe LRU cache whose entries also expire after a
// fixed TTL. Expiry uses the domain clock so tests can advance time.
type ttlCache struct {
	maxEntries int
	ttl        time.Duration

	mu      sync.Mutex
	entries map[string]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used
}

type cacheEntry struct {
	key       string
	value     *domain.UnifiedDataset
	expiresAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

func newTTLCache(maxEntries int, ttl time.Duration) *ttlCache {
	return &ttlCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*cacheEntry),
	}
}

// get returns the cached value and one of "hit", "miss", or "expired".
func (c *ttlCache) get(key string) (*domain.UnifiedDataset, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, "miss"
	}
	if domain.Now().After(e.expiresAt) {
		c.remove(e)
		delete(c.entries, key)
		return nil, "expired"
	}
	c.moveToFront(e)
	return e.value, "hit"
}

func (c *ttlCache) put(key string, value *domain.UnifiedDataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = domain.Now().Add(c.ttl)
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: value, expiresAt: domain.Now().Add(c.ttl)}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *ttlCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *ttlCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ttlCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *ttlCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
