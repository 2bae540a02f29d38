// Package catalog maintains an in-memory snapshot of the remote exercise
// catalog. The snapshot is materialized by walking the API's paginated
// listing and is replaced wholesale on each successful refresh; readers never
// observe a partially fetched catalog.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fitcatalog/exercisedb-mcp/internal/exercisedb"
)

// DefaultTTL is how long a snapshot is considered fresh after a successful
// refresh. A stale snapshot stays readable; staleness only triggers a new
// fetch on the next Initialize call.
const DefaultTTL = 24 * time.Hour

// Stats describes the current snapshot without exposing its items.
type Stats struct {
	Count         int
	Ready         bool
	LastRefreshed *time.Time
	Age           time.Duration
}

// Cache holds the exercise catalog snapshot for one server instance.
// It is safe for concurrent use: reads take a shared lock and overlapping
// refreshes are collapsed into a single fetch sequence.
type Cache struct {
	mu            sync.RWMutex
	items         []exercisedb.Exercise
	lastRefreshed time.Time
	ready         bool

	ttl       time.Duration
	pageDelay time.Duration
	group     singleflight.Group
	logger    *slog.Logger
	now       func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides the snapshot freshness window.
// Defaults to DefaultTTL (24h) if not specified.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithPageDelay overrides the inter-page throttle used during a refresh.
// Zero disables the throttle entirely.
func WithPageDelay(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.pageDelay = d
	}
}

// NewCache creates an empty, not-ready cache.
func NewCache(logger *slog.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		ttl:       DefaultTTL,
		pageDelay: defaultPageDelay,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize ensures the cache holds a usable snapshot. If the snapshot is
// ready, within its TTL, and force is false, this is a no-op that performs no
// network access. Otherwise the full catalog is re-fetched page by page and
// committed atomically on success. Overlapping calls join the same in-flight
// refresh rather than racing. On failure the previous snapshot (if any) is
// preserved and an *InitializationError carrying the cause is returned.
func (c *Cache) Initialize(ctx context.Context, fetcher exercisedb.PageFetcher, force bool) error {
	if !force && c.fresh() {
		return nil
	}

	_, err, _ := c.group.Do("refresh", func() (any, error) {
		// A caller queued behind a just-completed refresh must not
		// trigger a second fetch sequence.
		if !force && c.fresh() {
			return nil, nil
		}
		return nil, c.refresh(ctx, fetcher)
	})
	return err
}

// refresh walks the full paginated listing into a temporary buffer and
// replaces the snapshot only once every page has been fetched.
func (c *Cache) refresh(ctx context.Context, fetcher exercisedb.PageFetcher) error {
	start := time.Now()
	p := newPager(fetcher, defaultPageSize, c.pageDelay)

	var items []exercisedb.Exercise
	pages := 0
	for {
		page, err := p.next(ctx)
		if err != nil {
			c.logger.Error("Exercise catalog refresh failed", "page", p.page, "error", err)
			return &InitializationError{Page: p.page, Err: err}
		}
		if page == nil {
			break
		}
		items = append(items, page.Exercises...)
		pages++
	}

	c.mu.Lock()
	c.items = items
	c.lastRefreshed = c.now()
	c.ready = true
	c.mu.Unlock()

	c.logger.Info("Exercise catalog refreshed", "exercises", len(items), "pages", pages, "elapsed", time.Since(start))
	return nil
}

// Items returns a copy of the snapshot's exercises in catalog order.
func (c *Cache) Items() ([]exercisedb.Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready {
		return nil, ErrNotInitialized
	}

	items := make([]exercisedb.Exercise, len(c.items))
	copy(items, c.items)
	return items, nil
}

// Stats reports the snapshot's size and freshness. Pure read, no side effects.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Count: len(c.items),
		Ready: c.ready,
	}
	if c.ready {
		t := c.lastRefreshed
		s.LastRefreshed = &t
		s.Age = c.now().Sub(t)
	}
	return s
}

// Clear unconditionally resets the cache to its empty, not-ready state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.lastRefreshed = time.Time{}
	c.ready = false
}

// fresh reports whether the snapshot is ready and within its TTL.
func (c *Cache) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready && c.now().Sub(c.lastRefreshed) <= c.ttl
}
