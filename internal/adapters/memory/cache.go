// Package memory is the in-process result cache.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"counsel_locator/internal/adapters/observability"
	"counsel_locator/internal/domain"
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultMaxSize       = 1000
	DefaultSweepInterval = time.Hour
)

type Options struct {
	TTL     time.Duration // default 24h
	MaxSize int           // default 1000
	// SweepInterval is the period of the background expiry sweep. Zero means
	// hourly, negative disables the sweep.
	SweepInterval time.Duration
	// Precision is the number of decimals kept from lat/lng in keys.
	// Zero means domain.DefaultKeyPrecision.
	Precision int
	Now       func() time.Time
}

type entry struct {
	data      []domain.Attorney
	timestamp time.Time
	expiresAt time.Time
	seq       uint64 // write order; breaks timestamp ties
}

// Cache is safe for concurrent use. Writers to the same key race; the last
// write wins.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]entry
	ttl       time.Duration
	maxSize   int
	precision int
	now       func() time.Time
	seq       uint64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Precision <= 0 {
		opts.Precision = domain.DefaultKeyPrecision
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	c := &Cache{
		entries:   make(map[string]entry),
		ttl:       opts.TTL,
		maxSize:   opts.MaxSize,
		precision: opts.Precision,
		now:       opts.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go c.sweepLoop(opts.SweepInterval)
	} else {
		close(c.done)
	}
	return c
}

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Cache) key(lat, lng, radiusKm float64) string {
	return domain.CacheKey(lat, lng, radiusKm, c.precision)
}

// Get returns a copy of the cached list. Expired entries are removed.
func (c *Cache) Get(_ context.Context, lat, lng, radiusKm float64) ([]domain.Attorney, bool) {
	k := c.key(lat, lng, radiusKm)
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		observability.ObserveCache("memory", "miss")
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		observability.ObserveCache("memory", "expired")
		return nil, false
	}
	observability.ObserveCache("memory", "hit")
	return domain.CloneAll(e.data), true
}

// Set stores data under the quantized key. ttl <= 0 uses the cache default.
func (c *Cache) Set(_ context.Context, lat, lng, radiusKm float64, data []domain.Attorney, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	k := c.key(lat, lng, radiusKm)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.entries[k] = entry{data: domain.CloneAll(data), timestamp: now, expiresAt: now.Add(ttl), seq: c.seq}
	observability.ObserveCache("memory", "set")
	c.evictLocked()
}

func (c *Cache) Has(_ context.Context, lat, lng, radiusKm float64) bool {
	k := c.key(lat, lng, radiusKm)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		return false
	}
	return true
}

func (c *Cache) Delete(_ context.Context, lat, lng, radiusKm float64) {
	k := c.key(lat, lng, radiusKm)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, k)
	observability.ObserveCache("memory", "del")
}

func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops every expired entry and reports how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// evictLocked removes the oldest entries until the cache is within maxSize.
func (c *Cache) evictLocked() {
	over := len(c.entries) - c.maxSize
	if over <= 0 {
		return
	}
	type aged struct {
		key string
		ts  time.Time
		seq uint64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.timestamp, e.seq})
	}
	slices.SortFunc(all, func(a, b aged) int {
		if n := a.ts.Compare(b.ts); n != 0 {
			return n
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, a := range all[:over] {
		delete(c.entries, a.key)
		observability.ObserveCache("memory", "evict")
	}
}

func (c *Cache) sweepLoop(every time.Duration) {
	defer close(c.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if n := c.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("cache sweep")
			}
		}
	}
}
