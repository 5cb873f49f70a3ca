// Package cache keeps computed conditions for a while so repeated lookups of
// the same crag do not hit the weather provider again.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/cragcast/pkg/metrics"
)

// Defaults for a new cache.
const (
	DefaultTTL     = time.Hour
	DefaultMaxSize = 10_000
)

// Cache is a TTL-bounded key/value store.
type Cache[V any] interface {
	// Get returns the value for key if present and not expired.
	Get(ctx context.Context, key string) (V, bool)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value V)
	// Delete drops key.
	Delete(ctx context.Context, key string)
	// Purge drops every expired entry and returns how many were dropped.
	Purge(ctx context.Context) int

	Size() int64
}

// Key builds the cache key of a conditions lookup. Coordinates are rounded
// to four decimals (about 11 m) so nearby requests share an entry.
func Key(lat, lon float64, timezone, rockType string, days int, night bool) string {
	return fmt.Sprintf("%s,%s|%s|%s|%d|%t",
		strconv.FormatFloat(lat, 'f', 4, 64),
		strconv.FormatFloat(lon, 'f', 4, 64),
		timezone, rockType, days, night)
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
	prev    *entry[V]
	next    *entry[V]
}

// lruCache evicts the least recently used entry once maxSize is reached.
// A maxSize of zero or less leaves it unbounded.
type lruCache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	head    *entry[V] // most recently used
	tail    *entry[V] // least recently used
	maxSize int
	ttl     time.Duration
	clock   clockwork.Clock
	size    atomic.Int64
}

// New creates an LRU cache with configuration options.
func New[V any](opts ...Option) Cache[V] {
	cfg := config{maxSize: DefaultMaxSize, ttl: DefaultTTL, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &lruCache[V]{
		entries: make(map[string]*entry[V]),
		maxSize: cfg.maxSize,
		ttl:     cfg.ttl,
		clock:   cfg.clock,
	}
}

func (c *lruCache[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		metrics.RecordCacheMiss()
		return zero, false
	}
	if !c.clock.Now().Before(e.expires) {
		c.drop(e)
		metrics.RecordCacheMiss()
		return zero, false
	}
	c.moveToFront(e)
	metrics.RecordCacheHit()
	return e.value, true
}

func (c *lruCache[V]) Put(_ context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value, e.expires = value, expires
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)
	c.size.Add(1)

	if c.maxSize > 0 && len(c.entries) > c.maxSize {
		c.drop(c.tail)
		metrics.RecordCacheEviction()
	}
	metrics.UpdateCacheEntries(len(c.entries))
}

func (c *lruCache[V]) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.drop(e)
	}
}

func (c *lruCache[V]) Purge(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	n := 0
	for e := c.tail; e != nil; {
		prev := e.prev
		if !now.Before(e.expires) {
			c.drop(e)
			n++
		}
		e = prev
	}
	return n
}

func (c *lruCache[V]) Size() int64 {
	return c.size.Load()
}

// drop removes e from the map and the list. Must be called with c.mu held.
func (c *lruCache[V]) drop(e *entry[V]) {
	if e == nil {
		return
	}
	delete(c.entries, e.key)
	c.remove(e)
	c.size.Add(-1)
	metrics.UpdateCacheEntries(len(c.entries))
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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
	e.prev, e.next = nil, nil
}
