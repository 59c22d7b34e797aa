// Package foldercache memoizes folder listings per path for a fixed time
// window so reopening a folder menu does not touch the disk again.
package foldercache

import (
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/atomicstack/quicklaunch/internal/listing"
	"github.com/atomicstack/quicklaunch/internal/logging/events"
	"github.com/atomicstack/quicklaunch/internal/metrics"
)

// DefaultTTL is how long a listing is served without rescanning.
const DefaultTTL = 30 * time.Second

const shardCount = 16

// ListFunc produces a fresh listing of a folder.
type ListFunc func(path string) []listing.Entry

// Record is a published listing. Records are replaced, never mutated.
type Record struct {
	CachedAt time.Time
	Entries  []listing.Entry
}

type shard struct {
	mu      sync.RWMutex
	records map[string]Record
}

// Cache is safe for concurrent use by scan goroutines and the UI loop.
type Cache struct {
	list    ListFunc
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics

	shards [shardCount]*shard
	group  singleflight.Group
}

// Option customises a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics counts scans and hits.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New builds a cache that fills misses with list.
func New(list ListFunc, opts ...Option) *Cache {
	c := &Cache{
		list: list,
		ttl:  DefaultTTL,
		now:  time.Now,
	}
	for i := range c.shards {
		c.shards[i] = &shard{records: make(map[string]Record)}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

func cacheKey(path string) string {
	return strings.ToLower(path)
}

func (c *Cache) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)%shardCount]
}

// Lookup returns the current record for path regardless of its age.
func (c *Cache) Lookup(path string) (Record, bool) {
	key := cacheKey(path)
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Entries returns the listing of path, rescanning only when no record exists
// or the record is older than the TTL. Concurrent refreshes of one path share
// a single scan.
func (c *Cache) Entries(path string) []listing.Entry {
	if rec, ok := c.Lookup(path); ok {
		age := c.now().Sub(rec.CachedAt)
		if age <= c.ttl {
			c.metrics.FolderCacheHit()
			events.Folder.CacheHit(path, age)
			return rec.Entries
		}
	}

	key := cacheKey(path)
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		entries := c.list(path)
		c.metrics.FolderScanned()
		rec := Record{CachedAt: c.now(), Entries: entries}
		s := c.shardFor(key)
		s.mu.Lock()
		s.records[key] = rec
		s.mu.Unlock()
		events.Folder.CacheRefresh(path, len(entries))
		return entries, nil
	})
	return v.([]listing.Entry)
}

// Len reports the number of cached folders.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.records)
		s.mu.RUnlock()
	}
	return n
}

// Clear drops every record and returns how many were held.
func (c *Cache) Clear() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += len(s.records)
		s.records = make(map[string]Record)
		s.mu.Unlock()
	}
	return n
}
