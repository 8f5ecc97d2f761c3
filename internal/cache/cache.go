// Package cache is an in-memory TTL cache that keeps repeated queries off
// the switches. Expiry is checked lazily on read.
package cache

import (
	"sync"
	"time"
)

const (
	portsPrefix  = "ports:"
	statusPrefix = "status:"
)

// PortsKey is the key of the port list of a switch.
func PortsKey(host string) string { return portsPrefix + host }

// StatusKey is the key of the reachability summary of a switch.
func StatusKey(host string) string { return statusPrefix + host }

// HostKeys returns every key held for a switch.
func HostKeys(host string) []string {
	return []string{PortsKey(host), StatusKey(host)}
}

type entry struct {
	value  any
	stored time.Time
}

type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

type Option func(*Cache)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window shared by all keys.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the value and its store time if it is younger than the TTL.
func (c *Cache) Get(key string) (any, time.Time, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.fresh(e, c.now()) {
		return nil, time.Time{}, false
	}
	return e.value, e.stored, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, stored: c.now()}
	c.mu.Unlock()
}

// Invalidate removes the given keys whatever their age.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// Len counts fresh entries.
func (c *Cache) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if c.fresh(e, now) {
			n++
		}
	}
	return n
}

// Purge drops expired entries and returns how many were removed. Reads never
// depend on it.
func (c *Cache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !c.fresh(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) fresh(e entry, now time.Time) bool {
	return now.Sub(e.stored) < c.ttl
}
