package cache

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time
type Clock func() time.Time

type entry[V any] struct {
	value      V
	insertedAt time.Time
	seq        uint64
}

// Cache is a TTL map safe for concurrent use. Expired entries are swept on every read.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	seq     uint64
	entries map[K]entry[V]
}

// Option configures a Cache
type Option func(*settings)

type settings struct {
	now Clock
}

// WithClock replaces time.Now
func WithClock(now Clock) Option {
	return func(s *settings) { s.now = now }
}

// New creates a cache; a ttl of zero or less keeps entries until deleted
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[K, V]{
		ttl:     ttl,
		now:     s.now,
		entries: make(map[K]entry[V]),
	}
}

// Set stores v under k and restarts its lifetime
func (c *Cache[K, V]) Set(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	seq := c.seq
	if old, ok := c.entries[k]; ok {
		seq = old.seq
	}
	c.entries[k] = entry[V]{value: v, insertedAt: c.now(), seq: seq}
}

// Get returns the live value for k
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	e, ok := c.entries[k]
	return e.value, ok
}

// InsertedAt returns when k was last set
func (c *Cache[K, V]) InsertedAt(k K) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	e, ok := c.entries[k]
	return e.insertedAt, ok
}

// Update replaces the live value for k with fn's result while holding the
// lock, so a concurrent Delete either happens before (ok is false and fn is
// not called) or after. A non-nil error from fn leaves the entry as it was.
func (c *Cache[K, V]) Update(k K, fn func(old V) (V, error)) (v V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	e, ok := c.entries[k]
	if !ok {
		return v, false, nil
	}
	if v, err = fn(e.value); err != nil {
		return v, true, err
	}
	c.entries[k] = entry[V]{value: v, insertedAt: c.now(), seq: e.seq}
	return v, true, nil
}

// Delete removes k and reports whether a live entry was present
func (c *Cache[K, V]) Delete(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	_, ok := c.entries[k]
	delete(c.entries, k)
	return ok
}

// Len counts live entries
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	return len(c.entries)
}

// Values returns live values in first-insertion order
func (c *Cache[K, V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()

	live := make([]entry[V], 0, len(c.entries))
	for _, e := range c.entries {
		live = append(live, e)
	}
	sort.Slice(live, func(i, j int) bool { return live[i].seq < live[j].seq })

	out := make([]V, len(live))
	for i, e := range live {
		out[i] = e.value
	}
	return out
}

// Sweep drops expired entries and returns how many went
func (c *Cache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweep()
}

func (c *Cache[K, V]) sweep() int {
	if c.ttl <= 0 {
		return 0
	}
	cutoff := c.now().Add(-c.ttl)
	removed := 0
	for k, e := range c.entries {
		if !e.insertedAt.After(cutoff) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
