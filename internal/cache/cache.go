// Package cache provides a bounded, time-expiring result store.
// Each tool owns its own Cache instance so keys never collide across
// tool families.
package cache

import (
	"container/list"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/netscan/internal/model"
)

// Cache is an LRU cache with per-entry TTL. Expired entries are
// removed lazily on read; the oldest entry is evicted once capacity
// is exceeded. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used

	now func() time.Time // overridable in tests
}

type entry struct {
	key       string
	value     model.DiagnosticResult
	expiresAt time.Time
}

// New creates a cache bounded to capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 128
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached result for key, or false on a miss. An
// expired entry behaves as a miss and is removed.
func (c *Cache) Get(key string) (model.DiagnosticResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return model.DiagnosticResult{}, false
	}

	ent := el.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return model.DiagnosticResult{}, false
	}

	c.order.MoveToFront(el)
	return ent.value, true
}

// Set stores value under key with the given TTL, evicting the least
// recently used entry if the cache is full.
func (c *Cache) Set(key string, value model.DiagnosticResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{key: key, value: value, expiresAt: expires})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
}

// Len returns the number of live entries, counting not-yet-reaped
// expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Key builds a cache key from a target and every parameter that
// affects the result. The port list is sorted so equivalent requests
// share an entry.
func Key(target string, ports []int) string {
	if len(ports) == 0 {
		return target
	}
	sorted := make([]int, len(ports))
	copy(sorted, ports)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return target + ":" + strings.Join(parts, ",")
}
