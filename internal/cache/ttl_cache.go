package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/lexorahq/lexora/internal/clock"
)

type ttlEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// TTLCache is a bounded in-process cache. Entries expire after a fixed TTL
// and the oldest entry is evicted when the cache is full, so memory stays
// proportional to maxSize regardless of traffic.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
	ttl     time.Duration
	clock   clock.Clock
}

func NewTTLCache(maxSize int, ttl time.Duration, clk clock.Clock) *TTLCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &TTLCache{
		entries: make(map[string]*list.Element, maxSize),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		clock:   clk,
	}
}

func (c *TTLCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	entry := el.Value.(*ttlEntry)
	if c.ttl > 0 && c.clock.Now().After(entry.expiresAt) {
		c.remove(el)
		return "", false
	}
	return entry.value, true
}

func (c *TTLCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*ttlEntry)
		entry.value = value
		entry.expiresAt = c.clock.Now().Add(c.ttl)
		c.order.MoveToBack(el)
		return
	}

	for c.order.Len() >= c.maxSize {
		c.remove(c.order.Front())
	}
	el := c.order.PushBack(&ttlEntry{
		key:       key,
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
	c.entries[key] = el
}

func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *TTLCache) remove(el *list.Element) {
	entry := el.Value.(*ttlEntry)
	c.order.Remove(el)
	delete(c.entries, entry.key)
}
