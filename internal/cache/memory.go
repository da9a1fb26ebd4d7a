package cache

import (
	"context"
	"sync"
	"time"
)

// TTLCache is a generic in-memory map whose entries expire after a fixed TTL
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]ttlItem[V]
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type ttlItem[V any] struct {
	value      V
	expiration time.Time
}

// NewTTLCache creates a cache and starts its janitor. A zero ttl keeps
// entries until deleted; a zero interval disables the janitor.
func NewTTLCache[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		items: make(map[K]ttlItem[V]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}

	return c
}

// Get returns the live value stored under key
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.expired(item) {
		var zero V
		return zero, false
	}

	return item.value, true
}

// Set stores value under key, replacing any previous entry
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := ttlItem[V]{value: value}
	if c.ttl > 0 {
		item.expiration = c.now().Add(c.ttl)
	}
	c.items[key] = item
}

// Delete removes keys; absent keys are ignored
func (c *TTLCache[K, V]) Delete(keys ...K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}
}

// Len counts stored entries, including expired ones not yet swept
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop terminates the janitor. It is safe to call more than once.
func (c *TTLCache[K, V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTLCache[K, V]) expired(item ttlItem[V]) bool {
	return !item.expiration.IsZero() && c.now().After(item.expiration)
}

func (c *TTLCache[K, V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *TTLCache[K, V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.items {
		if c.expired(item) {
			delete(c.items, key)
		}
	}
}

// MemoryStore is the in-process Store backend
type MemoryStore struct {
	cache *TTLCache[string, []byte]
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: NewTTLCache[string, []byte](ttl, cleanupInterval)}
}

// Get returns a copy of the stored bytes or ErrCacheMiss
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.Set(key, append([]byte(nil), value...))
	return nil
}

// Delete removes keys
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.Delete(keys...)
	return nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close stops the janitor
func (s *MemoryStore) Close() error {
	s.cache.Stop()
	return nil
}
