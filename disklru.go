// Package disklru provides a size-aware eviction layer for caches whose
// entries reference files on disk.
//
// The heavy lifting of durable storage and recency ordering is delegated to a
// Store; this package adds the policy that makes such a store usable as a
// bounded file cache: evict least-recently-used entries, delete their backing
// files, and keep going until a new file fits.
package disklru

import "context"

// Store is the ordered key-value collaborator the cache drives.
//
// Implementations must keep a total recency order over the keys they hold.
// Absence of a key (or of any entry at all) is reported as ok == false, never
// as an error. The store subpackage provides a SQLite-backed implementation.
type Store[K comparable, V any] interface {
	// Access looks up a key and promotes it to most-recently-used.
	Access(ctx context.Context, key K) (V, bool, error)

	// Peek looks up a key without touching the recency order.
	Peek(ctx context.Context, key K) (V, bool, error)

	// Insert adds or overwrites an entry, making it the most-recently-used
	// one. It returns the previous value if the key was already present.
	Insert(ctx context.Context, key K, value V) (V, bool, error)

	// Pop removes an entry and returns its value.
	Pop(ctx context.Context, key K) (V, bool, error)

	// PopLRU removes and returns the least-recently-used pair.
	PopLRU(ctx context.Context) (K, V, bool, error)

	// LRU and MRU report the extremal keys without touching the order.
	LRU(ctx context.Context) (K, bool, error)
	MRU(ctx context.Context) (K, bool, error)

	// LRUPair and MRUPair report the extremal pairs without touching the
	// order.
	LRUPair(ctx context.Context) (K, V, bool, error)
	MRUPair(ctx context.Context) (K, V, bool, error)

	// Len reports the number of entries.
	Len(ctx context.Context) (int, error)

	// Walk visits every entry from least- to most-recently-used without
	// touching the order. Returning an error from fn stops the walk.
	Walk(ctx context.Context, fn func(key K, value V) error) error
}

// Cache wraps a Store and forwards its operations unchanged.
//
// It exists so that FileCache can layer eviction semantics on top while the
// plain lookup surface keeps the exact promote/don't-promote contracts of the
// underlying store.
type Cache[K comparable, V any] struct {
	store Store[K, V]
}

// New wraps an already-opened store.
func New[K comparable, V any](store Store[K, V]) *Cache[K, V] {
	return &Cache[K, V]{store: store}
}

// Access looks up key, promoting it to most-recently-used on a hit.
func (c *Cache[K, V]) Access(ctx context.Context, key K) (V, bool, error) {
	return c.store.Access(ctx, key)
}

// Peek looks up key without altering the recency order.
func (c *Cache[K, V]) Peek(ctx context.Context, key K) (V, bool, error) {
	return c.store.Peek(ctx, key)
}

// Insert adds or overwrites an entry. The previous value, if any, is
// returned.
func (c *Cache[K, V]) Insert(ctx context.Context, key K, value V) (V, bool, error) {
	return c.store.Insert(ctx, key, value)
}

// Pop removes an entry. A missing key is not an error.
func (c *Cache[K, V]) Pop(ctx context.Context, key K) (V, bool, error) {
	return c.store.Pop(ctx, key)
}

// PopLRU removes and returns the least-recently-used pair. An empty cache is
// not an error.
func (c *Cache[K, V]) PopLRU(ctx context.Context) (K, V, bool, error) {
	return c.store.PopLRU(ctx)
}

// MostRecentlyUsed reports the most-recently-used key without promoting it.
func (c *Cache[K, V]) MostRecentlyUsed(ctx context.Context) (K, bool, error) {
	return c.store.MRU(ctx)
}

// LeastRecentlyUsed reports the least-recently-used key without promoting it.
func (c *Cache[K, V]) LeastRecentlyUsed(ctx context.Context) (K, bool, error) {
	return c.store.LRU(ctx)
}

// MostRecentlyUsedValue reports the most-recently-used value via peek
// semantics.
func (c *Cache[K, V]) MostRecentlyUsedValue(ctx context.Context) (V, bool, error) {
	_, v, ok, err := c.store.MRUPair(ctx)
	return v, ok, err
}

// LeastRecentlyUsedValue reports the least-recently-used value via peek
// semantics.
func (c *Cache[K, V]) LeastRecentlyUsedValue(ctx context.Context) (V, bool, error) {
	_, v, ok, err := c.store.LRUPair(ctx)
	return v, ok, err
}

// MostRecentlyUsedPair reports the most-recently-used pair via peek
// semantics.
func (c *Cache[K, V]) MostRecentlyUsedPair(ctx context.Context) (K, V, bool, error) {
	return c.store.MRUPair(ctx)
}

// LeastRecentlyUsedPair reports the least-recently-used pair via peek
// semantics.
func (c *Cache[K, V]) LeastRecentlyUsedPair(ctx context.Context) (K, V, bool, error) {
	return c.store.LRUPair(ctx)
}

// Len reports the number of entries.
func (c *Cache[K, V]) Len(ctx context.Context) (int, error) {
	return c.store.Len(ctx)
}

// Walk visits every entry from least- to most-recently-used.
func (c *Cache[K, V]) Walk(ctx context.Context, fn func(key K, value V) error) error {
	return c.store.Walk(ctx, fn)
}
