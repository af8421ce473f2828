package disklru

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PlaceFunc materializes the file for a missing key. It returns the path of
// the created file and the signed overflow amount to hand to InsertNewFile.
type PlaceFunc func(ctx context.Context) (path string, exceed int64, err error)

// SyncFileCache makes a FileCache safe for concurrent use from a single
// process. Every store operation runs under one mutex, and GetOrPlace
// deduplicates concurrent placements of the same key so the file is only
// materialized once.
//
// This does not lift the single-writer assumption of the cache directory:
// only one process may own the store and its files.
type SyncFileCache[K comparable] struct {
	mu    sync.Mutex
	cache *FileCache[K]
	g     singleflight.Group
}

// NewSyncFileCache wraps an existing FileCache. The wrapped cache must not
// be used directly afterwards.
func NewSyncFileCache[K comparable](cache *FileCache[K]) *SyncFileCache[K] {
	return &SyncFileCache[K]{cache: cache}
}

// Access looks up key, promoting it on a hit.
func (c *SyncFileCache[K]) Access(ctx context.Context, key K) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Access(ctx, key)
}

// Peek looks up key without altering the recency order.
func (c *SyncFileCache[K]) Peek(ctx context.Context, key K) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Peek(ctx, key)
}

// InsertNewFile runs FileCache.InsertNewFile under the cache lock.
func (c *SyncFileCache[K]) InsertNewFile(ctx context.Context, key K, path string, exceed int64) ([]FileInfo[K], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.InsertNewFile(ctx, key, path, exceed)
}

// GetOrPlace returns the path cached under key, materializing it with place
// on a miss. Concurrent callers for the same key share a single place call;
// the evicted slice is only meaningful for the caller whose place ran.
func (c *SyncFileCache[K]) GetOrPlace(ctx context.Context, key K, place PlaceFunc) (string, []FileInfo[K], error) {
	type result struct {
		path    string
		evicted []FileInfo[K]
	}

	v, err, _ := c.g.Do(fmt.Sprintf("%v", key), func() (interface{}, error) {
		// Double check under the flight: another caller may have placed
		// the key just before we were coalesced.
		if path, ok, err := c.Access(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return result{path: path}, nil
		}

		path, exceed, err := place(ctx)
		if err != nil {
			return nil, err
		}

		evicted, err := c.InsertNewFile(ctx, key, path, exceed)
		if err != nil {
			return nil, err
		}
		return result{path: path, evicted: evicted}, nil
	})
	if err != nil {
		return "", nil, err
	}

	res := v.(result)
	return res.path, res.evicted, nil
}
