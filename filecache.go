package disklru

import (
	"context"
	"fmt"

	"github.com/lucasew/disklru/internal/errutil"
	"github.com/lucasew/disklru/internal/fsutil"
)

// FileInfo describes one entry evicted by InsertNewFile: its key, the path
// it pointed at and the number of bytes reclaimed by deleting that path.
// Size is zero when the backing file was already gone and only the stale
// store entry was removed.
type FileInfo[K comparable] struct {
	Key  K
	Path string
	Size int64
}

// FileCache is a Cache whose values are paths to files on disk.
//
// On top of the plain cache surface it owns the destructive side of the
// system: deleting backing files and evicting entries to make room for new
// ones.
type FileCache[K comparable] struct {
	*Cache[K, string]
}

// NewFileCache wraps a store whose values are file paths.
func NewFileCache[K comparable](store Store[K, string]) *FileCache[K] {
	return &FileCache[K]{Cache: New(store)}
}

// RemoveFile deletes the backing file of the entry under key and reports its
// size. The entry itself stays in the store; removing it is the caller's
// decision. A missing key or an already-deleted file reports (0, false, nil).
func (c *FileCache[K]) RemoveFile(ctx context.Context, key K) (int64, bool, error) {
	path, ok, err := c.Peek(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	return fsutil.RemoveFileSize(path)
}

// RemoveLRUFile deletes the backing file of the least-recently-used entry
// and reports its size. Like RemoveFile it never mutates the store mapping.
func (c *FileCache[K]) RemoveLRUFile(ctx context.Context) (int64, bool, error) {
	path, ok, err := c.LeastRecentlyUsedValue(ctx)
	if err != nil || !ok {
		return 0, false, err
	}
	return fsutil.RemoveFileSize(path)
}

// InsertNewFile places a new file into the cache, evicting least-recently-
// used entries until it fits.
//
// exceed is the signed number of bytes the new file overshoots the remaining
// capacity by, as computed by the caller: newSize - availableCapacity,
// without subtracting any entry being replaced. A negative exceed means the
// file already fits and nothing is evicted.
//
// If key is already present its backing file is reclaimed first, best
// effort, and the freed bytes are credited against exceed; the stale mapping
// itself stays in place until the final commit overwrites it. The eviction
// loop then deletes LRU files, popping each processed entry from the store,
// until exceed goes negative. Entries whose file is already gone are popped
// too, so the loop always consumes the store even when it frees no bytes.
//
// The returned slice lists evicted entries in eviction (LRU) order. It is
// meaningful even when err != nil: evictions are committed one by one and
// are never rolled back. When the store drains before exceed is satisfied
// the error is ErrInsufficientCapacity and the new file is not inserted.
func (c *FileCache[K]) InsertNewFile(ctx context.Context, key K, path string, exceed int64) ([]FileInfo[K], error) {
	// Conflict resolution: reclaim the old file under this key, if any.
	// Failure to delete it is tolerated here; clearing the stale file is
	// not what the caller asked for.
	if old, ok, err := c.Access(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to look up conflicting entry: %w", err)
	} else if ok {
		size, removed, err := fsutil.RemoveFileSize(old)
		if err != nil {
			errutil.LogMsg(err, "Failed to reclaim conflicting file", "path", old)
		} else if removed {
			exceed -= size
		}
	}

	var evicted []FileInfo[K]
	for exceed >= 0 {
		victim, victimPath, ok, err := c.LeastRecentlyUsedPair(ctx)
		if err != nil {
			return evicted, fmt.Errorf("failed to query LRU entry: %w", err)
		}
		if !ok {
			return evicted, ErrInsufficientCapacity
		}

		size, _, err := fsutil.RemoveFileSize(victimPath)
		if err != nil {
			return evicted, fmt.Errorf("failed to reclaim %s: %w", victimPath, err)
		}

		// Pop even when nothing was reclaimed, or a stale entry would
		// stall the loop forever.
		if _, _, err := c.Pop(ctx, victim); err != nil {
			return evicted, fmt.Errorf("failed to pop evicted entry: %w", err)
		}

		exceed -= size
		evicted = append(evicted, FileInfo[K]{Key: victim, Path: victimPath, Size: size})
	}

	if _, _, err := c.Insert(ctx, key, path); err != nil {
		return evicted, fmt.Errorf("failed to insert new entry: %w", err)
	}
	return evicted, nil
}
