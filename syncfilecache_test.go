package disklru_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/lucasew/disklru"
	"golang.org/x/sync/errgroup"
)

func TestSyncFileCache_GetOrPlace(t *testing.T) {
	cache := disklru.NewSyncFileCache(newFileCache(t))
	ctx := context.Background()
	dir := t.TempDir()

	var placed atomic.Int64
	place := func(ctx context.Context) (string, int64, error) {
		placed.Add(1)
		path := filepath.Join(dir, "artifact")
		if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
			return "", 0, err
		}
		return path, -1000, nil
	}

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			path, _, err := cache.GetOrPlace(ctx, "k", place)
			if err != nil {
				return err
			}
			if path != filepath.Join(dir, "artifact") {
				t.Errorf("GetOrPlace returned %q", path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("GetOrPlace failed: %v", err)
	}

	if n := placed.Load(); n != 1 {
		t.Errorf("place ran %d times; want 1", n)
	}

	// A later call is a plain hit.
	path, ok, err := cache.Access(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Access(k) = %v, %v", ok, err)
	}
	if path == "" {
		t.Error("Access returned empty path")
	}
	if _, _, err := cache.GetOrPlace(ctx, "k", place); err != nil {
		t.Fatalf("GetOrPlace(hit) failed: %v", err)
	}
	if n := placed.Load(); n != 1 {
		t.Errorf("place ran %d times after hit; want 1", n)
	}
}

func TestSyncFileCache_InsertNewFile(t *testing.T) {
	cache := disklru.NewSyncFileCache(newFileCache(t))
	ctx := context.Background()
	dir := t.TempDir()

	old := createFile(t, dir, "old", 100)
	if _, err := cache.InsertNewFile(ctx, "old", old, -1000); err != nil {
		t.Fatalf("InsertNewFile(old) failed: %v", err)
	}

	next := createFile(t, dir, "next", 100)
	evicted, err := cache.InsertNewFile(ctx, "next", next, 50)
	if err != nil {
		t.Fatalf("InsertNewFile(next) failed: %v", err)
	}
	if len(evicted) != 1 || evicted[0].Key != "old" {
		t.Errorf("evicted = %v; want old", evicted)
	}
}
