package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucasew/disklru"
	"github.com/lucasew/disklru/internal/errutil"
	"github.com/lucasew/disklru/store"
	"github.com/spf13/viper"
)

// openCache opens the store configured via flags and wraps it in a
// FileCache. The returned close function must be called when done.
func openCache() (*disklru.FileCache[string], func(), error) {
	storePath := viper.GetString("store")
	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	st, err := store.Open[string, string](storePath)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		errutil.LogMsg(st.Close(), "Failed to close store")
	}
	return disklru.NewFileCache[string](st), closeFn, nil
}

// usedBytes sums the on-disk sizes of every cached file. Entries whose file
// is gone count as zero; they will be popped during the next eviction pass.
func usedBytes(ctx context.Context, cache *disklru.FileCache[string]) (int64, error) {
	var used int64
	err := cache.Walk(ctx, func(_ string, path string) error {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		used += info.Size()
		return nil
	})
	return used, err
}
