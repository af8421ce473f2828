package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lucasew/disklru"
	"github.com/lucasew/disklru/internal/errutil"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Copy a file into the cache, evicting older files to make room",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src := args[0]
		cacheDir := viper.GetString("cache-dir")
		capacity := viper.GetInt64("capacity")

		cache, closeCache, err := openCache()
		if err != nil {
			errutil.ReportError(err, "Failed to open cache")
			os.Exit(1)
		}
		defer closeCache()

		key, path, size, err := copyIntoCache(src, cacheDir)
		if err != nil {
			errutil.ReportError(err, "Failed to copy file into cache", "file", src)
			os.Exit(1)
		}

		used, err := usedBytes(cmd.Context(), cache)
		if err != nil {
			errutil.ReportError(err, "Failed to measure cache usage")
			os.Exit(1)
		}

		exceed := size - (capacity - used)
		evicted, err := cache.InsertNewFile(cmd.Context(), key, path, exceed)
		for _, ev := range evicted {
			fmt.Printf("evicted %s (%d bytes)\n", ev.Key, ev.Size)
		}
		if err != nil {
			if errors.Is(err, disklru.ErrInsufficientCapacity) {
				errutil.LogMsg(os.Remove(path), "Failed to remove file that did not fit", "path", path)
			}
			errutil.ReportError(err, "Failed to place file", "key", key)
			os.Exit(1)
		}

		fmt.Println(key)
	},
}

// copyIntoCache streams src into {cacheDir}/sha256/{hash}, hashing while
// copying, and returns the content key, the final path and the size.
func copyIntoCache(src, cacheDir string) (key, path string, size int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer errutil.Close(in, "Failed to close source file")

	info, err := in.Stat()
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to stat source file: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(cacheDir, "sha256"), 0755); err != nil {
		return "", "", 0, fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(cacheDir, "add-*")
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	bar := progressbar.NewOptions64(
		info.Size(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("copying"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprint(os.Stderr, "\n"); err != nil {
				errutil.LogMsg(err, "Failed to print newline to stderr")
			}
		}),
	)

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher, bar), in)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to copy into cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	hash := hex.EncodeToString(hasher.Sum(nil))
	key = "sha256/" + hash
	path = filepath.Join(cacheDir, "sha256", hash)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", "", 0, fmt.Errorf("failed to rename into place: %w", err)
	}
	return key, path, written, nil
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().Int64("capacity", 1024*1024*1024, "Total cache capacity in bytes (default 1GB)")
	if err := viper.BindPFlag("capacity", addCmd.Flags().Lookup("capacity")); err != nil {
		errutil.ReportError(err, "Failed to bind capacity flag")
	}
}
