package main

import (
	"fmt"
	"os"

	"github.com/lucasew/disklru/internal/errutil"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached entries from least- to most-recently used",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cache, closeCache, err := openCache()
		if err != nil {
			errutil.ReportError(err, "Failed to open cache")
			os.Exit(1)
		}
		defer closeCache()

		err = cache.Walk(cmd.Context(), func(key, path string) error {
			size := int64(-1)
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
			if size < 0 {
				fmt.Printf("%s\t%s\t(missing)\n", key, path)
			} else {
				fmt.Printf("%s\t%s\t%d\n", key, path, size)
			}
			return nil
		})
		if err != nil {
			errutil.ReportError(err, "Failed to list entries")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
