package main

import (
	"fmt"
	"os"

	"github.com/lucasew/disklru/internal/errutil"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Look up a cached file by key, marking it as recently used",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		cache, closeCache, err := openCache()
		if err != nil {
			errutil.ReportError(err, "Failed to open cache")
			os.Exit(1)
		}
		defer closeCache()

		path, ok, err := cache.Access(cmd.Context(), key)
		if err != nil {
			errutil.ReportError(err, "Failed to look up key", "key", key)
			os.Exit(1)
		}
		if !ok {
			if _, err := fmt.Fprintf(os.Stderr, "not found: %s\n", key); err != nil {
				errutil.ReportError(err, "Failed to print to stderr")
			}
			os.Exit(1)
		}

		fmt.Println(path)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
