package main

import (
	"fmt"
	"os"

	"github.com/lucasew/disklru/internal/errutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "disklru",
	Short: "A size-bounded LRU cache for files on disk",
	Long:  `disklru manages a directory of files as a capacity-bounded cache, evicting the least-recently-used files when a new one does not fit.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, printErr := fmt.Fprintln(os.Stderr, err); printErr != nil {
			errutil.ReportError(printErr, "Failed to print error to stderr")
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("store", "./cache/index.db", "Path to the store database")
	rootCmd.PersistentFlags().String("cache-dir", "./cache", "Directory holding the cached files")

	if err := viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store")); err != nil {
		errutil.ReportError(err, "Failed to bind store flag")
	}
	if err := viper.BindPFlag("cache-dir", rootCmd.PersistentFlags().Lookup("cache-dir")); err != nil {
		errutil.ReportError(err, "Failed to bind cache-dir flag")
	}
}

func initConfig() {
	viper.SetEnvPrefix("DISKLRU")
	viper.AutomaticEnv()
}

func main() {
	Execute()
}
