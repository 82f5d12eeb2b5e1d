package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool
var dumpDir *string

var rootCmd = &cobra.Command{
	Use:   "covidwatch",
	Short: "covidwatch scrapes covid counters from public sources into json stores.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(*verbose)
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", DefaultConfigPath, "The json5 config to read sources from.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every http exchange to this directory.")
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
