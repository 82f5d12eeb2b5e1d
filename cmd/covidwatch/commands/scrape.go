package commands

import (
	"context"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/tracker"
	"covidwatch/pkg/serviceutil"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--config <path/to/covidwatch.json5>]",
	Short: "Runs every configured source once and records the results.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configFromFlags()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		err = runScrape(cmd.Context(), cfg, *dumpDir, cmd.OutOrStdout())
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
	},
}

// runScrape is one pass over the configured sources with telemetry exported
// for the duration of the pass.
func runScrape(ctx context.Context, cfg Config, dump string, out io.Writer) error {
	otel, err := telemetry.Setup(ctx, "covidwatch", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()

	env, err := newEnvironment(cfg, dump)
	if err != nil {
		return err
	}
	results, err := scrape(ctx, env, cfg.Sources)
	renderResults(out, results)
	return err
}

func scrape(ctx context.Context, env environment, srcs []tracker.Source) ([]tracker.Result, error) {
	t1 := time.Now()
	results, err := env.tracker.Run(ctx, srcs)
	t2 := time.Now()

	slog.Info(
		"scraping time",
		"seconds", t2.Sub(t1).Seconds(),
		"sources", len(srcs),
		"data_dir", env.registry.Root(),
	)
	return results, err
}

func renderResults(out io.Writer, results []tracker.Result) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Store", "ID", "Kind", "Cases", "Deaths", "Hospitalized", "Recoveries", "Active", "Outcome"})
	for _, r := range results {
		outcome := "updated"
		switch {
		case r.Err != nil:
			outcome = "failed"
		case r.Created:
			outcome = "created"
		}
		t.AppendRow(table.Row{
			r.Source.Store, r.Source.ID, r.Source.Kind,
			r.Numbers.Cases, r.Numbers.Deaths, r.Numbers.Hospitalized, r.Numbers.Recoveries, r.Numbers.Active,
			outcome,
		})
	}
	t.Render()
}
