package commands

import (
	"context"
	"covidwatch/internal/components/chrono"
	"covidwatch/internal/components/telemetry"
	"covidwatch/pkg/serviceutil"
	"log/slog"

	"github.com/spf13/cobra"
)

var runOnStart *bool

func init() {
	runOnStart = watchCmd.Flags().Bool("now", true, "Scrape once immediately before waiting on the schedule.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--config <path/to/covidwatch.json5>] [--now]",
	Short: "Scrapes every configured source on the configured cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configFromFlags()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		otel, err := telemetry.Setup(ctx, "covidwatch", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("setup telemetry", err)
		}
		defer otel.Shutdown(context.Background())

		env, err := newEnvironment(cfg, *dumpDir)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		telemetry.InstrumentPerfStats(ctx, env.tel)

		job := func() {
			_, err := scrape(ctx, env, cfg.Sources)
			if err != nil {
				slog.Warn("scrape finished with failures", "err", err)
			}
		}
		if *runOnStart {
			job()
		}

		cron := chrono.NewStandardCron(env.tel)
		err = cron.Cron(cfg.Schedule, job)
		if err != nil {
			serviceutil.Fatal("invalid schedule", err)
		}
		slog.Info("watching sources", "schedule", cfg.Schedule, "sources", len(cfg.Sources))

		<-ctx.Done()
		slog.Info("stopping, waiting for running scrape")
		<-cron.Stop().Done()
	},
}
