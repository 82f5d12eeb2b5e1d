package commands

import (
	"covidwatch/internal/store"
	"covidwatch/pkg/serviceutil"
	"errors"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <store>",
	Short: "Prints the records held by a store.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configFromFlags()
		if errors.Is(err, os.ErrNotExist) {
			cfg = Config{}
			cfg.applyDefaults()
		} else if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		env, err := newEnvironment(cfg, *dumpDir)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}

		s, err := env.registry.Get(args[0])
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		renderStore(cmd.OutOrStdout(), s)
	},
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format(time.DateTime)
}

func renderStore(out io.Writer, s *store.Store) {
	t := newTable(out)
	t.SetTitle(s.Path())
	t.AppendHeader(table.Row{"ID", "Cases", "Deaths", "Hospitalized", "Recoveries", "Active", "Added", "Updated"})
	for _, r := range s.Records() {
		t.AppendRow(table.Row{
			r.ID,
			r.Info.Cases, r.Info.Deaths, r.Info.Hospitalized, r.Info.Recoveries, r.Info.Active,
			formatTimestamp(r.TimestampAdd), formatTimestamp(r.TimestampUpdate),
		})
	}
	t.AppendFooter(table.Row{"Count", s.Count()})
	t.Render()
}
