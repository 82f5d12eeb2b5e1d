package commands

import (
	"covidwatch/internal/fetch"
	"covidwatch/pkg/serviceutil"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <kind> <locator>",
	Short: "Runs a single extractor and prints its numbers without storing them.",
	Args:  cobra.ExactArgs(2),
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

		extractor, err := env.factory.New(args[0], args[1])
		if err != nil {
			serviceutil.Fatal(fmt.Sprintf("known kinds: %s", strings.Join(env.factory.Kinds(), ", ")), err)
		}
		numbers, err := extractor.Execute(cmd.Context())
		if err != nil {
			serviceutil.Fatal(fmt.Sprintf("extract failed with status %d", fetch.StatusCode(err)), err)
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Cases", "Deaths", "Hospitalized", "Recoveries", "Active"})
		t.AppendRow(table.Row{numbers.Cases, numbers.Deaths, numbers.Hospitalized, numbers.Recoveries, numbers.Active})
		t.Render()
	},
}
