package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "populator",
		Short: "Generate SQLite databases with drifted schemas",
		Long: `populator writes a set of SQLite databases that share a random base schema,
with tables and columns randomly dropped or added per database, and a sources.yaml
that mudrockdbpresence compare can run against.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logg, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logg.Sync() }()

			dbs, err := Populate(opts, logg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d databases in %s\n", len(dbs), opts.OutDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.OutDir, "out", "fixtures", "Output directory")
	flags.IntVar(&opts.Count, "count", 3, "Number of databases")
	flags.IntVar(&opts.Tables, "tables", 8, "Tables in the base schema")
	flags.IntVar(&opts.Rows, "rows", 10, "Rows inserted per table")
	flags.Float64Var(&opts.DriftRate, "drift", 0.2, "Probability of dropping or adding a table or column")
	flags.Int64Var(&opts.Seed, "seed", time.Now().UnixNano(), "Random seed")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "populator error: %v\n", err)
		os.Exit(1)
	}
}
