package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newRootCmd builds the command tree. A fresh viper instance per tree keeps tests isolated.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mudrockdbpresence",
		Short: "Report which tables and columns exist in which databases",
		Long: `mudrockdbpresence inventories the tables and columns of several databases
(MySQL, PostgreSQL, SQLite, SQL Server) and writes two matrices: one row per table
and one row per (table, column) pair, with a Present/Not Present cell per database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompareCmd(viper.New()))
	return root
}

func newCompareCmd(v *viper.Viper) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the schemas of the configured sources",
		Example: `  mudrockdbpresence compare --config sources.yaml
  mudrockdbpresence compare -c sources.yaml --output-dir reports --format yaml --parallel`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v, configPath)
			if err != nil {
				return err
			}

			logg, err := NewLogger(&cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logg.Sync() }()

			_, err = runCompare(cmd.Context(), cfg, sqlCatalogOpener(cfg.QueryTimeout), cmd.OutOrStdout(), WithRunID(logg))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "sources.yaml", "Path to the sources config file")
	flags.String("output-dir", ".", "Directory the report files are written to")
	flags.String("format", "csv", "Report file format (csv or yaml)")
	flags.Int("preview", 5, "Rows of each report to print, 0 to disable")
	flags.Bool("ignore-case", false, "Match table and column names case-insensitively")
	flags.Bool("parallel", false, "Query sources concurrently")
	flags.Bool("fail-on-drift", false, "Exit with an error when any table or column is missing somewhere")
	flags.Duration("query-timeout", 30*time.Second, "Timeout for each catalog query")

	_ = v.BindPFlag("output.dir", flags.Lookup("output-dir"))
	_ = v.BindPFlag("output.format", flags.Lookup("format"))
	_ = v.BindPFlag("output.preview", flags.Lookup("preview"))
	_ = v.BindPFlag("ignore_case", flags.Lookup("ignore-case"))
	_ = v.BindPFlag("parallel", flags.Lookup("parallel"))
	_ = v.BindPFlag("fail_on_drift", flags.Lookup("fail-on-drift"))
	_ = v.BindPFlag("query_timeout", flags.Lookup("query-timeout"))

	return cmd
}

// runCompare collects every source, writes both reports and prints a preview and summary.
func runCompare(ctx context.Context, cfg *Config, open CatalogOpener, out io.Writer, logg *zap.Logger) (Summary, error) {
	sink, err := NewSink(cfg.Output.Format)
	if err != nil {
		return Summary{}, err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	sources := cfg.SourceList()
	for _, src := range sources {
		fields := []zap.Field{
			zap.String("source", src.Key),
			zap.String("name", src.Name),
			zap.String("driver", src.Driver),
		}
		if adapter, err := GetAdapter(src.Driver); err == nil {
			fields = append(fields, zap.String("target", sanitize(connectString(adapter, src))))
		}
		logg.Debug("Source configured", fields...)
	}
	if len(sources) == 1 {
		logg.Warn("Only one source configured, every name will be reported as present")
	}

	logg.Info("Collecting schema inventories",
		zap.Int("sources", len(sources)),
		zap.Bool("parallel", cfg.Parallel))
	invs, err := NewCollector(open, logg).CollectAll(ctx, sources, cfg.Parallel)
	if err != nil {
		return Summary{}, err
	}

	result := Compare(invs, Reconciler{IgnoreCase: cfg.IgnoreCase})
	presencePath, columnsPath := reportPaths(cfg.Output.Dir, sink)

	presence := BuildPresenceReport(result.Tables, result.Sources)
	if err := sink.Write(presence, presencePath); err != nil {
		return Summary{}, err
	}
	logg.Info("Table presence report written",
		zap.String("file", presencePath),
		zap.Int("rows", len(presence.Rows)))

	columns := BuildColumnReport(result.Tables, result.Columns, result.Sources)
	if err := sink.Write(columns, columnsPath); err != nil {
		return Summary{}, err
	}
	logg.Info("Column differences report written",
		zap.String("file", columnsPath),
		zap.Int("rows", len(columns.Rows)))

	if cfg.Output.Preview > 0 {
		if err := printPreview(out, "Table presence across databases", presence, cfg.Output.Preview); err != nil {
			return Summary{}, err
		}
		if err := printPreview(out, "Column differences across databases", columns, cfg.Output.Preview); err != nil {
			return Summary{}, err
		}
	}

	summary := Summarize(presence, columns, invs)
	printSummary(out, summary, result.Sources)

	if cfg.FailOnDrift && summary.HasDrift() {
		return summary, ErrDriftDetected
	}
	return summary, nil
}

func printSummary(out io.Writer, s Summary, sources []Source) {
	fmt.Fprintln(out, "\n=== Comparison Summary ===")
	fmt.Fprintf(out, "Tables: %d (%d not present everywhere)\n", s.Tables, s.TablesWithDrift)
	fmt.Fprintf(out, "Columns: %d (%d not present everywhere)\n", s.Columns, s.ColumnsWithDrift)
	for _, src := range sources {
		if n := s.ColumnFailures[src.Name]; n > 0 {
			fmt.Fprintf(out, "- %s: column query failed for %d table(s), reported as Not Present\n", src.Name, n)
		}
	}
	if !s.HasDrift() {
		fmt.Fprintln(out, "No differences found between the databases.")
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Console logger for CLI-facing errors, matching the run logger defaults
		l, logErr := NewLogger(&LogConfig{Level: "debug", Format: "console"})
		if logErr == nil {
			fields := []zap.Field{zap.String("error", sanitizeError(err))}
			var srcErr *SourceError
			if errors.As(err, &srcErr) {
				fields = append(fields, zap.String("source", srcErr.Source.Key))
			}
			l.Error("command failed", fields...)
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, sanitizeError(err))
		}
		os.Exit(1)
	}
}
