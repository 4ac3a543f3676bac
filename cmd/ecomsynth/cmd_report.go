package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ecomsynth/config"
	"github.com/shashiranjanraj/ecomsynth/internal/report"
	"github.com/shashiranjanraj/ecomsynth/pkg/database"
	"github.com/shashiranjanraj/ecomsynth/pkg/metrics"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
)

var reportFlags struct {
	driver  string
	db      string
	queries []string
	format  string
	out     string
}

// ecomsynth report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the analytical queries against a loaded store",
	Long:  "Run the analytical queries against a loaded store. Queries: " + strings.Join(report.Names(), ", ") + ".",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stage(cmd, "report", func(ctx context.Context) error {
			if !slices.Contains(report.Formats, reportFlags.format) {
				return fmt.Errorf("report: unknown format %q (supported: %s)", reportFlags.format, strings.Join(report.Formats, ", "))
			}
			if _, err := report.Lookup(reportFlags.queries); err != nil {
				return err
			}

			db, err := report.Open(reportFlags.driver, dsnFlag(cmd, reportFlags.driver, reportFlags.db))
			if err != nil {
				return err
			}
			defer database.Close(db)

			results, err := report.Run(ctx, db, reportFlags.queries)
			if err != nil {
				return err
			}
			for _, r := range results {
				metrics.ReportRows.WithLabelValues(r.Name).Set(float64(len(r.Rows)))
			}

			if reportFlags.out == "" {
				return report.Render(cmd.OutOrStdout(), reportFlags.format, results)
			}
			written, err := report.WriteFiles(storage.NewLocal(reportFlags.out), reportFlags.format, results)
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		})
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.driver, "driver", config.DatabaseDriver(), "database driver: sqlite or postgres")
	f.StringVar(&reportFlags.db, "db", config.DatabaseDSN(), "sqlite file path or postgres DSN")
	f.StringSliceVar(&reportFlags.queries, "query", nil, "query to run (repeatable); default all")
	f.StringVar(&reportFlags.format, "format", report.FormatTable, "output format: table, csv or json")
	f.StringVar(&reportFlags.out, "out", "", "write one file per query into this directory instead of stdout")
}
