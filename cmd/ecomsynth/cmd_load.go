package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ecomsynth/config"
	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/internal/loader"
	"github.com/shashiranjanraj/ecomsynth/pkg/metrics"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
)

var loadFlags struct {
	dataDir    string
	disk       string
	driver     string
	db         string
	batchSize  int
	ltv        bool
	unverified bool
}

// ecomsynth load
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a generated dataset into sqlite or postgres, replacing prior contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stage(cmd, "load", func(ctx context.Context) error {
			source, err := storage.Open(ctx, loadFlags.disk, loadFlags.dataDir)
			if err != nil {
				return err
			}

			res, err := loader.Load(ctx, source, loader.Options{
				Driver:    loadFlags.driver,
				DSN:       dsnFlag(cmd, loadFlags.driver, loadFlags.db),
				BatchSize: loadFlags.batchSize,
				LTV:       loadFlags.ltv,

				AllowUnverified: loadFlags.unverified,
			})
			if err != nil {
				return err
			}

			for _, t := range dataset.Tables {
				metrics.RowsLoaded.WithLabelValues(string(t)).Add(float64(res.Rows[t]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at: %s\n", res.Location)
			if res.LTVFile != "" {
				metrics.RowsLoaded.WithLabelValues("customer_ltv").Add(float64(res.LTVRows))
				fmt.Fprintf(cmd.OutOrStdout(), "Customer lifetime value written to: %s\n", res.LTVFile)
			}
			return nil
		})
	},
}

// dsnFlag returns the --db value, or the configured default for driver
// when the flag was not given.
func dsnFlag(cmd *cobra.Command, driver, value string) string {
	if cmd.Flags().Changed("db") {
		return value
	}
	return config.DatabaseDSNFor(driver)
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadFlags.dataDir, "data-dir", config.DataDir(), "dataset directory (or key prefix on s3)")
	f.StringVar(&loadFlags.disk, "disk", config.StorageDisk(), "storage disk: local or s3")
	f.StringVar(&loadFlags.driver, "driver", config.DatabaseDriver(), "database driver: sqlite or postgres")
	f.StringVar(&loadFlags.db, "db", config.DatabaseDSN(), "sqlite file path or postgres DSN")
	f.IntVar(&loadFlags.batchSize, "batch-size", config.LoadBatchSize(), "rows per INSERT statement (1..5000)")
	f.BoolVar(&loadFlags.ltv, "ltv", false, "also build customer_ltv and write customer_ltv.csv")
	f.BoolVar(&loadFlags.unverified, "allow-unverified", false, "load a directory without _manifest.json")
}
