package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ecomsynth/config"
	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/internal/generator"
	"github.com/shashiranjanraj/ecomsynth/pkg/logger"
	"github.com/shashiranjanraj/ecomsynth/pkg/metrics"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
)

var genFlags struct {
	seed      int64
	scale     float64
	endDate   string
	discounts bool
	out       string
	disk      string
}

// ecomsynth generate
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the five synthetic CSV tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stage(cmd, "generate", func(ctx context.Context) error {
			end, err := time.Parse(dataset.DateLayout, genFlags.endDate)
			if err != nil {
				return fmt.Errorf("%w: --end-date %q is not YYYY-MM-DD", generator.ErrInvalidOptions, genFlags.endDate)
			}
			opts := generator.Options{
				Seed:      genFlags.seed,
				Scale:     genFlags.scale,
				EndDate:   end,
				Discounts: genFlags.discounts,
			}

			ds, err := generator.Generate(ctx, opts)
			if err != nil {
				return err
			}

			disk, err := storage.Open(ctx, genFlags.disk, genFlags.out)
			if err != nil {
				return err
			}
			m, err := dataset.Save(disk, ds, dataset.Manifest{
				Seed:      opts.Seed,
				Scale:     opts.Scale,
				EndDate:   end.Format(dataset.DateLayout),
				Discounts: opts.Discounts,
			})
			if err != nil {
				return err
			}

			log := logger.WithCtx(ctx)
			for _, t := range dataset.Tables {
				metrics.RowsGenerated.WithLabelValues(string(t)).Add(float64(m.Tables[t].Rows))
				log.Info("wrote table", "file", t.File(), "rows", m.Tables[t].Rows)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated dataset in %s\n", disk.Location(""))
			fmt.Fprintf(cmd.OutOrStdout(), "customers=%d products=%d orders=%d order_items=%d reviews=%d\n",
				len(ds.Customers), len(ds.Products), len(ds.Orders), len(ds.OrderItems), len(ds.Reviews))
			return nil
		})
	},
}

// ecomsynth verify
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a generated dataset against every consistency rule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stage(cmd, "verify", func(ctx context.Context) error {
			disk, err := storage.Open(ctx, verifyFlags.disk, verifyFlags.dataDir)
			if err != nil {
				return err
			}
			ds, m, err := dataset.Read(ctx, disk, dataset.ReadOptions{AllowUnverified: verifyFlags.allowUnverified})
			if err != nil {
				return err
			}
			if err := dataset.Check(ds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d orders, %d order items", disk.Location(""), len(ds.Orders), len(ds.OrderItems))
			if m != nil {
				fmt.Fprintf(cmd.OutOrStdout(), ", seed %d, scale %g", m.Seed, m.Scale)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ")")
			return nil
		})
	},
}

var verifyFlags struct {
	dataDir         string
	disk            string
	allowUnverified bool
}

func init() {
	f := generateCmd.Flags()
	f.Int64Var(&genFlags.seed, "seed", config.GenSeed(), "random seed")
	f.Float64Var(&genFlags.scale, "scale", config.GenScale(), "row count multiplier (0 < scale <= 1000)")
	f.StringVar(&genFlags.endDate, "end-date", config.GenEndDate(), "reference date (YYYY-MM-DD) the date windows end on")
	f.BoolVar(&genFlags.discounts, "discounts", false, "model per-line discounts")
	f.StringVar(&genFlags.out, "out", config.DataDir(), "output directory (or key prefix on s3)")
	f.StringVar(&genFlags.disk, "disk", config.StorageDisk(), "storage disk: local or s3")

	v := verifyCmd.Flags()
	v.StringVar(&verifyFlags.dataDir, "data-dir", config.DataDir(), "dataset directory (or key prefix on s3)")
	v.StringVar(&verifyFlags.disk, "disk", config.StorageDisk(), "storage disk: local or s3")
	v.BoolVar(&verifyFlags.allowUnverified, "allow-unverified", false, "accept a directory without _manifest.json")
}
