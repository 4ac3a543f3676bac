package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ecomsynth/config"
	"github.com/shashiranjanraj/ecomsynth/pkg/logger"
	"github.com/shashiranjanraj/ecomsynth/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	flushLogs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ecomsynth:", err)
		os.Exit(1)
	}
}

var (
	logLevel    string
	metricsFile string
	flushLogs   = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "ecomsynth",
	Short:         "Synthetic e-commerce data pipeline",
	Long:          "Generate a synthetic e-commerce dataset, load it into sqlite or postgres, and report on it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		closeFn, err := logger.Setup(logger.Options{
			Env:             config.AppEnv(),
			Level:           logLevel,
			MongoURI:        config.LogMongoURI(),
			MongoDB:         config.LogMongoDB(),
			MongoCollection: config.LogMongoCollection(),
		})
		flushLogs = closeFn
		return err
	},
}

// stage runs fn with a stage-tagged logger in ctx, records its duration and
// writes the metrics textfile when one is configured.
func stage(cmd *cobra.Command, name string, fn func(ctx context.Context) error) error {
	ctx := logger.ForStage(cmd.Context(), name)
	start := time.Now()

	err := fn(ctx)
	metrics.ObserveStage(name, start, err)

	log := logger.WithCtx(ctx)
	if err != nil {
		log.Error("stage failed", "error", err, "elapsed", time.Since(start).Round(time.Millisecond))
	} else {
		log.Info("stage done", "elapsed", time.Since(start).Round(time.Millisecond))
	}

	if metricsFile != "" {
		if werr := metrics.WriteTextfile(metricsFile); werr != nil {
			log.Warn("could not write metrics textfile", "path", metricsFile, "error", werr)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.LogLevel(), "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", config.MetricsTextfile(), "write Prometheus metrics to this textfile on exit")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(schemaCmd)
}
