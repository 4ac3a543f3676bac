package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ecomsynth/config"
	"github.com/shashiranjanraj/ecomsynth/internal/report"
	"github.com/shashiranjanraj/ecomsynth/pkg/database"
	"github.com/shashiranjanraj/ecomsynth/pkg/migration"

	// Register the schema migrations.
	_ "github.com/shashiranjanraj/ecomsynth/database/migrations"
)

var schemaFlags struct {
	driver string
	db     string
}

// ecomsynth schema
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show which schema migrations a loaded store carries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := report.Open(schemaFlags.driver, dsnFlag(cmd, schemaFlags.driver, schemaFlags.db))
		if err != nil {
			return err
		}
		defer database.Close(db)

		status, err := migration.New(db).Status()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Migration\tStatus\tBatch")
		for _, s := range status {
			if s.Ran {
				fmt.Fprintf(tw, "%s\tRan\t%d\n", s.Name, s.Batch)
			} else {
				fmt.Fprintf(tw, "%s\tPending\t-\n", s.Name)
			}
		}
		return tw.Flush()
	},
}

func init() {
	f := schemaCmd.Flags()
	f.StringVar(&schemaFlags.driver, "driver", config.DatabaseDriver(), "database driver: sqlite or postgres")
	f.StringVar(&schemaFlags.db, "db", config.DatabaseDSN(), "sqlite file path or postgres DSN")
}
