// Package loader imports a generated dataset into the relational store,
// fully replacing whatever the store held before.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/app/models"
	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/pkg/database"
	"github.com/shashiranjanraj/ecomsynth/pkg/logger"
	"github.com/shashiranjanraj/ecomsynth/pkg/migration"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
	"github.com/shashiranjanraj/ecomsynth/pkg/validate"

	_ "github.com/shashiranjanraj/ecomsynth/database/migrations"
)

var (
	ErrInvalidOptions = errors.New("loader: invalid options")
	ErrForeignKey     = errors.New("loader: foreign key violation")
)

// LTVFile is written next to the source CSVs when Options.LTV is set.
const LTVFile = "customer_ltv.csv"

type Options struct {
	Driver    string `json:"driver"     validate:"required,in=sqlite,postgres"`
	DSN       string `json:"dsn"        validate:"required"`
	BatchSize int    `json:"batch_size" validate:"gte=1,lte=5000"`
	LTV       bool   `json:"ltv"`

	// AllowUnverified loads a directory that has no manifest.
	AllowUnverified bool `json:"allow_unverified"`
}

// Result describes a finished load.
type Result struct {
	Location string
	Rows     map[dataset.Table]int
	LTVRows  int
	LTVFile  string
	Elapsed  time.Duration
}

// Load reads the dataset on source and replaces the store named by opts
// with it. On failure the previous store is left as it was.
func Load(ctx context.Context, source storage.Disk, opts Options) (*Result, error) {
	if errs := validate.Struct(opts); validate.HasErrors(errs) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptions, validate.Join(errs))
	}
	start := time.Now()

	ds, _, err := dataset.Read(ctx, source, dataset.ReadOptions{AllowUnverified: opts.AllowUnverified})
	if err != nil {
		return nil, err
	}

	var res *Result
	switch opts.Driver {
	case database.SQLite:
		res, err = loadSQLite(ctx, source, ds, opts)
	default:
		res, err = loadPostgres(ctx, source, ds, opts)
	}
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// loadSQLite builds the database in a temp file beside the target and
// renames it into place once everything committed.
func loadSQLite(ctx context.Context, source storage.Disk, ds *dataset.Dataset, opts Options) (*Result, error) {
	target, err := filepath.Abs(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", opts.DSN, err)
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("loader: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("loader: create temp db: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
			os.Remove(tmpPath + suffix)
		}
	}()

	db, err := database.Open(database.SQLite, tmpPath, database.Options{})
	if err != nil {
		return nil, err
	}
	res, err := populate(ctx, db, source, ds, opts, false)
	if cerr := database.Close(db); err == nil && cerr != nil {
		err = fmt.Errorf("loader: close: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return nil, fmt.Errorf("loader: replace %s: %w", target, err)
	}
	res.Location = target
	return res, nil
}

// loadPostgres replaces the schema and rows inside one transaction.
func loadPostgres(ctx context.Context, source storage.Disk, ds *dataset.Dataset, opts Options) (*Result, error) {
	db, err := database.Open(database.Postgres, opts.DSN, database.Options{})
	if err != nil {
		return nil, err
	}
	defer database.Close(db)

	res, err := populate(ctx, db, source, ds, opts, true)
	if err != nil {
		return nil, err
	}
	res.Location = "postgres:" + db.Migrator().CurrentDatabase()
	return res, nil
}

// populate creates the schema and inserts every table in one transaction.
// reset drops whatever schema already exists first. The LTV CSV is written
// to source before the transaction commits, so a failed write leaves the
// store unreplaced.
func populate(ctx context.Context, db *gorm.DB, source storage.Disk, ds *dataset.Dataset, opts Options, reset bool) (*Result, error) {
	log := logger.WithCtx(ctx)
	res := &Result{Rows: make(map[dataset.Table]int, len(dataset.Tables))}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(&models.CustomerLTV{}); err != nil {
			return fmt.Errorf("loader: drop customer_ltv: %w", err)
		}
		runner := migration.New(tx)
		if reset {
			if err := runner.Reset(); err != nil {
				return fmt.Errorf("loader: schema: %w", err)
			}
		} else if _, err := runner.Run(); err != nil {
			return fmt.Errorf("loader: schema: %w", err)
		}

		for _, t := range dataset.Tables {
			n, err := insertTable(tx, ds, t, opts.BatchSize)
			if err != nil {
				return err
			}
			res.Rows[t] = n
			log.Info("loaded table", "table", string(t), "rows", n)
		}

		if opts.LTV {
			n, data, err := buildLTV(ctx, tx)
			if err != nil {
				return err
			}
			if err := source.Put(LTVFile, data); err != nil {
				return fmt.Errorf("loader: write %s: %w", LTVFile, err)
			}
			res.LTVRows, res.LTVFile = n, source.Location(LTVFile)
			log.Info("built customer lifetime value", "rows", n, "file", res.LTVFile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
