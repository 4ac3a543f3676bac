// Package database opens gorm connections to the relational store.
package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Options tune how a connection is opened.
type Options struct {
	// ReadOnly opens sqlite files with mode=ro. Ignored for postgres,
	// where the report queries are plain SELECTs anyway.
	ReadOnly bool
}

// Open opens the database and configures the connection pool. For sqlite,
// dsn is a file path; foreign keys are always enforced.
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn, opts)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // use pkg/logger, not GORM's own
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	if driver == SQLite {
		// One writer; also keeps PRAGMAs on a single connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLiteDSN turns a file path into a go-sqlite3 DSN with foreign keys on.
func SQLiteDSN(path string, readOnly bool) string {
	dsn := path
	params := []string{"_foreign_keys=on"}
	if readOnly {
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		params = append(params, "mode=ro")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func buildDialector(driver, dsn string, opts Options) (gorm.Dialector, error) {
	switch driver {
	case SQLite:
		return sqlite.Open(SQLiteDSN(dsn, opts.ReadOnly)), nil
	case Postgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}
}
