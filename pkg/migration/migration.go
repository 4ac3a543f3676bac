// Package migration provides the schema migration runner used by the loader.
//
// Usage (in database/migrations):
//
//	func init() {
//	    migration.Register("0001_create_customers_table", &CreateCustomersTable{})
//	}
//
//	type CreateCustomersTable struct{}
//	func (m *CreateCustomersTable) Up(db *gorm.DB) error {
//	    return db.AutoMigrate(&models.Customer{})
//	}
//	func (m *CreateCustomersTable) Down(db *gorm.DB) error {
//	    return db.Migrator().DropTable("customers")
//	}
//
// The loader runs every migration on a fresh database, or calls Reset to
// rebuild an existing one from scratch.
package migration

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	// Up applies the migration.
	Up(db *gorm.DB) error
	// Down reverses the migration.
	Down(db *gorm.DB) error
}

// migrationRecord is the GORM model stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

// ------------------- Registry -------------------

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration to the global registry. Names sort in the
// order the migrations must run, e.g. "0001_create_customers_table".
func Register(name string, m Migration) {
	registry = append(registry, registeredMigration{name: name, m: m})
}

// Names returns the registered migration names in run order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, reg := range sorted() {
		out = append(out, reg.name)
	}
	return out
}

func sorted() []registeredMigration {
	out := append([]registeredMigration(nil), registry...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ErrNoMigrations is returned when Run is called but no migrations are registered.
var ErrNoMigrations = errors.New("no migrations registered")

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db *gorm.DB
}

// New creates a Runner backed by the provided gorm.DB. Pass a transaction
// to make Run or Reset atomic on engines with transactional DDL.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

// Pending returns the migrations that have not yet been run.
func (r *Runner) Pending() ([]registeredMigration, error) {
	var ran []migrationRecord
	if err := r.db.Find(&ran).Error; err != nil {
		return nil, err
	}

	ranSet := make(map[string]bool, len(ran))
	for _, rec := range ran {
		ranSet[rec.Name] = true
	}

	var pending []registeredMigration
	for _, reg := range sorted() {
		if !ranSet[reg.name] {
			pending = append(pending, reg)
		}
	}
	return pending, nil
}

// Run executes all pending migrations in a single batch and returns how
// many ran.
func (r *Runner) Run() (int, error) {
	if len(registry) == 0 {
		return 0, ErrNoMigrations
	}
	if err := r.EnsureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.Pending()
	if err != nil {
		return 0, fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		logger.Debug("migration: nothing to migrate")
		return 0, nil
	}

	batch := r.nextBatch()
	for _, reg := range pending {
		logger.Debug("migration: running", "name", reg.name)

		if err := reg.m.Up(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}

		record := migrationRecord{Name: reg.name, Batch: batch}
		if err := r.db.Create(&record).Error; err != nil {
			return 0, fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
	}

	logger.Debug("migration: done", "ran", len(pending), "batch", batch)
	return len(pending), nil
}

// Rollback reverses all migrations from the most recent batch.
func (r *Runner) Rollback() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	var maxBatch struct{ Max int }
	if err := r.db.Model(&migrationRecord{}).Select("MAX(batch) as max").Scan(&maxBatch).Error; err != nil {
		return err
	}
	if maxBatch.Max == 0 {
		logger.Debug("migration: nothing to roll back")
		return nil
	}

	var records []migrationRecord
	if err := r.db.Where("batch = ?", maxBatch.Max).
		Order("id desc").
		Find(&records).Error; err != nil {
		return err
	}

	regMap := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		regMap[reg.name] = reg.m
	}

	for _, rec := range records {
		m, ok := regMap[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		logger.Debug("migration: rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

// Reset runs every registered Down in reverse order, whether or not it is
// recorded as applied, clears the tracking table, then runs every Up. Down
// steps must tolerate missing tables.
func (r *Runner) Reset() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	regs := sorted()
	for i := len(regs) - 1; i >= 0; i-- {
		if err := regs[i].m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", regs[i].name, err)
		}
	}
	if err := r.db.Where("1 = 1").Delete(&migrationRecord{}).Error; err != nil {
		return fmt.Errorf("migration: clear records: %w", err)
	}

	_, err := r.Run()
	return err
}

// Status describes one registered migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Status lists all registered migrations and whether each has been run.
// It never writes, so it works on a read-only connection.
func (r *Runner) Status() ([]Status, error) {
	var ran []migrationRecord
	if r.db.Migrator().HasTable(&migrationRecord{}) {
		if err := r.db.Find(&ran).Error; err != nil {
			return nil, err
		}
	}

	ranMap := make(map[string]migrationRecord, len(ran))
	for _, rec := range ran {
		ranMap[rec.Name] = rec
	}

	var out []Status
	for _, reg := range sorted() {
		rec, ok := ranMap[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) nextBatch() int {
	var maxBatch struct{ Max int }
	r.db.Model(&migrationRecord{}).Select("MAX(batch) as max").Scan(&maxBatch)
	return maxBatch.Max + 1
}
