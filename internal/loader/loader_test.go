package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ecomsynth/app/models"
	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/internal/generator"
	"github.com/shashiranjanraj/ecomsynth/pkg/database"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
)

func writeDataset(t *testing.T, ds *dataset.Dataset) *storage.LocalDisk {
	t.Helper()
	disk := storage.NewLocal(t.TempDir())
	_, err := dataset.Save(disk, ds, dataset.Manifest{Seed: 42, Scale: 0.05})
	require.NoError(t, err)
	return disk
}

func generated(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := generator.Generate(context.Background(), generator.Options{Seed: 42, Scale: 0.05, Discounts: true})
	require.NoError(t, err)
	return ds
}

func sqliteOpts(t *testing.T) Options {
	return Options{Driver: database.SQLite, DSN: filepath.Join(t.TempDir(), "db", "ecommerce.db"), BatchSize: 100}
}

func openTarget(t *testing.T, path string) *gormDB {
	t.Helper()
	db, err := database.Open(database.SQLite, path, database.Options{ReadOnly: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return &gormDB{db}
}

func TestLoadSQLite(t *testing.T) {
	ds := generated(t)
	disk := writeDataset(t, ds)
	opts := sqliteOpts(t)

	res, err := Load(context.Background(), disk, opts)
	require.NoError(t, err)
	assert.Equal(t, opts.DSN, res.Location)
	for _, tbl := range dataset.Tables {
		assert.Equal(t, ds.Rows(tbl), res.Rows[tbl], tbl)
	}

	db := openTarget(t, res.Location)
	assert.Equal(t, int64(len(ds.OrderItems)), db.count(t, &models.OrderItem{}))

	m := db.Migrator()
	for _, idx := range []struct {
		model any
		name  string
	}{
		{&models.Order{}, "idx_orders_customer"},
		{&models.Order{}, "idx_orders_date"},
		{&models.Order{}, "idx_orders_status"},
		{&models.OrderItem{}, "idx_items_order"},
		{&models.OrderItem{}, "idx_items_product"},
		{&models.Review{}, "idx_reviews_product"},
		{&models.Review{}, "idx_reviews_customer"},
		{&models.Customer{}, "idx_customers_email"},
	} {
		assert.True(t, m.HasIndex(idx.model, idx.name), idx.name)
	}

	var fks []struct{ Table string }
	require.NoError(t, db.Raw("SELECT \"table\" FROM pragma_foreign_key_list('order_items')").Scan(&fks).Error)
	tables := make([]string, len(fks))
	for i, fk := range fks {
		tables[i] = fk.Table
	}
	assert.ElementsMatch(t, []string{"orders", "products"}, tables)

	var o models.Order
	require.NoError(t, db.First(&o, "order_id = ?", ds.Orders[0].ID).Error)
	assert.Equal(t, ds.Orders[0].OrderDate.Format(dataset.DateTimeLayout), o.OrderDate)
	assert.InDelta(t, ds.Orders[0].Total.Float(), o.Total, 0.001)

	entries, err := os.ReadDir(filepath.Dir(opts.DSN))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestLoadIsIdempotent(t *testing.T) {
	disk := writeDataset(t, generated(t))
	opts := sqliteOpts(t)

	_, err := Load(context.Background(), disk, opts)
	require.NoError(t, err)
	first := openTarget(t, opts.DSN).snapshot(t)

	_, err = Load(context.Background(), disk, opts)
	require.NoError(t, err)
	second := openTarget(t, opts.DSN).snapshot(t)

	assert.Equal(t, first, second)
}

func TestLoadForeignKeyViolation(t *testing.T) {
	ds := generated(t)
	ds.Reviews[3].CustomerID = 9999
	disk := writeDataset(t, ds)
	opts := sqliteOpts(t)

	_, err := Load(context.Background(), disk, opts)
	require.ErrorIs(t, err, ErrForeignKey)
	assert.Contains(t, err.Error(), "reviews.csv line 5: customer_id 9999 does not exist")

	_, statErr := os.Stat(opts.DSN)
	assert.True(t, os.IsNotExist(statErr), "a failed first load leaves no database behind")
}

func TestFailedLoadKeepsPreviousDatabase(t *testing.T) {
	good := generated(t)
	opts := sqliteOpts(t)
	_, err := Load(context.Background(), writeDataset(t, good), opts)
	require.NoError(t, err)

	bad := generated(t)
	bad.OrderItems[len(bad.OrderItems)-1].ProductID = 5000
	_, err = Load(context.Background(), writeDataset(t, bad), opts)
	require.ErrorIs(t, err, ErrForeignKey)
	assert.Contains(t, err.Error(), "order_items.csv")

	db := openTarget(t, opts.DSN)
	assert.Equal(t, int64(len(good.OrderItems)), db.count(t, &models.OrderItem{}))
}

func TestLoadMissingFile(t *testing.T) {
	disk := writeDataset(t, generated(t))
	require.NoError(t, disk.Delete(dataset.Products.File()))
	opts := sqliteOpts(t)

	_, err := Load(context.Background(), disk, opts)
	require.ErrorIs(t, err, dataset.ErrMissingFile)

	_, statErr := os.Stat(filepath.Dir(opts.DSN))
	assert.True(t, os.IsNotExist(statErr), "nothing is touched before the dataset validates")
}

func TestLoadHeaderMismatch(t *testing.T) {
	disk := writeDataset(t, generated(t))
	require.NoError(t, disk.Put(dataset.Customers.File(), []byte("id,name,email,phone,address,join_date\n")))

	_, err := Load(context.Background(), disk, sqliteOpts(t))
	assert.ErrorIs(t, err, dataset.ErrHeaderMismatch)
}

func TestInvalidOptions(t *testing.T) {
	disk := storage.NewLocal(t.TempDir())
	for _, opts := range []Options{
		{Driver: "mysql", DSN: "x", BatchSize: 10},
		{Driver: database.SQLite, DSN: "", BatchSize: 10},
		{Driver: database.SQLite, DSN: "x", BatchSize: 0},
		{Driver: database.SQLite, DSN: "x", BatchSize: 5001},
	} {
		_, err := Load(context.Background(), disk, opts)
		assert.ErrorIs(t, err, ErrInvalidOptions, "%+v", opts)
	}
}

func TestLoadWithLTV(t *testing.T) {
	ds := generated(t)
	disk := writeDataset(t, ds)
	opts := sqliteOpts(t)
	opts.LTV = true
	opts.BatchSize = 7

	res, err := Load(context.Background(), disk, opts)
	require.NoError(t, err)
	assert.Equal(t, len(ds.Customers), res.LTVRows)
	assert.Equal(t, disk.Location(LTVFile), res.LTVFile)

	raw, err := disk.Get(LTVFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "customer_id,name,lifetime_spend,orders_count,avg_order_value,last_order_date", lines[0])
	assert.Len(t, lines, len(ds.Customers)+1)

	var want dataset.Money
	completed := 0
	for _, o := range ds.Orders {
		if o.Status == dataset.StatusCompleted {
			want += o.Total
			completed++
		}
	}

	db := openTarget(t, opts.DSN)
	var got struct {
		Spend  float64
		Orders int
	}
	require.NoError(t, db.Raw("SELECT SUM(lifetime_spend) AS spend, SUM(orders_count) AS orders FROM customer_ltv").Scan(&got).Error)
	assert.InDelta(t, want.Float(), got.Spend, 0.01*float64(len(ds.Customers)))
	assert.Equal(t, completed, got.Orders)

	// A reload without the flag drops the derived table.
	opts.LTV = false
	_, err = Load(context.Background(), disk, opts)
	require.NoError(t, err)
	assert.False(t, openTarget(t, opts.DSN).Migrator().HasTable("customer_ltv"))
}

// refusingDisk fails every Put of one path.
type refusingDisk struct {
	*storage.LocalDisk
	path string
}

func (d *refusingDisk) Put(path string, b []byte) error {
	if path == d.path {
		return errors.New("disk full")
	}
	return d.LocalDisk.Put(path, b)
}

func TestLoadRefusesHalfWrittenDataset(t *testing.T) {
	disk := writeDataset(t, generated(t))

	next, err := generator.Generate(context.Background(), generator.Options{Seed: 2, Scale: 0.05})
	require.NoError(t, err)
	_, err = dataset.Save(&refusingDisk{LocalDisk: disk, path: dataset.Orders.File()}, next, dataset.Manifest{Seed: 2})
	require.Error(t, err)

	opts := sqliteOpts(t)
	_, err = Load(context.Background(), disk, opts)
	require.ErrorIs(t, err, dataset.ErrIncomplete)

	_, statErr := os.Stat(opts.DSN)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadUnverifiedDataset(t *testing.T) {
	ds := generated(t)
	disk := writeDataset(t, ds)
	require.NoError(t, disk.Delete(dataset.ManifestFile))

	opts := sqliteOpts(t)
	opts.AllowUnverified = true
	res, err := Load(context.Background(), disk, opts)
	require.NoError(t, err)
	assert.Equal(t, len(ds.Orders), res.Rows[dataset.Orders])
}

func TestFailedLTVWriteKeepsPreviousDatabase(t *testing.T) {
	good := generated(t)
	opts := sqliteOpts(t)
	_, err := Load(context.Background(), writeDataset(t, good), opts)
	require.NoError(t, err)

	next, err := generator.Generate(context.Background(), generator.Options{Seed: 3, Scale: 0.1})
	require.NoError(t, err)
	source := &refusingDisk{LocalDisk: writeDataset(t, next), path: LTVFile}
	opts.LTV = true
	_, err = Load(context.Background(), source, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write customer_ltv.csv: disk full")

	db := openTarget(t, opts.DSN)
	assert.Equal(t, int64(len(good.Orders)), db.count(t, &models.Order{}))
	assert.False(t, db.Migrator().HasTable("customer_ltv"))
}
