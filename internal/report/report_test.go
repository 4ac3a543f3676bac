package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/internal/generator"
	"github.com/shashiranjanraj/ecomsynth/internal/loader"
	"github.com/shashiranjanraj/ecomsynth/internal/report"
	"github.com/shashiranjanraj/ecomsynth/pkg/database"
	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
)

// loadInto saves ds, loads it into a fresh sqlite file and opens that file
// read-only.
func loadInto(t *testing.T, ds *dataset.Dataset) *gorm.DB {
	t.Helper()
	disk := storage.NewLocal(t.TempDir())
	_, err := dataset.Save(disk, ds, dataset.Manifest{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ecommerce.db")
	_, err = loader.Load(context.Background(), disk, loader.Options{Driver: database.SQLite, DSN: path, BatchSize: 500})
	require.NoError(t, err)

	db, err := report.Open(database.SQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func defaultRun(t *testing.T) (*dataset.Dataset, *gorm.DB) {
	t.Helper()
	ds, err := generator.Generate(context.Background(), generator.Options{Seed: 42, Scale: 1})
	require.NoError(t, err)
	return ds, loadInto(t, ds)
}

func completedSpend(ds *dataset.Dataset) map[int]dataset.Money {
	out := map[int]dataset.Money{}
	for _, o := range ds.Orders {
		if o.Status == dataset.StatusCompleted {
			out[o.CustomerID] += o.Total
		}
	}
	return out
}

func TestDefaultScenario(t *testing.T) {
	ds, db := defaultRun(t)
	ctx := context.Background()

	assert.Len(t, ds.Customers, 500)
	assert.Len(t, ds.Products, 200)

	top, err := report.TopCustomers(ctx, db)
	require.NoError(t, err)
	require.Len(t, top, 10)

	spend := completedSpend(ds)
	for i, row := range top {
		assert.InDelta(t, spend[row.CustomerID].Float(), row.LifetimeSpend, 0.005, "customer %d", row.CustomerID)
		if i > 0 {
			assert.GreaterOrEqual(t, top[i-1].LifetimeSpend, row.LifetimeSpend)
		}
	}

	// Nobody outside the top 10 spent more than the 10th.
	inTop := map[int]bool{}
	for _, row := range top {
		inTop[row.CustomerID] = true
	}
	for id, s := range spend {
		if !inTop[id] {
			assert.LessOrEqual(t, s.Float(), top[9].LifetimeSpend+0.005)
		}
	}
}

func TestCategoryShareSumsToOne(t *testing.T) {
	_, db := defaultRun(t)

	shares, err := report.CategoryRevenueShare(context.Background(), db)
	require.NoError(t, err)
	require.NotEmpty(t, shares)
	assert.LessOrEqual(t, len(shares), len(dataset.Categories))

	var sum, revenue float64
	for _, s := range shares {
		sum += s.PctOfRevenue
		revenue += s.Revenue
	}
	assert.InDelta(t, 1.0, sum, 0.0001*float64(len(shares)))
	for i, s := range shares {
		assert.InDelta(t, s.Revenue/revenue, s.PctOfRevenue, 0.0001, s.Category)
		if i > 0 {
			assert.GreaterOrEqual(t, shares[i-1].Revenue, s.Revenue)
		}
	}
}

func TestOtherQueries(t *testing.T) {
	ds, db := defaultRun(t)
	ctx := context.Background()

	products, err := report.TopProducts(ctx, db)
	require.NoError(t, err)
	require.Len(t, products, 10)
	assert.GreaterOrEqual(t, products[0].Revenue, products[9].Revenue)

	months, err := report.MonthlyRevenue(ctx, db)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, "2025-12", months[0].Month)
	assert.True(t, sort.SliceIsSorted(months, func(i, j int) bool { return months[i].Month > months[j].Month }))

	rated, err := report.TopRatedCustomers(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, rated)
	assert.LessOrEqual(t, len(rated), 20)
	for i, r := range rated {
		assert.GreaterOrEqual(t, r.ReviewCount, 3)
		if i > 0 {
			prev := rated[i-1]
			assert.True(t, prev.AvgRating > r.AvgRating ||
				(prev.AvgRating == r.AvgRating && prev.ReviewCount >= r.ReviewCount))
		}
	}

	var december dataset.Money
	for _, o := range ds.Orders {
		if o.Status == dataset.StatusCompleted && o.OrderDate.Format("2006-01") == "2025-12" {
			december += o.Total
		}
	}
	assert.InDelta(t, december.Float(), months[0].Revenue, 0.005)
}

func at(s string) time.Time {
	t, _ := time.Parse(dataset.DateTimeLayout, s)
	return t
}

// excludedDataset has two completed orders and one cancelled order with a
// distinctive total for a customer and product that appear nowhere else.
func excludedDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Customers: []dataset.Customer{
			{ID: 1, Name: "Ann Buyer", Email: "ann@example.com", JoinDate: at("2024-01-01 00:00:00")},
			{ID: 2, Name: "Carl Canceller", Email: "carl@example.com", JoinDate: at("2024-01-01 00:00:00")},
		},
		Products: []dataset.Product{
			{ID: 1, Name: "Useful Lamp", Category: "Home", Price: 1000, SKU: "SKU-000001"},
			{ID: 2, Name: "Gold Robot", Category: "Toys", Price: 9876543, SKU: "SKU-000002"},
		},
		Orders: []dataset.Order{
			{ID: 1, CustomerID: 1, OrderDate: at("2025-05-01 10:00:00"), Total: 2000, Status: dataset.StatusCompleted},
			{ID: 2, CustomerID: 1, OrderDate: at("2025-06-01 10:00:00"), Total: 1000, Status: dataset.StatusCompleted},
			{ID: 3, CustomerID: 2, OrderDate: at("2025-07-01 10:00:00"), Total: 9876543, Status: dataset.StatusCancelled},
		},
		OrderItems: []dataset.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 1, Quantity: 2, UnitPrice: 1000, LineTotal: 2000},
			{ID: 2, OrderID: 2, ProductID: 1, Quantity: 1, UnitPrice: 1000, LineTotal: 1000},
			{ID: 3, OrderID: 3, ProductID: 2, Quantity: 1, UnitPrice: 9876543, LineTotal: 9876543},
		},
	}
}

func TestNonCompletedOrderExcluded(t *testing.T) {
	ds := excludedDataset()
	require.NoError(t, dataset.Check(ds))
	db := loadInto(t, ds)
	ctx := context.Background()

	customers, err := report.TopCustomers(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []report.CustomerSpend{{CustomerID: 1, Name: "Ann Buyer", LifetimeSpend: 30, OrdersCount: 2}}, customers)

	products, err := report.TopProducts(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []report.ProductRevenue{{ProductID: 1, Name: "Useful Lamp", Category: "Home", Revenue: 30, UnitsSold: 3}}, products)

	months, err := report.MonthlyRevenue(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []report.MonthRevenue{
		{Month: "2025-06", Revenue: 10, OrderCount: 1},
		{Month: "2025-05", Revenue: 20, OrderCount: 1},
	}, months)

	shares, err := report.CategoryRevenueShare(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []report.CategoryShare{{Category: "Home", Revenue: 30, PctOfRevenue: 1}}, shares)

	for _, r := range mustRun(t, db, nil) {
		for _, row := range r.Rows {
			assert.NotContains(t, strings.Join(row, ","), "98765.43", r.Name)
		}
	}
}

func TestTopRatedOrdersByUnroundedAverage(t *testing.T) {
	ds := excludedDataset()
	review := func(customer, rating int) dataset.Review {
		return dataset.Review{
			ID: len(ds.Reviews) + 1, ProductID: 1, CustomerID: customer, Rating: rating,
			Text: "fine", ReviewDate: at("2025-08-01 09:00:00"),
		}
	}
	for range 3 {
		ds.Reviews = append(ds.Reviews, review(1, 4))
	}
	// 999/250 = 3.996 rounds to 4.00 but is below Ann's 4.0.
	ds.Reviews = append(ds.Reviews, review(2, 3))
	for range 249 {
		ds.Reviews = append(ds.Reviews, review(2, 4))
	}
	require.NoError(t, dataset.Check(ds))
	db := loadInto(t, ds)

	rated, err := report.TopRatedCustomers(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rated, 2)
	assert.Equal(t, 1, rated[0].CustomerID)
	assert.Equal(t, 2, rated[1].CustomerID)
	assert.InDelta(t, 4.0, rated[1].AvgRating, 0.001)
	assert.Equal(t, 250, rated[1].ReviewCount)
}

func TestZeroRevenueShareIsZero(t *testing.T) {
	ds := excludedDataset()
	// Fully discounted completed lines: revenue exists as rows but sums to 0.
	for i := range ds.OrderItems[:2] {
		ds.OrderItems[i].DiscountPct = 100
		ds.OrderItems[i].LineTotal = 0
	}
	ds.Orders[0].Total, ds.Orders[1].Total = 0, 0
	require.NoError(t, dataset.Check(ds))
	db := loadInto(t, ds)

	shares, err := report.CategoryRevenueShare(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "Home", shares[0].Category)
	assert.Zero(t, shares[0].PctOfRevenue)
}

func TestNoCompletedOrders(t *testing.T) {
	ds := excludedDataset()
	ds.Orders[0].Status = dataset.StatusShipped
	ds.Orders[1].Status = dataset.StatusReturned
	db := loadInto(t, ds)

	results := mustRun(t, db, []string{"top_customers", "category_share", "monthly_revenue"})
	for _, r := range results {
		assert.Empty(t, r.Rows, r.Name)
	}
}

func mustRun(t *testing.T, db *gorm.DB, names []string) []report.Result {
	t.Helper()
	res, err := report.Run(context.Background(), db, names)
	require.NoError(t, err)
	return res
}

func TestRunSelectsQueries(t *testing.T) {
	db := loadInto(t, excludedDataset())

	all := mustRun(t, db, nil)
	require.Len(t, all, 5)
	assert.Equal(t, report.Names(), []string{all[0].Name, all[1].Name, all[2].Name, all[3].Name, all[4].Name})

	one := mustRun(t, db, []string{"category_share"})
	require.Len(t, one, 1)
	assert.Equal(t, [][]string{{"Home", "30.00", "1.0000"}}, one[0].Rows)

	_, err := report.Run(context.Background(), db, []string{"top_sellers"})
	assert.ErrorIs(t, err, report.ErrUnknownQuery)
}

func TestOpenWithoutDatabase(t *testing.T) {
	_, err := report.Open(database.SQLite, filepath.Join(t.TempDir(), "missing.db"))
	assert.ErrorIs(t, err, report.ErrNoDatabase)

	empty := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = report.Open(database.SQLite, empty)
	assert.ErrorIs(t, err, report.ErrNoDatabase)
}

func TestReadOnlyConnection(t *testing.T) {
	db := loadInto(t, excludedDataset())
	assert.Error(t, db.Exec("DELETE FROM reviews").Error)
}

func TestRender(t *testing.T) {
	db := loadInto(t, excludedDataset())
	results := mustRun(t, db, []string{"top_customers", "category_share"})

	var table bytes.Buffer
	require.NoError(t, report.Render(&table, report.FormatTable, results))
	assert.Contains(t, table.String(), "Top customers by spend\n======================\n")
	assert.Contains(t, table.String(), "customer_id  name       lifetime_spend  orders_count\n")
	assert.Contains(t, table.String(), "1            Ann Buyer  30.00           2\n")

	var csvOut bytes.Buffer
	require.NoError(t, report.Render(&csvOut, report.FormatCSV, results))
	assert.Equal(t, "# top_customers\ncustomer_id,name,lifetime_spend,orders_count\n1,Ann Buyer,30.00,2\n\n"+
		"# category_share\ncategory,revenue,pct_of_revenue\nHome,30.00,1.0000\n", csvOut.String())

	var jsonOut bytes.Buffer
	require.NoError(t, report.Render(&jsonOut, report.FormatJSON, results))
	var doc []struct {
		Query string           `json:"query"`
		Rows  []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, "category_share", doc[1].Query)
	assert.Equal(t, 1.0, doc[1].Rows[0]["pct_of_revenue"])

	assert.Error(t, report.Render(&bytes.Buffer{}, "xml", results))
}

func TestWriteFiles(t *testing.T) {
	db := loadInto(t, excludedDataset())
	results := mustRun(t, db, nil)
	out := storage.NewLocal(t.TempDir())

	written, err := report.WriteFiles(out, report.FormatCSV, results)
	require.NoError(t, err)
	require.Len(t, written, 5)
	assert.Equal(t, out.Location("top_customers.csv"), written[0])

	b, err := out.Get("monthly_revenue.csv")
	require.NoError(t, err)
	assert.Equal(t, "month,revenue,order_count\n2025-06,10.00,1\n2025-05,20.00,1\n", string(b))
}
