// Package report runs the fixed set of read-only analytical queries against
// a loaded store and renders their results.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/pkg/collection"
	"github.com/shashiranjanraj/ecomsynth/pkg/database"
)

var (
	ErrUnknownQuery = errors.New("report: unknown query")
	ErrNoDatabase   = errors.New("report: no loaded database")
)

type CustomerSpend struct {
	CustomerID    int     `json:"customer_id"`
	Name          string  `json:"name"`
	LifetimeSpend float64 `json:"lifetime_spend"`
	OrdersCount   int     `json:"orders_count"`
}

type ProductRevenue struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Revenue   float64 `json:"revenue"`
	UnitsSold int     `json:"units_sold"`
}

type MonthRevenue struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"order_count"`
}

type RatedCustomer struct {
	CustomerID  int     `json:"customer_id"`
	Name        string  `json:"name"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

type CategoryShare struct {
	Category     string  `json:"category"`
	Revenue      float64 `json:"revenue"`
	PctOfRevenue float64 `json:"pct_of_revenue"`
}

func scan[T any](ctx context.Context, db *gorm.DB, sql string) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Raw(sql).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func TopCustomers(ctx context.Context, db *gorm.DB) ([]CustomerSpend, error) {
	return scan[CustomerSpend](ctx, db, topCustomersSQL)
}

func TopProducts(ctx context.Context, db *gorm.DB) ([]ProductRevenue, error) {
	return scan[ProductRevenue](ctx, db, topProductsSQL)
}

func MonthlyRevenue(ctx context.Context, db *gorm.DB) ([]MonthRevenue, error) {
	return scan[MonthRevenue](ctx, db, monthlyRevenueSQL)
}

func TopRatedCustomers(ctx context.Context, db *gorm.DB) ([]RatedCustomer, error) {
	return scan[RatedCustomer](ctx, db, topRatedCustomersSQL)
}

// CategoryRevenueShare reports a share of 0 for every category when
// completed revenue is zero.
func CategoryRevenueShare(ctx context.Context, db *gorm.DB) ([]CategoryShare, error) {
	return scan[CategoryShare](ctx, db, categoryShareSQL)
}

// Result is one executed query ready for rendering.
type Result struct {
	Name   string
	Title  string
	Header []string
	Rows   [][]string
	Data   any
}

// Query is a named entry of the query set.
type Query struct {
	Name  string
	Title string
	run   func(ctx context.Context, db *gorm.DB) (Result, error)
}

func money(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
func ratio(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }
func itoa(n int) string      { return strconv.Itoa(n) }

func query[T any](name, title string, header []string, fetch func(context.Context, *gorm.DB) ([]T, error), row func(T) []string) Query {
	return Query{
		Name:  name,
		Title: title,
		run: func(ctx context.Context, db *gorm.DB) (Result, error) {
			data, err := fetch(ctx, db)
			if err != nil {
				return Result{}, fmt.Errorf("report: %s: %w", name, err)
			}
			if data == nil {
				data = []T{}
			}
			return Result{Name: name, Title: title, Header: header, Rows: collection.Map(data, row), Data: data}, nil
		},
	}
}

// Queries lists the query set in display order.
var Queries = []Query{
	query("top_customers", "Top customers by spend",
		[]string{"customer_id", "name", "lifetime_spend", "orders_count"},
		TopCustomers, func(r CustomerSpend) []string {
			return []string{itoa(r.CustomerID), r.Name, money(r.LifetimeSpend), itoa(r.OrdersCount)}
		}),
	query("top_products", "Top products by revenue",
		[]string{"product_id", "name", "category", "revenue", "units_sold"},
		TopProducts, func(r ProductRevenue) []string {
			return []string{itoa(r.ProductID), r.Name, r.Category, money(r.Revenue), itoa(r.UnitsSold)}
		}),
	query("monthly_revenue", "Monthly revenue",
		[]string{"month", "revenue", "order_count"},
		MonthlyRevenue, func(r MonthRevenue) []string {
			return []string{r.Month, money(r.Revenue), itoa(r.OrderCount)}
		}),
	query("top_rated_customers", "Top-rated customers",
		[]string{"customer_id", "name", "avg_rating", "review_count"},
		TopRatedCustomers, func(r RatedCustomer) []string {
			return []string{itoa(r.CustomerID), r.Name, money(r.AvgRating), itoa(r.ReviewCount)}
		}),
	query("category_share", "Category revenue share",
		[]string{"category", "revenue", "pct_of_revenue"},
		CategoryRevenueShare, func(r CategoryShare) []string {
			return []string{r.Category, money(r.Revenue), ratio(r.PctOfRevenue)}
		}),
}

// Names returns the query names in display order.
func Names() []string {
	return collection.Map(Queries, func(q Query) string { return q.Name })
}

// Lookup resolves names to queries; no names selects every query.
func Lookup(names []string) ([]Query, error) {
	if len(names) == 0 {
		return Queries, nil
	}
	byName := collection.KeyBy(Queries, func(q Query) string { return q.Name })
	out := make([]Query, 0, len(names))
	for _, n := range names {
		q, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownQuery, n, Names())
		}
		out = append(out, q)
	}
	return out, nil
}

// Run executes the named queries, each independently, in the given order.
func Run(ctx context.Context, db *gorm.DB, names []string) ([]Result, error) {
	qs, err := Lookup(names)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(qs))
	for _, q := range qs {
		res, err := q.run(ctx, db)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Open connects read-only to a store produced by the loader.
func Open(driver, dsn string) (*gorm.DB, error) {
	if driver == database.SQLite {
		if st, err := os.Stat(dsn); err != nil || st.IsDir() {
			return nil, fmt.Errorf("%w: %s (run `ecomsynth load` first)", ErrNoDatabase, dsn)
		}
	}
	db, err := database.Open(driver, dsn, database.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	for _, table := range []string{"customers", "products", "orders", "order_items", "reviews"} {
		if !db.Migrator().HasTable(table) {
			_ = database.Close(db)
			return nil, fmt.Errorf("%w: table %s missing in %s", ErrNoDatabase, table, dsn)
		}
	}
	return db, nil
}
