// Package dataset defines the five synthetic e-commerce tables, their CSV
// encoding, and the consistency rules every generated dataset must satisfy.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingFile      = errors.New("dataset: missing file")
	ErrEmptyFile        = errors.New("dataset: empty file")
	ErrHeaderMismatch   = errors.New("dataset: header mismatch")
	ErrManifestMismatch = errors.New("dataset: manifest mismatch")
	ErrIncomplete       = errors.New("dataset: incomplete")
	ErrInconsistent     = errors.New("dataset: inconsistent")
)

// Layouts used in the CSV files.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Table names a CSV file of the dataset.
type Table string

const (
	Customers  Table = "customers"
	Products   Table = "products"
	Orders     Table = "orders"
	OrderItems Table = "order_items"
	Reviews    Table = "reviews"
)

// Tables lists every table parent-first: a table only references tables
// that appear before it.
var Tables = []Table{Customers, Products, Orders, OrderItems, Reviews}

// File returns the CSV file name of t.
func (t Table) File() string { return string(t) + ".csv" }

// Statuses an order may carry.
const (
	StatusCompleted = "completed"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
	StatusReturned  = "returned"
)

var Statuses = []string{StatusCompleted, StatusShipped, StatusCancelled, StatusReturned}

var Categories = []string{"Electronics", "Home", "Books", "Toys", "Clothing", "Sports", "Beauty"}

// Money is an amount in cents.
type Money int64

// MoneyFromFloat rounds f (in currency units) to the nearest cent.
func MoneyFromFloat(f float64) Money { return Money(math.Round(f * 100)) }

// ParseMoney parses "12.34", "12.3" or "12".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var c int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		if c, err = strconv.ParseInt(frac, 10, 64); err != nil || c < 0 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	m := Money(w*100 + c)
	if neg {
		m = -m
	}
	return m, nil
}

// String renders m with exactly two decimals.
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign, m = "-", -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, int64(m)/100, int64(m)%100)
}

// Float returns m in currency units.
func (m Money) Float() float64 { return float64(m) / 100 }

// LineTotal is quantity × unit price less discountPct percent, rounded
// half up to the cent.
func LineTotal(quantity int, unit Money, discountPct int) Money {
	gross := int64(quantity) * int64(unit) * int64(100-discountPct)
	return Money((gross + 50) / 100)
}

type Customer struct {
	ID       int
	Name     string
	Email    string
	Phone    string
	Address  string
	JoinDate time.Time
}

type Product struct {
	ID       int
	Name     string
	Category string
	Price    Money
	SKU      string
}

type Order struct {
	ID         int
	CustomerID int
	OrderDate  time.Time
	Total      Money
	Status     string
}

type OrderItem struct {
	ID          int
	OrderID     int
	ProductID   int
	Quantity    int
	UnitPrice   Money
	DiscountPct int
	LineTotal   Money
}

type Review struct {
	ID         int
	ProductID  int
	CustomerID int
	Rating     int
	Text       string
	ReviewDate time.Time
}

// Dataset is one complete generated run.
type Dataset struct {
	Customers  []Customer
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Reviews    []Review
}

// Rows returns the row count of t.
func (ds *Dataset) Rows(t Table) int {
	switch t {
	case Customers:
		return len(ds.Customers)
	case Products:
		return len(ds.Products)
	case Orders:
		return len(ds.Orders)
	case OrderItems:
		return len(ds.OrderItems)
	case Reviews:
		return len(ds.Reviews)
	}
	return 0
}
