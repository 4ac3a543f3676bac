package loader

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/ecomsynth/app/models"
	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/pkg/collection"
)

// maxBindVars stays under sqlite's default limit on host parameters per
// statement.
const maxBindVars = 32000

// insertTable writes one table in chunks of at most batch rows.
func insertTable(tx *gorm.DB, ds *dataset.Dataset, t dataset.Table, batch int) (int, error) {
	switch t {
	case dataset.Customers:
		return insertRows(tx, ds, t, batch, collection.Map(ds.Customers, toCustomer))
	case dataset.Products:
		return insertRows(tx, ds, t, batch, collection.Map(ds.Products, toProduct))
	case dataset.Orders:
		return insertRows(tx, ds, t, batch, collection.Map(ds.Orders, toOrder))
	case dataset.OrderItems:
		return insertRows(tx, ds, t, batch, collection.Map(ds.OrderItems, toOrderItem))
	case dataset.Reviews:
		return insertRows(tx, ds, t, batch, collection.Map(ds.Reviews, toReview))
	}
	return 0, fmt.Errorf("loader: unknown table %s", t)
}

func insertRows[M any](tx *gorm.DB, ds *dataset.Dataset, t dataset.Table, batch int, rows []M) (int, error) {
	if perStmt := maxBindVars / len(dataset.Headers[t]); batch > perStmt {
		batch = perStmt
	}
	for _, chunk := range collection.Chunk(rows, batch) {
		if err := tx.Omit(clause.Associations).Create(&chunk).Error; err != nil {
			if isForeignKeyError(err) {
				return 0, foreignKeyError(ds, t, err)
			}
			return 0, fmt.Errorf("loader: insert %s: %w", t, err)
		}
	}
	return len(rows), nil
}

func isForeignKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint") || // sqlite
		strings.Contains(msg, "violates foreign key constraint") // postgres
}

// foreignKeyError names the first CSV row of t whose reference has no
// parent. Line numbers count the header as line 1.
func foreignKeyError(ds *dataset.Dataset, t dataset.Table, cause error) error {
	customers := idSet(ds.Customers, func(c dataset.Customer) int { return c.ID })
	products := idSet(ds.Products, func(p dataset.Product) int { return p.ID })
	orders := idSet(ds.Orders, func(o dataset.Order) int { return o.ID })

	missing := func(i int, col string, id int) error {
		return fmt.Errorf("%w: %s line %d: %s %d does not exist (%v)", ErrForeignKey, t.File(), i+2, col, id, cause)
	}
	switch t {
	case dataset.Orders:
		for i, o := range ds.Orders {
			if !customers[o.CustomerID] {
				return missing(i, "customer_id", o.CustomerID)
			}
		}
	case dataset.OrderItems:
		for i, it := range ds.OrderItems {
			if !orders[it.OrderID] {
				return missing(i, "order_id", it.OrderID)
			}
			if !products[it.ProductID] {
				return missing(i, "product_id", it.ProductID)
			}
		}
	case dataset.Reviews:
		for i, r := range ds.Reviews {
			if !products[r.ProductID] {
				return missing(i, "product_id", r.ProductID)
			}
			if !customers[r.CustomerID] {
				return missing(i, "customer_id", r.CustomerID)
			}
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrForeignKey, t.File(), cause)
}

func idSet[T any](rows []T, id func(T) int) map[int]bool {
	set := make(map[int]bool, len(rows))
	for _, r := range rows {
		set[id(r)] = true
	}
	return set
}

func toCustomer(c dataset.Customer) models.Customer {
	return models.Customer{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
		JoinDate: c.JoinDate.Format(dataset.DateLayout),
	}
}

func toProduct(p dataset.Product) models.Product {
	return models.Product{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price.Float(), SKU: p.SKU}
}

func toOrder(o dataset.Order) models.Order {
	return models.Order{
		ID: o.ID, CustomerID: o.CustomerID, OrderDate: o.OrderDate.Format(dataset.DateTimeLayout),
		Total: o.Total.Float(), Status: o.Status,
	}
}

func toOrderItem(i dataset.OrderItem) models.OrderItem {
	return models.OrderItem{
		ID: i.ID, OrderID: i.OrderID, ProductID: i.ProductID, Quantity: i.Quantity,
		UnitPrice: i.UnitPrice.Float(), DiscountPct: i.DiscountPct, LineTotal: i.LineTotal.Float(),
	}
}

func toReview(r dataset.Review) models.Review {
	return models.Review{
		ID: r.ID, ProductID: r.ProductID, CustomerID: r.CustomerID, Rating: r.Rating,
		Text: r.Text, ReviewDate: r.ReviewDate.Format(dataset.DateTimeLayout),
	}
}
