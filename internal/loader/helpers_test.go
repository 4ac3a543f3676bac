package loader

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/app/models"
)

type gormDB struct{ *gorm.DB }

func (db *gormDB) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

type snapshot struct {
	Customers  []models.Customer
	Products   []models.Product
	Orders     []models.Order
	OrderItems []models.OrderItem
	Reviews    []models.Review
}

// snapshot reads every table ordered by primary key.
func (db *gormDB) snapshot(t *testing.T) snapshot {
	t.Helper()
	var s snapshot
	require.NoError(t, db.Order("customer_id").Find(&s.Customers).Error)
	require.NoError(t, db.Order("product_id").Find(&s.Products).Error)
	require.NoError(t, db.Order("order_id").Find(&s.Orders).Error)
	require.NoError(t, db.Order("order_item_id").Find(&s.OrderItems).Error)
	require.NoError(t, db.Order("review_id").Find(&s.Reviews).Error)
	return s
}
