package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/app/models"
	"github.com/shashiranjanraj/ecomsynth/pkg/migration"
)

func init() {
	migration.Register("0001_create_customers_table", &createTable{model: &models.Customer{}})
	migration.Register("0002_create_products_table", &createTable{model: &models.Product{}})
	migration.Register("0003_create_orders_table", &createTable{model: &models.Order{}})
	migration.Register("0004_create_order_items_table", &createTable{model: &models.OrderItem{}})
	migration.Register("0005_create_reviews_table", &createTable{model: &models.Review{}})
}

type tabler interface{ TableName() string }

// createTable creates one model's table together with its foreign keys
// and indexes.
type createTable struct {
	model tabler
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.model.TableName())
}
