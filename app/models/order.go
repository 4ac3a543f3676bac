package models

// Order belongs to a customer; Total is the sum of its items.
type Order struct {
	ID         int     `gorm:"column:order_id;primaryKey;autoIncrement:false" json:"order_id"`
	CustomerID int     `gorm:"not null;index:idx_orders_customer"             json:"customer_id"`
	OrderDate  string  `gorm:"type:varchar(19);index:idx_orders_date"         json:"order_date"`
	Total      float64 `gorm:"type:numeric(12,2);not null"                    json:"total"`
	Status     string  `gorm:"size:20;not null;index:idx_orders_status"       json:"status"`

	Customer Customer `gorm:"foreignKey:CustomerID;references:ID" json:"-"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one line of an order.
type OrderItem struct {
	ID          int     `gorm:"column:order_item_id;primaryKey;autoIncrement:false" json:"order_item_id"`
	OrderID     int     `gorm:"not null;index:idx_items_order"                      json:"order_id"`
	ProductID   int     `gorm:"not null;index:idx_items_product"                    json:"product_id"`
	Quantity    int     `gorm:"not null"                                            json:"quantity"`
	UnitPrice   float64 `gorm:"type:numeric(12,2);not null"                         json:"unit_price"`
	DiscountPct int     `gorm:"not null;default:0"                                  json:"discount_pct"`
	LineTotal   float64 `gorm:"type:numeric(12,2);not null"                         json:"line_total"`

	Order   Order   `gorm:"foreignKey:OrderID;references:ID"   json:"-"`
	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"-"`
}

func (OrderItem) TableName() string { return "order_items" }
