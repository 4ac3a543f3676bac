package models

// Product is one row of the products table.
type Product struct {
	ID       int     `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
	Name     string  `gorm:"size:255;not null"                                json:"name"`
	Category string  `gorm:"size:50;not null"                                 json:"category"`
	Price    float64 `gorm:"type:numeric(12,2);not null"                      json:"price"`
	SKU      string  `gorm:"size:32;not null"                                 json:"sku"`
}

func (Product) TableName() string { return "products" }

// Review belongs to a product and a customer.
type Review struct {
	ID         int    `gorm:"column:review_id;primaryKey;autoIncrement:false" json:"review_id"`
	ProductID  int    `gorm:"not null;index:idx_reviews_product"              json:"product_id"`
	CustomerID int    `gorm:"not null;index:idx_reviews_customer"             json:"customer_id"`
	Rating     int    `gorm:"not null"                                        json:"rating"`
	Text       string `gorm:"column:review_text;type:text"                    json:"review_text"`
	ReviewDate string `gorm:"type:varchar(19)"                                json:"review_date"`

	Product  Product  `gorm:"foreignKey:ProductID;references:ID"  json:"-"`
	Customer Customer `gorm:"foreignKey:CustomerID;references:ID" json:"-"`
}

func (Review) TableName() string { return "reviews" }
