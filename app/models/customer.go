// Package models holds the gorm models of the relational store. Dates are
// kept as ISO text so report queries can slice them the same way on every
// driver.
package models

// Customer is one row of the customers table.
type Customer struct {
	ID       int    `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customer_id"`
	Name     string `gorm:"size:255;not null"                                 json:"name"`
	Email    string `gorm:"size:255;not null;uniqueIndex:idx_customers_email" json:"email"`
	Phone    string `gorm:"size:32"                                           json:"phone"`
	Address  string `gorm:"size:255"                                          json:"address"`
	JoinDate string `gorm:"type:varchar(10)"                                  json:"join_date"`
}

func (Customer) TableName() string { return "customers" }

// CustomerLTV is the optional lifetime-value summary, derived from
// completed orders.
type CustomerLTV struct {
	CustomerID    int     `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customer_id"`
	Name          string  `gorm:"size:255"                                          json:"name"`
	LifetimeSpend float64 `gorm:"type:numeric(14,2);not null"                       json:"lifetime_spend"`
	OrdersCount   int     `gorm:"not null"                                          json:"orders_count"`
	AvgOrderValue float64 `gorm:"type:numeric(14,2);not null"                       json:"avg_order_value"`
	LastOrderDate *string `gorm:"type:varchar(19)"                                  json:"last_order_date"`
}

func (CustomerLTV) TableName() string { return "customer_ltv" }
