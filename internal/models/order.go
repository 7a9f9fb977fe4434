package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the delivery stage of an order.
type OrderStatus string

const (
	StatusCooking   OrderStatus = "COOKING"
	StatusReady     OrderStatus = "READY"
	StatusOnTheWay  OrderStatus = "ON_THE_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
)

var statusRank = map[OrderStatus]int{
	StatusCooking:   1,
	StatusReady:     2,
	StatusOnTheWay:  3,
	StatusDelivered: 4,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Before reports whether s comes strictly earlier than other in the
// COOKING -> READY -> ON_THE_WAY -> DELIVERED sequence.
func (s OrderStatus) Before(other OrderStatus) bool {
	return statusRank[s] < statusRank[other]
}

// Order is one customer's request to a single restaurant. An order and its
// details are written together and never deleted.
type Order struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	CustomerID   uint            `json:"customer_id" gorm:"not null;index"`
	Customer     *Customer       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID uint            `json:"restaurant_id" gorm:"not null;index"`
	Restaurant   *Restaurant     `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Address      string          `json:"address" gorm:"type:varchar(500);not null"`
	Total        decimal.Decimal `json:"total" gorm:"type:numeric(10,2);not null"`
	Status       OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	Details      []OrderDetails  `json:"order_details" gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;index"`
	PickedAt     *time.Time      `json:"picked_at,omitempty"`
}

// OrderDetails is a single meal line of an order. SubTotal is frozen at
// order time and does not follow later price changes.
type OrderDetails struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	OrderID  uint            `json:"order_id" gorm:"not null;index"`
	MealID   uint            `json:"meal_id" gorm:"not null"`
	Meal     *Meal           `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	Quantity int             `json:"quantity" gorm:"not null"`
	SubTotal decimal.Decimal `json:"sub_total" gorm:"type:numeric(10,2);not null"`
}

// TableName keeps the singular model name readable while the table stays plural.
func (OrderDetails) TableName() string {
	return "order_details"
}
