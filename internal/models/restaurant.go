package models

import "github.com/shopspring/decimal"

// Restaurant is the profile of a user that sells meals.
type Restaurant struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"-" gorm:"uniqueIndex;not null"`
	Name    string `json:"name" gorm:"type:varchar(500);not null"`
	Phone   string `json:"phone" gorm:"type:varchar(500)"`
	Address string `json:"address" gorm:"type:varchar(500)"`
	Logo    string `json:"logo" gorm:"type:varchar(500)"`
}

// Meal belongs to exactly one restaurant.
type Meal struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	RestaurantID     uint            `json:"restaurant_id" gorm:"not null;index"`
	Name             string          `json:"name" gorm:"type:varchar(500);not null"`
	ShortDescription string          `json:"short_description" gorm:"type:varchar(500)"`
	Image            string          `json:"image" gorm:"type:varchar(500)"`
	Price            decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
}
