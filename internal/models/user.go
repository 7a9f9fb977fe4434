package models

import "time"

// User represents an account that can log in. A user owns either a
// Customer or a Restaurant profile.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
}

// Customer is the profile of a user that places orders.
type Customer struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"-" gorm:"uniqueIndex;not null"`
	Name    string `json:"name" gorm:"type:varchar(500)"`
	Phone   string `json:"phone" gorm:"type:varchar(500)"`
	Address string `json:"address" gorm:"type:varchar(500)"`
}

// AccessToken is an issued bearer credential. A token is usable only while
// Expires lies in the future.
type AccessToken struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"uniqueIndex;type:varchar(512);not null"`
	UserID    uint      `gorm:"not null;index"`
	Expires   time.Time `gorm:"not null"`
	CreatedAt time.Time
}
