package repositories

import (
	"context"
	"time"

	"foodtasker/internal/models"
)

// UserRepository defines the interface for user and profile data access.
type UserRepository interface {
	// CreateCustomer stores the user together with its customer profile.
	CreateCustomer(ctx context.Context, user *models.User, customer *models.Customer) error
	// CreateRestaurant stores the user together with its restaurant profile.
	CreateRestaurant(ctx context.Context, user *models.User, restaurant *models.Restaurant) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetCustomerByUserID(ctx context.Context, userID uint) (*models.Customer, error)
	GetRestaurantByUserID(ctx context.Context, userID uint) (*models.Restaurant, error)
}

// TokenRepository defines the interface for access token storage.
type TokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	// FindValid returns the token only if it has not expired at now.
	FindValid(ctx context.Context, token string, now time.Time) (*models.AccessToken, error)
}
