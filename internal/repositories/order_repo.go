package repositories

import (
	"context"
	"time"

	"foodtasker/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	HasOpenOrder(ctx context.Context, customerID uint) (bool, error)
	// CreateWithDetails persists the order and all of its details atomically.
	// It returns ErrOpenOrderExists if the customer already has an
	// undelivered order at commit time.
	CreateWithDetails(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	LatestForCustomer(ctx context.Context, customerID uint) (*models.Order, error)
	CountForRestaurantSince(ctx context.Context, restaurantID uint, since time.Time) (int64, error)
	// UpdateStatus moves an order from one status to another. It returns
	// ErrStaleStatus if the order is no longer in status from.
	UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) error
}
