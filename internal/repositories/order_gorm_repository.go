package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodtasker/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func openOrders(db *gorm.DB, customerID uint) *gorm.DB {
	return db.Model(&models.Order{}).
		Where("customer_id = ? AND status <> ?", customerID, models.StatusDelivered)
}

// HasOpenOrder reports whether the customer has any order that is not delivered.
func (r *GORMOrderRepository) HasOpenOrder(ctx context.Context, customerID uint) (bool, error) {
	var count int64
	if err := openOrders(r.db.WithContext(ctx), customerID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check open orders for customer %d: %w", customerID, err)
	}
	return count > 0, nil
}

// CreateWithDetails inserts the order and its details in one transaction.
func (r *GORMOrderRepository) CreateWithDetails(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := openOrders(tx, order.CustomerID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOpenOrderExists
		}
		return tx.Create(order).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrOpenOrderExists), errors.Is(err, gorm.ErrDuplicatedKey):
		// The partial unique index is the last line against concurrent placements.
		return ErrOpenOrderExists
	default:
		return fmt.Errorf("failed to create order: %w", err)
	}
}

// GetByID retrieves a single order with its details.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Details").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// LatestForCustomer returns the most recently created order of a customer,
// whatever its status.
func (r *GORMOrderRepository) LatestForCustomer(ctx context.Context, customerID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Restaurant").
		Preload("Details.Meal").
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("latest order for customer %d: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest order for customer %d: %w", customerID, err)
	}
	return &order, nil
}

// CountForRestaurantSince counts the restaurant's orders created strictly after since.
func (r *GORMOrderRepository) CountForRestaurantSince(ctx context.Context, restaurantID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("restaurant_id = ? AND created_at > ?", restaurantID, since.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orders for restaurant %d: %w", restaurantID, err)
	}
	return count, nil
}

// UpdateStatus performs a compare-and-set on the order status.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) error {
	updates := map[string]interface{}{"status": to}
	if to == models.StatusOnTheWay {
		updates["picked_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
