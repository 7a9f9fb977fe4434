package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"foodtasker/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[uint]models.Order
	nextID uint
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint]models.Order),
	}
}

func (r *MockOrderRepository) hasOpenOrder(customerID uint) bool {
	for _, o := range r.orders {
		if o.CustomerID == customerID && o.Status != models.StatusDelivered {
			return true
		}
	}
	return false
}

// HasOpenOrder reports whether the customer has any order that is not delivered.
func (r *MockOrderRepository) HasOpenOrder(_ context.Context, customerID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasOpenOrder(customerID), nil
}

// CreateWithDetails stores the order and its details under a single lock.
func (r *MockOrderRepository) CreateWithDetails(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasOpenOrder(order.CustomerID) {
		return ErrOpenOrderExists
	}
	r.nextID++
	order.ID = r.nextID
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	details := make([]models.OrderDetails, len(order.Details))
	for i, d := range order.Details {
		d.ID = uint(i + 1)
		d.OrderID = order.ID
		details[i] = d
	}
	order.Details = details

	stored := *order
	stored.Details = append([]models.OrderDetails(nil), details...)
	r.orders[order.ID] = stored
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
	}
	return &order, nil
}

// LatestForCustomer returns the newest order of a customer.
func (r *MockOrderRepository) LatestForCustomer(_ context.Context, customerID uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			list = append(list, o)
		}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("latest order for customer %d: %w", customerID, ErrNotFound)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return &list[0], nil
}

// CountForRestaurantSince counts the restaurant's orders created strictly after since.
func (r *MockOrderRepository) CountForRestaurantSince(_ context.Context, restaurantID uint, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, o := range r.orders {
		if o.RestaurantID == restaurantID && o.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// UpdateStatus updates the status of an order if it is still in status from.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id uint, from, to models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
	}
	if order.Status != from {
		return ErrStaleStatus
	}
	order.Status = to
	if to == models.StatusOnTheWay {
		now := time.Now().UTC()
		order.PickedAt = &now
	}
	r.orders[id] = order
	return nil
}
