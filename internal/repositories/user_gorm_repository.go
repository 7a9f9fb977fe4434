package repositories

import (
	"context"
	"errors"
	"fmt"

	"foodtasker/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

func (r *GORMUserRepository) createWithProfile(ctx context.Context, user *models.User, attach func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return attach(tx)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateCustomer creates a user and its customer profile in one transaction.
func (r *GORMUserRepository) CreateCustomer(ctx context.Context, user *models.User, customer *models.Customer) error {
	return r.createWithProfile(ctx, user, func(tx *gorm.DB) error {
		customer.UserID = user.ID
		return tx.Create(customer).Error
	})
}

// CreateRestaurant creates a user and its restaurant profile in one transaction.
func (r *GORMUserRepository) CreateRestaurant(ctx context.Context, user *models.User, restaurant *models.Restaurant) error {
	return r.createWithProfile(ctx, user, func(tx *gorm.DB) error {
		restaurant.UserID = user.ID
		return tx.Create(restaurant).Error
	})
}

func (r *GORMUserRepository) first(ctx context.Context, dest interface{}, what, query string, arg interface{}) error {
	if err := r.db.WithContext(ctx).First(dest, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s %v: %w", what, arg, ErrNotFound)
		}
		return fmt.Errorf("failed to get %s %v: %w", what, arg, err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.first(ctx, &user, "user with username", "username = ?", username); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.first(ctx, &user, "user with email", "email = ?", email); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.first(ctx, &user, "user with ID", "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCustomerByUserID retrieves the customer profile owned by a user.
func (r *GORMUserRepository) GetCustomerByUserID(ctx context.Context, userID uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.first(ctx, &customer, "customer for user", "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetRestaurantByUserID retrieves the restaurant profile owned by a user.
func (r *GORMUserRepository) GetRestaurantByUserID(ctx context.Context, userID uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.first(ctx, &restaurant, "restaurant for user", "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &restaurant, nil
}
