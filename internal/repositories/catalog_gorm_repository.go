package repositories

import (
	"context"
	"errors"
	"fmt"

	"foodtasker/internal/models"

	"gorm.io/gorm"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{
		db: db,
	}
}

// ListRestaurants retrieves all restaurants, newest first.
func (r *GORMCatalogRepository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to get all restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant retrieves a single restaurant by its ID.
func (r *GORMCatalogRepository) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("restaurant with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get restaurant by ID %d: %w", id, err)
	}
	return &restaurant, nil
}

// ListMeals retrieves the meals of one restaurant, newest first.
func (r *GORMCatalogRepository) ListMeals(ctx context.Context, restaurantID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("id DESC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get meals for restaurant %d: %w", restaurantID, err)
	}
	return meals, nil
}

// GetMealsByIDs loads the meals with the given IDs in a single query.
func (r *GORMCatalogRepository) GetMealsByIDs(ctx context.Context, ids []uint) (map[uint]models.Meal, error) {
	result := make(map[uint]models.Meal, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var meals []models.Meal
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to get meals by IDs: %w", err)
	}
	for _, m := range meals {
		result[m.ID] = m
	}
	return result, nil
}

// CreateMeal adds a meal to a restaurant's menu.
func (r *GORMCatalogRepository) CreateMeal(ctx context.Context, meal *models.Meal) error {
	if err := r.db.WithContext(ctx).Create(meal).Error; err != nil {
		return fmt.Errorf("failed to create meal: %w", err)
	}
	return nil
}
