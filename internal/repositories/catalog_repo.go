package repositories

import (
	"context"

	"foodtasker/internal/models"
)

// CatalogRepository defines the interface for restaurant and meal data access.
type CatalogRepository interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error)
	ListMeals(ctx context.Context, restaurantID uint) ([]models.Meal, error)
	// GetMealsByIDs returns the meals found among ids, keyed by ID. Missing
	// ids are simply absent from the result.
	GetMealsByIDs(ctx context.Context, ids []uint) (map[uint]models.Meal, error)
	CreateMeal(ctx context.Context, meal *models.Meal) error
}
