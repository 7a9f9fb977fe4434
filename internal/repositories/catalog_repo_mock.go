package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"foodtasker/internal/models"
)

// MockCatalogRepository is an in-memory implementation of CatalogRepository.
type MockCatalogRepository struct {
	restaurants map[uint]models.Restaurant
	meals       map[uint]models.Meal
	nextMealID  uint
	mu          sync.RWMutex
}

// NewMockCatalogRepository creates a new instance of MockCatalogRepository.
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		restaurants: make(map[uint]models.Restaurant),
		meals:       make(map[uint]models.Meal),
	}
}

// AddRestaurant stores a restaurant under its own ID.
func (r *MockCatalogRepository) AddRestaurant(restaurant models.Restaurant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restaurants[restaurant.ID] = restaurant
}

// ListRestaurants returns all restaurants, newest first.
func (r *MockCatalogRepository) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Restaurant, 0, len(r.restaurants))
	for _, rest := range r.restaurants {
		list = append(list, rest)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

// GetRestaurant returns a restaurant by its ID.
func (r *MockCatalogRepository) GetRestaurant(_ context.Context, id uint) (*models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rest, ok := r.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("restaurant with ID %d: %w", id, ErrNotFound)
	}
	return &rest, nil
}

// ListMeals returns the meals of one restaurant, newest first.
func (r *MockCatalogRepository) ListMeals(_ context.Context, restaurantID uint) ([]models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := []models.Meal{}
	for _, m := range r.meals {
		if m.RestaurantID == restaurantID {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

// GetMealsByIDs returns the meals found among ids.
func (r *MockCatalogRepository) GetMealsByIDs(_ context.Context, ids []uint) (map[uint]models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uint]models.Meal, len(ids))
	for _, id := range ids {
		if m, ok := r.meals[id]; ok {
			result[id] = m
		}
	}
	return result, nil
}

// CreateMeal adds a meal, assigning an ID if none is set.
func (r *MockCatalogRepository) CreateMeal(_ context.Context, meal *models.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if meal.ID == 0 {
		r.nextMealID++
		meal.ID = r.nextMealID
	} else if meal.ID > r.nextMealID {
		r.nextMealID = meal.ID
	}
	r.meals[meal.ID] = *meal
	return nil
}
