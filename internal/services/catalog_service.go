package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"foodtasker/internal/cache"
	"foodtasker/internal/models"
	"foodtasker/internal/repositories"
)

// CatalogService serves the read-only restaurant and meal listings.
type CatalogService struct {
	repo  repositories.CatalogRepository
	cache cache.Cache // nil disables caching
	ttl   time.Duration
}

// NewCatalogService creates a new CatalogService. c may be nil.
func NewCatalogService(repo repositories.CatalogRepository, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

// readThrough serves dest from the cache when possible and fills the cache
// from load otherwise. Cache failures only cost a trip to the database.
func (s *CatalogService) readThrough(ctx context.Context, key string, dest interface{}, load func() (interface{}, error)) error {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Catalog cache get %s failed: %v", key, err)
		} else if cached != "" {
			if err := json.Unmarshal([]byte(cached), dest); err == nil {
				return nil
			}
			log.Printf("Catalog cache entry %s is corrupt, reloading", key)
		}
	}

	value, err := load()
	if err != nil {
		return err
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
			log.Printf("Catalog cache set %s failed: %v", key, err)
		}
	}
	return nil
}

// ListRestaurants returns all restaurants, newest first.
func (s *CatalogService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	if s.cache == nil {
		return s.repo.ListRestaurants(ctx)
	}
	var restaurants []models.Restaurant
	err := s.readThrough(ctx, s.cache.Key("restaurants"), &restaurants, func() (interface{}, error) {
		return s.repo.ListRestaurants(ctx)
	})
	return restaurants, err
}

// ListMeals returns the meals of a restaurant, newest first.
func (s *CatalogService) ListMeals(ctx context.Context, restaurantID uint) ([]models.Meal, error) {
	if s.cache == nil {
		return s.repo.ListMeals(ctx, restaurantID)
	}
	var meals []models.Meal
	key := s.cache.Key("meals", strconv.FormatUint(uint64(restaurantID), 10))
	err := s.readThrough(ctx, key, &meals, func() (interface{}, error) {
		return s.repo.ListMeals(ctx, restaurantID)
	})
	return meals, err
}

// GetRestaurant returns a restaurant or a NotFoundError.
func (s *CatalogService) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	restaurant, err := s.repo.GetRestaurant(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgRestaurantNotFound}
	}
	return restaurant, err
}
