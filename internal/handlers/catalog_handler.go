package handlers

import (
	"foodtasker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves restaurant and meal listings.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// HandleListRestaurants returns {"restaurants": [...]}, newest first.
func (h *CatalogHandler) HandleListRestaurants(c *fiber.Ctx) error {
	restaurants, err := h.service.ListRestaurants(c.UserContext())
	if err != nil {
		return failed(c, err)
	}
	return c.JSON(fiber.Map{"restaurants": restaurants})
}

// HandleListMeals returns {"meals": [...]} for one restaurant, newest first.
func (h *CatalogHandler) HandleListMeals(c *fiber.Ctx) error {
	restaurantID, err := c.ParamsInt("restaurant_id")
	if err != nil || restaurantID <= 0 {
		return failed(c, &services.NotFoundError{Message: services.MsgRestaurantNotFound})
	}
	meals, err := h.service.ListMeals(c.UserContext(), uint(restaurantID))
	if err != nil {
		return failed(c, err)
	}
	return c.JSON(fiber.Map{"meals": meals})
}
