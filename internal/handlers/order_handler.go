package handlers

import (
	"foodtasker/internal/middleware"
	"foodtasker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests of customers about their orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// HandlePlaceOrder places an order for the authenticated customer.
//
// Form params: restaurant_id, address, order_details (JSON array of
// {"meal_id", "quantity"}), stripe_token. The stripe token is accepted but
// no charge is made here.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	req := services.PlaceOrderRequest{
		RestaurantID: c.FormValue("restaurant_id"),
		Address:      c.FormValue("address"),
		OrderDetails: c.FormValue("order_details"),
	}

	if _, err := h.service.PlaceOrder(c.UserContext(), middleware.Customer(c), req); err != nil {
		return failed(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success"})
}

// HandleLatestOrder returns {"order": {...}} or {} when the customer has no orders.
func (h *OrderHandler) HandleLatestOrder(c *fiber.Ctx) error {
	order, err := h.service.LatestOrder(c.UserContext(), middleware.Customer(c))
	if err != nil {
		return failed(c, err)
	}
	if order == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(fiber.Map{"order": order})
}
