package handlers

import (
	"net/url"

	"foodtasker/internal/middleware"
	"foodtasker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RestaurantHandler handles requests made by restaurant owners.
type RestaurantHandler struct {
	service *services.OrderService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(service *services.OrderService) *RestaurantHandler {
	return &RestaurantHandler{service: service}
}

// HandleNotifications returns {"notification": n}, the number of orders the
// restaurant received after last_request_time.
func (h *RestaurantHandler) HandleNotifications(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("last_request_time"))
	if err != nil {
		raw = c.Params("last_request_time")
	}
	since, err := services.ParseSince(raw)
	if err != nil {
		return failed(c, err)
	}

	count, err := h.service.CountNewOrders(c.UserContext(), middleware.Restaurant(c), since)
	if err != nil {
		return failed(c, err)
	}
	return c.JSON(fiber.Map{"notification": count})
}

// HandleUpdateOrderStatus moves one of the restaurant's orders forward.
func (h *RestaurantHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil || orderID <= 0 {
		return failed(c, &services.NotFoundError{Message: "Order not found."})
	}

	var body struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return failed(c, &services.ValidationError{Field: "status", Message: "Status is required.", Err: err})
	}

	order, err := h.service.AdvanceOrderStatus(c.UserContext(), middleware.Restaurant(c), uint(orderID), body.Status)
	if err != nil {
		return failed(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "order": order})
}
