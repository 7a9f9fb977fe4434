package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"foodtasker/internal/models"
	"foodtasker/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	localCustomer   = "customer"
	localRestaurant = "restaurant"
)

// TokenResolver maps an access token to the caller's profile.
type TokenResolver interface {
	ResolveCustomer(ctx context.Context, token string) (*models.Customer, error)
	ResolveRestaurant(ctx context.Context, token string) (*models.Restaurant, error)
}

// AccessToken extracts the bearer credential from the access_token query or
// form parameter, falling back to an "Authorization: Bearer" header.
func AccessToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.FormValue("access_token")); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func reject(c *fiber.Ctx, err error) error {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "failed",
			"error":  authErr.Message,
		})
	}
	log.Printf("Token resolution failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status": "failed",
		"error":  "Could not authenticate request.",
	})
}

// CustomerRequired rejects requests whose token does not belong to a customer.
func CustomerRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer, err := resolver.ResolveCustomer(c.UserContext(), AccessToken(c))
		if err != nil {
			return reject(c, err)
		}
		c.Locals(localCustomer, customer)
		return c.Next()
	}
}

// RestaurantRequired rejects requests whose token does not belong to a restaurant.
func RestaurantRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurant, err := resolver.ResolveRestaurant(c.UserContext(), AccessToken(c))
		if err != nil {
			return reject(c, err)
		}
		c.Locals(localRestaurant, restaurant)
		return c.Next()
	}
}

// Customer returns the customer resolved by CustomerRequired.
func Customer(c *fiber.Ctx) *models.Customer {
	customer, _ := c.Locals(localCustomer).(*models.Customer)
	return customer
}

// Restaurant returns the restaurant resolved by RestaurantRequired.
func Restaurant(c *fiber.Ctx) *models.Restaurant {
	restaurant, _ := c.Locals(localRestaurant).(*models.Restaurant)
	return restaurant
}
