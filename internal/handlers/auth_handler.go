package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"foodtasker/internal/models"
	"foodtasker/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Role     string `json:"role" form:"role" validate:"required,oneof=customer restaurant"`
	Name     string `json:"name" form:"name" validate:"required,max=500"`
	Phone    string `json:"phone" form:"phone" validate:"omitempty,max=500"`
	Address  string `json:"address" form:"address" validate:"omitempty,max=500"`
	Logo     string `json:"logo" form:"logo" validate:"omitempty,max=500"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (h *AuthHandler) validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// HandleRegister registers a customer or a restaurant user.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return h.validationFailed(c, err)
	}

	user := &models.User{Username: req.Username, Email: req.Email, Password: req.Password}
	var err error
	if req.Role == "restaurant" {
		err = h.authService.RegisterRestaurant(c.UserContext(), user, &models.Restaurant{
			Name: req.Name, Phone: req.Phone, Address: req.Address, Logo: req.Logo,
		})
	} else {
		err = h.authService.RegisterCustomer(c.UserContext(), user, &models.Customer{
			Name: req.Name, Phone: req.Phone, Address: req.Address,
		})
	}
	if err != nil {
		var conflictErr *services.ConflictError
		if errors.As(err, &conflictErr) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   conflictErr.Message,
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"role":    req.Role,
	})
}

// HandleLogin handles user login and issues an access token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return h.validationFailed(c, err)
	}

	issued, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		var authErr *services.AuthError
		if errors.As(err, &authErr) {
			log.Printf("Failed login for user %s", req.Username)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
				"error":   authErr.Message,
			})
		}
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
		})
	}

	return c.JSON(fiber.Map{
		"access_token": issued.Token,
		"expires":      issued.Expires.Format(time.RFC3339),
	})
}
