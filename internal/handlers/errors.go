package handlers

import (
	"errors"
	"log"

	"foodtasker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// failed writes {"status": "failed", "error": msg} with a status code that
// matches the error kind: 400 validation, 401 auth, 404 not found, 409
// conflict, 500 otherwise. Clients that only inspect the body keep working,
// since the shape is the same for every failure. Internal details are
// logged, never returned.
func failed(c *fiber.Ctx, err error) error {
	var (
		authErr        *services.AuthError
		validationErr  *services.ValidationError
		conflictErr    *services.ConflictError
		notFoundErr    *services.NotFoundError
		persistenceErr *services.PersistenceError
	)

	code := fiber.StatusInternalServerError
	message := "Internal server error."
	switch {
	case errors.As(err, &authErr):
		code, message = fiber.StatusUnauthorized, authErr.Message
	case errors.As(err, &validationErr):
		code, message = fiber.StatusBadRequest, validationErr.Message
	case errors.As(err, &conflictErr):
		code, message = fiber.StatusConflict, conflictErr.Message
	case errors.As(err, &notFoundErr):
		code, message = fiber.StatusNotFound, notFoundErr.Message
	case errors.As(err, &persistenceErr):
		message = "Could not save your request, please try again."
	}

	if code >= fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
	} else {
		log.Printf("Rejected %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"status": "failed",
		"error":  message,
	})
}
