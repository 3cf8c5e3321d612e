package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"stylesync/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(c *fiber.Ctx, status int, message string, err error) error {
	env := Envelope{Message: message}
	if err != nil {
		env.Error = err.Error()
	}
	return c.Status(status).JSON(env)
}

func failInternal(c *fiber.Ctx, message string, err error) error {
	slog.ErrorContext(c.UserContext(), message, "method", c.Method(), "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, message, err)
}

// parseBody decodes the JSON body into req and validates it. On failure the
// 400 response has already been written and handled is true.
func parseBody(c *fiber.Ctx, validate *validator.Validate, req any) (handled bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return true, fail(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return true, fail(c, fiber.StatusBadRequest, "Validation failed", err)
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return true, c.Status(fiber.StatusBadRequest).JSON(Envelope{
			Message: "Validation failed",
			Errors:  errorMessages,
		})
	}
	return false, nil
}

// parsePage reads the optional limit and offset query parameters.
func parsePage(c *fiber.Ctx) (models.Page, error) {
	var p models.Page
	for name, dst := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return models.Page{}, fmt.Errorf("%s must be a non-negative integer", name)
		}
		*dst = n
	}
	return p, nil
}

// ErrorHandler renders errors that escape handlers (unknown routes, panics
// caught by the recover middleware) as envelopes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		message = fe.Message
	} else {
		slog.ErrorContext(c.UserContext(), "unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return fail(c, status, message, err)
}
