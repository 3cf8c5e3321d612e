package middleware

import (
	"log/slog"
	"strings"

	"stylesync/internal/handlers"
	"stylesync/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the token claims under handlers.ClaimsKey.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(handlers.Envelope{
				Message: "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return c.Status(fiber.StatusUnauthorized).JSON(handlers.Envelope{
				Message: "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			slog.DebugContext(c.UserContext(), "jwt validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(handlers.Envelope{
				Message: "Invalid or expired token",
				Error:   err.Error(),
			})
		}

		c.Locals(handlers.ClaimsKey, claims)
		return c.Next()
	}
}
