package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// isoMillis is the timestamp layout of JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// HealthResponse is the envelope plus a top-level timestamp, which uptime
// checks read directly.
type HealthResponse struct {
	Envelope
	Timestamp string `json:"timestamp"`
}

// HandleHealth reports that the server is up.
func HandleHealth(c *fiber.Ctx) error {
	now := time.Now().UTC().Format(isoMillis)
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Envelope: Envelope{
			Success: true,
			Message: "Server is running smoothly",
			Data:    fiber.Map{"timestamp": now},
		},
		Timestamp: now,
	})
}
