package middleware

import (
	"errors"
	"strconv"
	"time"

	"stylesync/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Metrics records request latency per route pattern, not per raw path, to
// keep label cardinality bounded.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Labels are retained by the collector; the ctx strings point into
		// buffers fasthttp reuses for the next request.
		route := utils.CopyString(c.Route().Path)
		if route == "" {
			route = "unknown"
		}
		metrics.HTTPRequestDuration.WithLabelValues(
			utils.CopyString(c.Method()),
			route,
			strconv.Itoa(status),
		).Observe(time.Since(start).Seconds())
		return err
	}
}
