package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"catalog/pkg/events"
	"catalog/pkg/metrics"
)

const CorrelationIDHeader = "X-Correlation-ID"

// NewCorrelationMiddleware carries the caller's correlation id, or a fresh
// one, into the user context so published events can reference the request.
func NewCorrelationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := strings.TrimSpace(c.Get(CorrelationIDHeader))
		if correlationID == "" {
			correlationID = events.GenerateCorrelationID()
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}
		c.SetUserContext(events.WithCorrelationID(userCtx, correlationID))
		c.Set(CorrelationIDHeader, correlationID)

		return c.Next()
	}
}

// NewMetricsMiddleware records every request under its route pattern.
func NewMetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.ObserveHTTP(c.Method(), c.Route().Path, status, started)
		return err
	}
}
