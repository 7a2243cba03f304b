// Package middleware provides HTTP middleware components for the application.
// It includes request metrics and rate limiting for the fiber web framework.
package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPObserver records one finished request.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// RequestMetrics reports method, matched route, status and latency of every
// request. Errors returned by later handlers are counted with their fiber
// status code, or 500 when they carry none.
func RequestMetrics(observer HTTPObserver) fiber.Handler {
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
		observer.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
