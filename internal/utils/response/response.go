package response

import (
	"time"

	"fraudlens/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

// Success wraps data in the {"status":"success","data":...} envelope.
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// SuccessAt is Success with a generation timestamp.
func SuccessAt(c *fiber.Ctx, data interface{}, at time.Time) error {
	return c.JSON(fiber.Map{
		"status":    "success",
		"data":      data,
		"timestamp": at.UTC().Format(time.RFC3339Nano),
	})
}

// List wraps a slice together with its length.
func List(c *fiber.Ctx, data interface{}, count int) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"count":  count,
		"data":   data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusServiceUnavailable, message)
}

func TooManyRequests(c *fiber.Ctx) error {
	return Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
}

func ValidationError(c *fiber.Ctx, errs []validation.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Invalid input",
		"detail": errs,
	})
}
