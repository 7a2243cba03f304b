package handlers

import (
	"fraudlens/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const apiName = "Credit Card Fraud Detection API"

// Root describes the API.
func (h *PredictionHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    apiName,
		"version": h.version,
		"status":  "running",
		"health":  "/health",
	})
}

// Health reports model and storage status. It always answers 200; a
// missing model shows up as status "degraded".
func (h *PredictionHandler) Health(c *fiber.Ctx) error {
	return c.JSON(h.service.Health(c.UserContext()))
}

func (h *PredictionHandler) ModelInfo(c *fiber.Ctx) error {
	return response.Success(c, h.service.ModelInfo())
}
