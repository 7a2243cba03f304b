package handlers

import (
	"errors"
	"time"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"
	"fraudlens/internal/services/prediction"
	"fraudlens/internal/utils/response"
	"fraudlens/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PredictionHandler struct {
	service prediction.Service
	logger  *zap.Logger
	version string
	now     func() time.Time
}

func NewPredictionHandler(service prediction.Service, logger *zap.Logger, version string) *PredictionHandler {
	return &PredictionHandler{
		service: service,
		logger:  logging.OrNop(logger),
		version: version,
		now:     time.Now,
	}
}

func (h *PredictionHandler) Predict(c *fiber.Ctx) error {
	var input models.TransactionFeatures
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Struct(input)
	if !v.Valid() {
		return response.ValidationError(c, v.Errors)
	}

	result, err := h.service.Predict(c.UserContext(), input, c.IP())
	if err != nil {
		return h.predictionError(c, "Prediction failed", err)
	}
	return c.JSON(result)
}

func (h *PredictionHandler) PredictBatch(c *fiber.Ctx) error {
	var input models.BatchPredictionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	switch {
	case len(input.Transactions) == 0:
		return response.BadRequest(c, prediction.ErrEmptyBatch.Error())
	case len(input.Transactions) > prediction.MaxBatchSize:
		return response.BadRequest(c, prediction.ErrBatchTooLarge.Error())
	}

	v := validation.New()
	v.Struct(input)
	if !v.Valid() {
		return response.ValidationError(c, v.Errors)
	}

	resp, err := h.service.PredictBatch(c.UserContext(), input.Transactions, c.IP())
	if err != nil {
		return h.predictionError(c, "Batch prediction failed", err)
	}
	return c.JSON(resp)
}

func (h *PredictionHandler) predictionError(c *fiber.Ctx, prefix string, err error) error {
	switch {
	case errors.Is(err, prediction.ErrModelNotLoaded):
		return response.ServiceUnavailable(c, "Model not loaded")
	case errors.Is(err, prediction.ErrEmptyBatch), errors.Is(err, prediction.ErrBatchTooLarge):
		return response.BadRequest(c, err.Error())
	default:
		h.logger.Error(prefix, zap.Error(err))
		return response.ServerError(c, prefix+": "+err.Error())
	}
}

func (h *PredictionHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		h.logger.Error("stats error", zap.Error(err))
		return response.ServerError(c, "Failed to get stats")
	}
	return response.SuccessAt(c, stats, h.now())
}

func (h *PredictionHandler) Recent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", prediction.DefaultRecentLimit)

	records, err := h.service.Recent(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("recent predictions error", zap.Error(err))
		return response.ServerError(c, "Failed to get recent predictions")
	}
	return response.List(c, records, len(records))
}
