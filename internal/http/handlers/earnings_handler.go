package handlers

import (
	"github.com/clipfund/backend/internal/http/dto"
	"github.com/clipfund/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EarningsHandler struct {
	earningsService *services.EarningsService
	log             *zap.Logger
}

func NewEarningsHandler(earningsService *services.EarningsService, log *zap.Logger) *EarningsHandler {
	return &EarningsHandler{earningsService: earningsService, log: log}
}

// GetEstimate returns the earnings view for one submission: approximate while
// the campaign runs, confirmed after distribution.
func (h *EarningsHandler) GetEstimate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	est, err := h.earningsService.EstimateForSubmission(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: est})
}
