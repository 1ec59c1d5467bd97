package handlers

import (
	"strconv"

	"github.com/clipfund/backend/internal/http/dto"
	"github.com/clipfund/backend/internal/middleware"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/clipfund/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	log               *zap.Logger
}

func NewSubmissionHandler(submissionService *services.SubmissionService, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService, log: log}
}

func (h *SubmissionHandler) CreateSubmission(c *fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_id"})
	}

	sub, err := h.submissionService.CreateSubmission(c.Context(), middleware.GetUserID(c), campaignID, req.PostURL)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: sub})
}

func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	sub, err := h.submissionService.GetSubmission(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: sub})
}

func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	filter := repositories.SubmissionFilter{Limit: 100}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("campaign_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign_id"})
		}
		filter.CampaignID = &id
	}
	if c.Query("mine") == "true" {
		userID := middleware.GetUserID(c)
		filter.CreatorUserID = &userID
	}

	subs, err := h.submissionService.ListSubmissions(c.Context(), filter)
	if err != nil {
		h.log.Error("list submissions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: subs})
}

func (h *SubmissionHandler) ReviewSubmission(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	var req dto.ReviewSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if err := h.submissionService.ReviewSubmission(c.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c), req.Approve); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
