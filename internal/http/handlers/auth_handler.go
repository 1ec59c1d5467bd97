package handlers

import (
	"github.com/clipfund/backend/internal/auth"
	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/http/dto"
	"github.com/clipfund/backend/internal/rbac"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo *repositories.UserRepo
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepo, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, cfg: cfg, log: log}
}

// SSOLogin exchanges a signed login from the main platform for a session
// token. Admin status is derived from the configured handle list, never from
// the request.
func (h *AuthHandler) SSOLogin(c *fiber.Ctx) error {
	var req dto.SSOLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if h.cfg.SSOSharedSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "sso login is not configured"})
	}

	if err := auth.ValidateSSOLogin(req.Handle, req.Timestamp, req.Signature, h.cfg.SSOSharedSecret, h.cfg.SSOMaxAge); err != nil {
		h.log.Debug("sso validation failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	role := req.Role
	if !rbac.IsValidRole(role) || role == rbac.RoleAdmin {
		role = rbac.RoleCreator
	}
	if h.cfg.IsAdminHandle(req.Handle) {
		role = rbac.RoleAdmin
	}

	user, err := h.userRepo.UpsertByHandle(c.Context(), req.Handle, req.DisplayName, role)
	if err != nil {
		h.log.Error("failed to upsert user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Handle, user.Role, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{
		Token: token,
		User:  user,
	})
}
