package http

import (
	"time"

	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/http/handlers"
	"github.com/clipfund/backend/internal/middleware"
	"github.com/clipfund/backend/internal/rbac"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	campaignHandler *handlers.CampaignHandler,
	submissionHandler *handlers.SubmissionHandler,
	earningsHandler *handlers.EarningsHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/sso", authHandler.SSOLogin)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Post("/me/ping", userHandler.Ping)
	protected.Get("/me/balance", userHandler.GetBalance)
	protected.Get("/me/transactions", userHandler.ListTransactions)

	// Campaigns
	protected.Post("/campaigns", middleware.RequirePermission(rbac.PermCreateCampaign), campaignHandler.CreateCampaign)
	protected.Get("/campaigns", campaignHandler.ListCampaigns)
	protected.Get("/campaigns/:id", campaignHandler.GetCampaign)
	protected.Get("/campaigns/:id/stats", campaignHandler.GetStats)
	protected.Get("/campaigns/:id/events", campaignHandler.GetEvents)
	protected.Post("/campaigns/:id/cancel", campaignHandler.CancelCampaign)

	// Admin campaign lifecycle
	admin := protected.Group("", middleware.AdminMiddleware())
	admin.Post("/campaigns/:id/approve", campaignHandler.ApproveCampaign)
	admin.Post("/campaigns/:id/reject", campaignHandler.RejectCampaign)
	admin.Post("/campaigns/:id/distribute", campaignHandler.Distribute)

	// Submissions
	protected.Post("/submissions", middleware.RequirePermission(rbac.PermCreateSubmission), submissionHandler.CreateSubmission)
	protected.Get("/submissions", submissionHandler.ListSubmissions)
	protected.Get("/submissions/:id", submissionHandler.GetSubmission)
	protected.Post("/submissions/:id/review", submissionHandler.ReviewSubmission)
	protected.Get("/submissions/:id/earnings", earningsHandler.GetEstimate)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
