package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/db"
	"github.com/clipfund/backend/internal/events"
	"github.com/clipfund/backend/internal/metrics"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/clipfund/backend/internal/services"
	"go.uber.org/zap"
)

// The worker finalizes ended campaigns: a fresh metrics batch first, then the
// distribution itself. Concurrent workers are safe; the campaign row lock
// ensures only one run wins.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	campaignRepo := repositories.NewCampaignRepo(pool)
	submissionRepo := repositories.NewSubmissionRepo(pool)
	ledgerRepo := repositories.NewLedgerRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	distributionService := services.NewDistributionService(pool, campaignRepo, submissionRepo, ledgerRepo, auditRepo, publisher, cfg, log)

	client := metrics.NewClient(cfg.MetricsServiceURL, log)
	parser := metrics.NewPageParser(cfg.MetricsFetchTimeoutMS, cfg.MetricsFetchMaxRetries, log)
	provider := metrics.ChainProvider{client, parser}
	refresher := metrics.NewRefresher(provider, submissionRepo, campaignRepo, cfg.MetricsConcurrency, log)

	log.Info("finalizer worker started", zap.Duration("interval", cfg.FinalizerInterval))

	ticker := time.NewTicker(cfg.FinalizerInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runFinalization(ctx, campaignRepo, refresher, distributionService, cfg, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runFinalization(
	ctx context.Context,
	campaignRepo *repositories.CampaignRepo,
	refresher *metrics.Refresher,
	distributionService *services.DistributionService,
	cfg *config.Config,
	log *zap.Logger,
) {
	campaigns, err := campaignRepo.GetEndedActive(ctx, cfg.FinalizerBatchSize)
	if err != nil {
		log.Error("failed to get ended campaigns", zap.Error(err))
		return
	}
	if len(campaigns) == 0 {
		return
	}

	log.Info("finalizing ended campaigns", zap.Int("count", len(campaigns)))

	for _, campaign := range campaigns {
		// Last metrics pass before the money moves. A failed batch is not
		// fatal; the stored counters are used as-is.
		if _, err := refresher.RefreshCampaign(ctx, campaign.ID); err != nil {
			log.Warn("final metrics refresh failed, distributing on stored counters",
				zap.String("campaign_id", campaign.ID.String()),
				zap.Error(err),
			)
		}

		result, err := distributionService.ProcessFinalDistribution(ctx, campaign.ID)
		if err != nil {
			if errors.Is(err, services.ErrAlreadyCompleted) {
				// Another worker got there first.
				continue
			}
			log.Error("distribution failed",
				zap.String("campaign_id", campaign.ID.String()),
				zap.Error(err),
			)
			continue
		}

		log.Info("campaign finalized",
			zap.String("campaign_id", campaign.ID.String()),
			zap.String("outcome", string(result.Outcome)),
			zap.Int("payouts", len(result.Payouts)),
		)
	}
}
