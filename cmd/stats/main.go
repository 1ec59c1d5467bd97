package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/db"
	"github.com/clipfund/backend/internal/metrics"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// The stats fetcher keeps live campaigns' engagement counters fresh so that
// earnings estimates track reality between distribution runs.
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

	campaignRepo := repositories.NewCampaignRepo(pool)
	submissionRepo := repositories.NewSubmissionRepo(pool)

	client := metrics.NewClient(cfg.MetricsServiceURL, log)
	parser := metrics.NewPageParser(cfg.MetricsFetchTimeoutMS, cfg.MetricsFetchMaxRetries, log)

	// Prefer the metrics service; the embed-page parser is the fallback.
	if client.IsAvailable(ctx) {
		log.Info("metrics service is available")
	} else {
		log.Warn("metrics service is not available, falling back to embed page parser")
	}
	provider := metrics.ChainProvider{client, parser}
	refresher := metrics.NewRefresher(provider, submissionRepo, campaignRepo, cfg.MetricsConcurrency, log)

	log.Info("stats fetcher started", zap.Duration("interval", cfg.MetricsRefreshInterval))

	// Initial run
	runMetricsRefresh(ctx, campaignRepo, refresher, rdb, cfg, log)

	ticker := time.NewTicker(cfg.MetricsRefreshInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runMetricsRefresh(ctx, campaignRepo, refresher, rdb, cfg, log)
		case <-sigCh:
			log.Info("shutting down stats fetcher")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runMetricsRefresh(
	ctx context.Context,
	campaignRepo *repositories.CampaignRepo,
	refresher *metrics.Refresher,
	rdb *redis.Client,
	cfg *config.Config,
	log *zap.Logger,
) {
	campaigns, err := campaignRepo.GetActive(ctx)
	if err != nil {
		log.Error("failed to get active campaigns", zap.Error(err))
		return
	}

	log.Info("refreshing metrics", zap.Int("campaigns", len(campaigns)))

	for _, campaign := range campaigns {
		// Rate limit: one batch per campaign per interval, shared across
		// fetcher instances.
		rlKey := fmt.Sprintf("rl:metrics:%s", campaign.ID)
		if rdb.Exists(ctx, rlKey).Val() > 0 {
			continue
		}
		rdb.Set(ctx, rlKey, "1", cfg.MetricsRefreshInterval)

		summary, err := refresher.RefreshCampaign(ctx, campaign.ID)
		if err != nil {
			log.Error("metrics refresh failed",
				zap.String("campaign_id", campaign.ID.String()),
				zap.Error(err),
			)
			continue
		}

		log.Info("metrics refreshed",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Int("total", summary.Total),
			zap.Int("refreshed", summary.Refreshed),
			zap.Int("failed", summary.Failed),
			zap.Float64("total_points", summary.TotalPoints),
		)

		// Small delay between campaigns to avoid hammering the providers.
		time.Sleep(2 * time.Second)
	}
}
