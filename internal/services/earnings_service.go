package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clipfund/backend/internal/distribution"
	"github.com/clipfund/backend/internal/models"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// poolCacheTTL bounds how stale a displayed estimate's denominator can be.
const poolCacheTTL = 60 * time.Second

// EarningsService serves the read-side earnings view: approximate while a
// campaign is live, confirmed once it has distributed. The live aggregate is
// cached in Redis so the estimate endpoint does not hammer the submissions
// table.
type EarningsService struct {
	submissionRepo *repositories.SubmissionRepo
	campaignRepo   *repositories.CampaignRepo
	rdb            *redis.Client
	log            *zap.Logger
}

func NewEarningsService(
	submissionRepo *repositories.SubmissionRepo,
	campaignRepo *repositories.CampaignRepo,
	rdb *redis.Client,
	log *zap.Logger,
) *EarningsService {
	return &EarningsService{
		submissionRepo: submissionRepo,
		campaignRepo:   campaignRepo,
		rdb:            rdb,
		log:            log,
	}
}

type cachedPool struct {
	TotalPoints float64    `json:"total_points"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// EstimateForSubmission returns the earnings view for one submission.
func (s *EarningsService) EstimateForSubmission(ctx context.Context, submissionID uuid.UUID) (*distribution.Estimate, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
		}
		return nil, err
	}

	campaign, err := s.campaignRepo.GetByID(ctx, sub.CampaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status == models.CampaignStatusCompleted {
		est := distribution.ConfirmedEstimate(sub.SharePercent, sub.TotalEarnings, campaign.CompletedAt)
		return &est, nil
	}

	pool, err := s.poolSnapshot(ctx, campaign)
	if err != nil {
		return nil, err
	}

	netBudget := distribution.NetBudget(campaign.TotalBudget, campaign.CommissionPercent)
	updatedAt := sub.MetricsUpdatedAt
	if updatedAt == nil {
		updatedAt = pool.UpdatedAt
	}
	est := distribution.EstimateEarnings(sub.TotalPoints, pool.TotalPoints, netBudget, updatedAt)
	return &est, nil
}

// poolSnapshot returns the campaign's live point pool, Redis-cached. A cache
// miss falls through to the submissions aggregate; a Redis outage only costs
// the caching.
func (s *EarningsService) poolSnapshot(ctx context.Context, campaign *models.Campaign) (*cachedPool, error) {
	key := fmt.Sprintf("campaign:pool:%s", campaign.ID)

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var pool cachedPool
		if err := json.Unmarshal(data, &pool); err == nil {
			return &pool, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("pool cache read failed", zap.Error(err))
	}

	agg, err := s.submissionRepo.AggregateApproved(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	pool := &cachedPool{TotalPoints: agg.TotalPoints, UpdatedAt: &now}

	if data, err := json.Marshal(pool); err == nil {
		if err := s.rdb.Set(ctx, key, data, poolCacheTTL).Err(); err != nil {
			s.log.Warn("pool cache write failed", zap.Error(err))
		}
	}
	return pool, nil
}
