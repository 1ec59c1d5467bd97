package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clipfund/backend/internal/distribution"
	"github.com/clipfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxRecordedErrors bounds the per-batch error list; past that failures are
// only counted.
const maxRecordedErrors = 10

type submissionStore interface {
	ListApprovedByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Submission, error)
	UpdateMetrics(ctx context.Context, id uuid.UUID, views, likes, comments, shares int64, points distribution.PointBreakdown, at time.Time) error
	UpdateEstimate(ctx context.Context, id uuid.UUID, sharePercent float64, estimated decimal.Decimal) error
}

type campaignStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	UpdatePoolStats(ctx context.Context, id uuid.UUID, stats models.PoolStats) error
}

// Refresher pulls fresh engagement counters for a campaign's approved
// submissions in bounded-concurrency batches. A failed fetch degrades to the
// submission's last known metrics and never aborts the batch. Runs outside
// any distribution transaction.
type Refresher struct {
	provider    Provider
	submissions submissionStore
	campaigns   campaignStore
	concurrency int
	log         *zap.Logger
}

func NewRefresher(provider Provider, submissions submissionStore, campaigns campaignStore, concurrency int, log *zap.Logger) *Refresher {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Refresher{
		provider:    provider,
		submissions: submissions,
		campaigns:   campaigns,
		concurrency: concurrency,
		log:         log,
	}
}

type RefreshSummary struct {
	Total       int
	Refreshed   int
	Failed      int
	Errors      []string
	TotalPoints float64
}

func (r *Refresher) RefreshCampaign(ctx context.Context, campaignID uuid.UUID) (*RefreshSummary, error) {
	campaign, err := r.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	subs, err := r.submissions.ListApprovedByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	summary := &RefreshSummary{Total: len(subs)}
	now := time.Now()

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.concurrency)

	// points per submission, last-known values pre-filled so failures keep
	// contributing to the aggregate
	points := make([]float64, len(subs))
	for i, s := range subs {
		points[i] = s.TotalPoints
	}

	for i := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			sub := subs[i]
			m, err := r.provider.FetchPostMetrics(ctx, sub.PostURL)
			if err != nil {
				mu.Lock()
				summary.Failed++
				if len(summary.Errors) < maxRecordedErrors {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", sub.PostURL, err))
				}
				mu.Unlock()
				r.log.Warn("metrics fetch failed, keeping last known values",
					zap.String("submission_id", sub.ID.String()),
					zap.Error(err),
				)
				return
			}

			breakdown := distribution.CalculatePoints(m.Views, m.Likes, m.Shares)
			if err := r.submissions.UpdateMetrics(ctx, sub.ID, m.Views, m.Likes, m.Comments, m.Shares, breakdown, now); err != nil {
				mu.Lock()
				summary.Failed++
				if len(summary.Errors) < maxRecordedErrors {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", sub.PostURL, err))
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			summary.Refreshed++
			points[i] = breakdown.TotalPoints
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	var total float64
	for _, p := range points {
		total += p
	}
	summary.TotalPoints = total

	// Roll the display estimates forward against the new pool. Approximate
	// only; the final distribution recomputes shares with caps applied.
	netBudget := distribution.NetBudget(campaign.TotalBudget, campaign.CommissionPercent)
	for i, sub := range subs {
		if total == 0 || points[i] == 0 {
			continue
		}
		share := points[i] / total
		estimated := netBudget.Mul(decimal.NewFromFloat(share)).Round(2)
		if err := r.submissions.UpdateEstimate(ctx, sub.ID, share, estimated); err != nil {
			r.log.Warn("estimate update failed",
				zap.String("submission_id", sub.ID.String()),
				zap.Error(err),
			)
		}
	}

	stats := models.PoolStats{
		TotalPoints:          total,
		TotalSubmissions:     len(subs),
		LastBatchAt:          &now,
		LastBatchTotalPoints: total,
	}
	if len(subs) > 0 {
		stats.AveragePoints = total / float64(len(subs))
	}
	if err := r.campaigns.UpdatePoolStats(ctx, campaignID, stats); err != nil {
		return nil, fmt.Errorf("update pool stats: %w", err)
	}

	r.log.Info("metrics batch refreshed",
		zap.String("campaign_id", campaignID.String()),
		zap.Int("total", summary.Total),
		zap.Int("refreshed", summary.Refreshed),
		zap.Int("failed", summary.Failed),
		zap.Float64("total_points", total),
	)

	return summary, nil
}
