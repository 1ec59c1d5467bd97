package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/distribution"
	"github.com/clipfund/backend/internal/events"
	"github.com/clipfund/backend/internal/models"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Narrow views of the repositories as seen from inside the distribution
// transaction. The tx-bound repo copies satisfy them; tests fake them.
type distributionTx interface {
	Commit(ctx context.Context) error
}

type campaignTxStore interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	UpdatePoolStats(ctx context.Context, id uuid.UUID, stats models.PoolStats) error
	MarkCompleted(ctx context.Context, id uuid.UUID, insuranceTriggered bool, completedAt time.Time) error
}

type submissionTxStore interface {
	AggregateApproved(ctx context.Context, campaignID uuid.UUID) (repositories.Aggregate, error)
	ListApprovedByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Submission, error)
	ZeroPayouts(ctx context.Context, campaignID uuid.UUID) error
	SetPayout(ctx context.Context, id uuid.UUID, sharePercent float64, earnings decimal.Decimal) error
}

type ledgerTxStore interface {
	IncrementBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	RecordTransaction(ctx context.Context, t *models.Transaction) error
}

type auditTxStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// DistributionService finalizes campaigns. The whole run, from the row lock to
// the ledger writes, happens inside one database transaction: either every
// payout lands or none do, and a campaign can only ever be finalized once.
type DistributionService struct {
	pool           *pgxpool.Pool
	campaignRepo   *repositories.CampaignRepo
	submissionRepo *repositories.SubmissionRepo
	ledgerRepo     *repositories.LedgerRepo
	auditRepo      *repositories.AuditRepo
	publisher      events.Publisher
	cfg            *config.Config
	log            *zap.Logger
}

func NewDistributionService(
	pool *pgxpool.Pool,
	campaignRepo *repositories.CampaignRepo,
	submissionRepo *repositories.SubmissionRepo,
	ledgerRepo *repositories.LedgerRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *DistributionService {
	return &DistributionService{
		pool:           pool,
		campaignRepo:   campaignRepo,
		submissionRepo: submissionRepo,
		ledgerRepo:     ledgerRepo,
		auditRepo:      auditRepo,
		publisher:      publisher,
		cfg:            cfg,
		log:            log,
	}
}

// ProcessFinalDistribution runs the full payout for an ended campaign: lock,
// aggregate, insurance gate, eligibility filter, capped allocation, ledger
// writes, completion. Safe to call concurrently for the same campaign; the
// row lock serializes runs and the status check rejects repeats.
func (s *DistributionService) ProcessFinalDistribution(ctx context.Context, campaignID uuid.UUID) (*distribution.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DistributionTxTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin distribution tx: %w", err)
	}
	defer tx.Rollback(context.Background())

	return s.distribute(ctx, tx,
		s.campaignRepo.WithTx(tx),
		s.submissionRepo.WithTx(tx),
		s.ledgerRepo.WithTx(tx),
		s.auditRepo.WithTx(tx),
		campaignID)
}

// distribute is the transaction body. The caller owns begin and rollback;
// distribute commits on every successful path.
func (s *DistributionService) distribute(
	ctx context.Context,
	tx distributionTx,
	campaigns campaignTxStore,
	submissions submissionTxStore,
	ledger ledgerTxStore,
	audit auditTxStore,
	campaignID uuid.UUID,
) (*distribution.Result, error) {
	campaign, err := campaigns.GetByIDForUpdate(ctx, campaignID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
		}
		return nil, s.mapTxErr(ctx, err)
	}

	if campaign.Status == models.CampaignStatusCompleted {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrAlreadyCompleted)
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, fmt.Errorf("campaign %s is %s, only active campaigns distribute", campaignID, campaign.Status)
	}

	// Snapshot the pool from submission rows. The denormalized campaign stats
	// may lag; the distribution works off the authoritative aggregate.
	agg, err := submissions.AggregateApproved(ctx, campaignID)
	if err != nil {
		return nil, s.mapTxErr(ctx, err)
	}
	now := time.Now()
	stats := models.PoolStats{
		TotalPoints:          agg.TotalPoints,
		TotalSubmissions:     agg.TotalSubmissions,
		LastBatchAt:          &now,
		LastBatchTotalPoints: agg.TotalPoints,
	}
	if agg.TotalSubmissions > 0 {
		stats.AveragePoints = agg.TotalPoints / float64(agg.TotalSubmissions)
	}
	if err := campaigns.UpdatePoolStats(ctx, campaignID, stats); err != nil {
		return nil, s.mapTxErr(ctx, err)
	}

	netBudget := distribution.NetBudget(campaign.TotalBudget, campaign.CommissionPercent)

	ins := distribution.CheckInsurance(campaign.TotalBudget, agg.TotalSubmissions, agg.TotalPoints, agg.TotalViews)
	if !ins.Passed {
		result := &distribution.Result{
			Outcome:      distribution.OutcomeInsuranceRefund,
			NetBudget:    netBudget,
			RefundAmount: netBudget,
			FailedChecks: ins.FailedChecks,
		}
		if err := s.refund(ctx, tx, campaigns, submissions, ledger, audit, campaign, result, now); err != nil {
			return nil, err
		}
		s.publishCompleted(campaign, result)
		return result, nil
	}

	subs, err := submissions.ListApprovedByCampaign(ctx, campaignID)
	if err != nil {
		return nil, s.mapTxErr(ctx, err)
	}
	entries := make([]distribution.Entry, len(subs))
	for i, sub := range subs {
		entries[i] = distribution.Entry{ID: sub.ID, CreatorUserID: sub.CreatorUserID, Points: sub.TotalPoints}
	}

	eligible := distribution.FilterEligible(entries, agg.TotalPoints)
	if len(eligible) == 0 {
		result := &distribution.Result{
			Outcome:      distribution.OutcomeInsuranceRefundNoEligible,
			NetBudget:    netBudget,
			RefundAmount: netBudget,
			FailedChecks: []string{"no submissions met the eligibility thresholds"},
		}
		if err := s.refund(ctx, tx, campaigns, submissions, ledger, audit, campaign, result, now); err != nil {
			return nil, err
		}
		s.publishCompleted(campaign, result)
		return result, nil
	}

	// Shares are allocated over the eligible pool only; filtered entries'
	// points leave the denominator entirely.
	var eligiblePoints float64
	for _, e := range eligible {
		eligiblePoints += e.Points
	}
	alloc := distribution.ComputeShares(eligible, eligiblePoints, netBudget)
	if !alloc.Converged {
		s.log.Warn("allocation did not converge, paying last iteration",
			zap.String("campaign_id", campaignID.String()),
			zap.Int("rounds", alloc.Rounds),
		)
	}

	// Clear every submission first so non-eligible rows end at zero, then
	// write the winners.
	if err := submissions.ZeroPayouts(ctx, campaignID); err != nil {
		return nil, s.mapTxErr(ctx, err)
	}

	result := &distribution.Result{
		Outcome:   distribution.OutcomeDistributed,
		NetBudget: netBudget,
	}
	for _, share := range alloc.Shares {
		if err := submissions.SetPayout(ctx, share.ID, share.SharePercent, share.Earnings); err != nil {
			return nil, s.mapTxErr(ctx, err)
		}
		if share.Earnings.IsPositive() {
			if err := ledger.IncrementBalance(ctx, share.CreatorUserID, share.Earnings); err != nil {
				return nil, s.mapTxErr(ctx, err)
			}
			subID := share.ID
			if err := ledger.RecordTransaction(ctx, &models.Transaction{
				UserID:      share.CreatorUserID,
				Type:        models.TransactionTypeEarning,
				Amount:      share.Earnings,
				Description: fmt.Sprintf("payout for campaign %q", campaign.Title),
				ReferenceID: &subID,
			}); err != nil {
				return nil, s.mapTxErr(ctx, err)
			}
		}
		result.Payouts = append(result.Payouts, distribution.Payout{
			SubmissionID:  share.ID,
			CreatorUserID: share.CreatorUserID,
			SharePercent:  share.SharePercent,
			Amount:        share.Earnings,
		})
	}

	if err := campaigns.MarkCompleted(ctx, campaignID, false, now); err != nil {
		return nil, s.mapTxErr(ctx, err)
	}

	_ = audit.Log(ctx, models.AuditLog{
		ActorType:  "system",
		Action:     "campaign_distributed",
		EntityType: "campaign",
		EntityID:   &campaign.ID,
		Meta: map[string]any{
			"net_budget":     netBudget.String(),
			"total_points":   agg.TotalPoints,
			"eligible_count": len(eligible),
			"payout_count":   len(result.Payouts),
			"rounds":         alloc.Rounds,
			"converged":      alloc.Converged,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, s.mapTxErr(ctx, err)
	}

	s.log.Info("campaign distributed",
		zap.String("campaign_id", campaignID.String()),
		zap.String("net_budget", netBudget.String()),
		zap.Int("payouts", len(result.Payouts)),
	)
	s.publishCompleted(campaign, result)
	return result, nil
}

// refund returns the net pool to the artist and completes the campaign with
// the insurance flag set. Commits the transaction.
func (s *DistributionService) refund(
	ctx context.Context,
	tx distributionTx,
	campaigns campaignTxStore,
	submissions submissionTxStore,
	ledger ledgerTxStore,
	audit auditTxStore,
	campaign *models.Campaign,
	result *distribution.Result,
	now time.Time,
) error {
	if err := submissions.ZeroPayouts(ctx, campaign.ID); err != nil {
		return s.mapTxErr(ctx, err)
	}
	if err := ledger.IncrementBalance(ctx, campaign.ArtistUserID, result.RefundAmount); err != nil {
		return s.mapTxErr(ctx, err)
	}
	if err := ledger.RecordTransaction(ctx, &models.Transaction{
		UserID:      campaign.ArtistUserID,
		Type:        models.TransactionTypeRefund,
		Amount:      result.RefundAmount,
		Description: fmt.Sprintf("insurance refund for campaign %q", campaign.Title),
		ReferenceID: &campaign.ID,
	}); err != nil {
		return s.mapTxErr(ctx, err)
	}
	if err := campaigns.MarkCompleted(ctx, campaign.ID, true, now); err != nil {
		return s.mapTxErr(ctx, err)
	}

	_ = audit.Log(ctx, models.AuditLog{
		ActorType:  "system",
		Action:     "campaign_insurance_refund",
		EntityType: "campaign",
		EntityID:   &campaign.ID,
		Meta: map[string]any{
			"outcome":       string(result.Outcome),
			"refund_amount": result.RefundAmount.String(),
			"failed_checks": result.FailedChecks,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return s.mapTxErr(ctx, err)
	}

	s.log.Info("campaign refunded via insurance",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("refund", result.RefundAmount.String()),
		zap.Strings("failed_checks", result.FailedChecks),
	)
	return nil
}

// publishCompleted emits the completion event after commit; listeners only
// ever see finalized campaigns.
func (s *DistributionService) publishCompleted(campaign *models.Campaign, result *distribution.Result) {
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.publisher.Publish(pubCtx, events.StreamCampaigns, events.Event{
		Type: events.EventCampaignCompleted,
		Payload: map[string]any{
			"campaign_id":   campaign.ID.String(),
			"outcome":       string(result.Outcome),
			"net_budget":    result.NetBudget.String(),
			"payout_count":  len(result.Payouts),
			"refund_amount": result.RefundAmount.String(),
		},
	})
}

func (s *DistributionService) mapTxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTransactionTimeout, err)
	}
	return err
}
