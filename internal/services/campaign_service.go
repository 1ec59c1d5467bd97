package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipfund/backend/internal/config"
	"github.com/clipfund/backend/internal/events"
	"github.com/clipfund/backend/internal/models"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CampaignService struct {
	pool         *pgxpool.Pool
	campaignRepo *repositories.CampaignRepo
	ledgerRepo   *repositories.LedgerRepo
	auditRepo    *repositories.AuditRepo
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewCampaignService(
	pool *pgxpool.Pool,
	campaignRepo *repositories.CampaignRepo,
	ledgerRepo *repositories.LedgerRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		pool:         pool,
		campaignRepo: campaignRepo,
		ledgerRepo:   ledgerRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// transition validates and performs a status transition with audit logging.
func (s *CampaignService) transition(ctx context.Context, campaigns *repositories.CampaignRepo, campaign *models.Campaign, newStatus string, actorID *uuid.UUID, actorType string) error {
	if !models.IsValidTransition(campaign.Status, newStatus) {
		return fmt.Errorf("invalid transition from %s to %s", campaign.Status, newStatus)
	}

	oldStatus := campaign.Status
	if err := campaigns.UpdateStatus(ctx, campaign.ID, newStatus); err != nil {
		return err
	}
	campaign.Status = newStatus

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: actorID,
		ActorType:   actorType,
		Action:      fmt.Sprintf("campaign_status_%s_to_%s", oldStatus, newStatus),
		EntityType:  "campaign",
		EntityID:    &campaign.ID,
		Meta:        map[string]any{"old_status": oldStatus, "new_status": newStatus},
	})

	_ = s.publisher.Publish(ctx, events.StreamCampaigns, events.Event{
		Type: events.EventCampaignStatusChanged,
		Payload: map[string]any{
			"campaign_id": campaign.ID.String(),
			"old_status":  oldStatus,
			"new_status":  newStatus,
		},
	})

	return nil
}

type CreateCampaignInput struct {
	Title       string
	Brief       *string
	TotalBudget decimal.Decimal
	EndsAt      time.Time
}

// CreateCampaign funds a new campaign from the artist's balance. The debit
// and the campaign row share one transaction, so a campaign can never exist
// without its budget being held.
func (s *CampaignService) CreateCampaign(ctx context.Context, artistID uuid.UUID, input CreateCampaignInput) (*models.Campaign, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !input.TotalBudget.IsPositive() {
		return nil, fmt.Errorf("total budget must be positive")
	}
	if !input.EndsAt.After(time.Now()) {
		return nil, fmt.Errorf("end date must be in the future")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(context.Background())

	campaigns := s.campaignRepo.WithTx(tx)
	ledger := s.ledgerRepo.WithTx(tx)

	campaign := &models.Campaign{
		ArtistUserID:      artistID,
		Title:             input.Title,
		Brief:             input.Brief,
		TotalBudget:       input.TotalBudget,
		CommissionPercent: s.cfg.DefaultCommissionPercent,
		Status:            models.CampaignStatusPendingApproval,
		PayoutStatus:      models.PayoutStatusPending,
		EndsAt:            input.EndsAt,
	}
	if err := campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}

	if err := ledger.IncrementBalance(ctx, artistID, input.TotalBudget.Neg()); err != nil {
		return nil, fmt.Errorf("funding campaign: %w", err)
	}
	if err := ledger.RecordTransaction(ctx, &models.Transaction{
		UserID:      artistID,
		Type:        models.TransactionTypeCampaignFunding,
		Amount:      input.TotalBudget.Neg(),
		Description: fmt.Sprintf("funding for campaign %q", campaign.Title),
		ReferenceID: &campaign.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &artistID,
		ActorType:   "user",
		Action:      "campaign_created",
		EntityType:  "campaign",
		EntityID:    &campaign.ID,
		Meta:        map[string]any{"total_budget": campaign.TotalBudget.String(), "ends_at": campaign.EndsAt},
	})

	s.log.Info("campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("budget", campaign.TotalBudget.String()),
	)
	return campaign, nil
}

func (s *CampaignService) ApproveCampaign(ctx context.Context, campaignID uuid.UUID, adminID uuid.UUID) error {
	campaign, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	return s.transition(ctx, s.campaignRepo, campaign, models.CampaignStatusActive, &adminID, "admin")
}

func (s *CampaignService) RejectCampaign(ctx context.Context, campaignID uuid.UUID, adminID uuid.UUID) error {
	campaign, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	campaigns := s.campaignRepo.WithTx(tx)
	if err := s.transition(ctx, campaigns, campaign, models.CampaignStatusRejected, &adminID, "admin"); err != nil {
		return err
	}
	if err := s.returnBudget(ctx, s.ledgerRepo.WithTx(tx), campaign); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CancelCampaign terminates a campaign before distribution and returns the
// full budget to the artist. Only the owning artist or an admin may cancel.
func (s *CampaignService) CancelCampaign(ctx context.Context, campaignID uuid.UUID, actorID uuid.UUID, isAdmin bool) error {
	campaign, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.ArtistUserID != actorID && !isAdmin {
		return fmt.Errorf("%w: only the campaign artist or an admin can cancel", ErrForbidden)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	campaigns := s.campaignRepo.WithTx(tx)
	if err := s.transition(ctx, campaigns, campaign, models.CampaignStatusCancelled, &actorID, "user"); err != nil {
		return err
	}
	if err := s.returnBudget(ctx, s.ledgerRepo.WithTx(tx), campaign); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// returnBudget credits the full held budget back. Commission is only ever
// taken on distribution, never on cancellation or rejection.
func (s *CampaignService) returnBudget(ctx context.Context, ledger *repositories.LedgerRepo, campaign *models.Campaign) error {
	if err := ledger.IncrementBalance(ctx, campaign.ArtistUserID, campaign.TotalBudget); err != nil {
		return err
	}
	return ledger.RecordTransaction(ctx, &models.Transaction{
		UserID:      campaign.ArtistUserID,
		Type:        models.TransactionTypeRefund,
		Amount:      campaign.TotalBudget,
		Description: fmt.Sprintf("returned budget for campaign %q", campaign.Title),
		ReferenceID: &campaign.ID,
	})
}

func (s *CampaignService) GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return s.getCampaign(ctx, id)
}

func (s *CampaignService) ListCampaigns(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	return s.campaignRepo.List(ctx, f)
}

func (s *CampaignService) GetCampaignEvents(ctx context.Context, campaignID uuid.UUID) ([]models.AuditLog, error) {
	return s.auditRepo.GetByEntity(ctx, "campaign", campaignID, 100, 0)
}

func (s *CampaignService) getCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return campaign, nil
}
