package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/clipfund/backend/internal/events"
	"github.com/clipfund/backend/internal/models"
	"github.com/clipfund/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SubmissionService struct {
	submissionRepo *repositories.SubmissionRepo
	campaignRepo   *repositories.CampaignRepo
	auditRepo      *repositories.AuditRepo
	publisher      events.Publisher
	log            *zap.Logger
}

func NewSubmissionService(
	submissionRepo *repositories.SubmissionRepo,
	campaignRepo *repositories.CampaignRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		campaignRepo:   campaignRepo,
		auditRepo:      auditRepo,
		publisher:      publisher,
		log:            log,
	}
}

// CreateSubmission registers a creator's post against an active campaign.
// Metrics start at zero and are filled in by the refresher.
func (s *SubmissionService) CreateSubmission(ctx context.Context, creatorID, campaignID uuid.UUID, postURL string) (*models.Submission, error) {
	if err := validatePostURL(postURL); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
		}
		return nil, err
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, fmt.Errorf("campaign is %s, submissions are only accepted while active", campaign.Status)
	}

	sub := &models.Submission{
		CampaignID:    campaignID,
		CreatorUserID: creatorID,
		PostURL:       postURL,
		Status:        models.SubmissionStatusPending,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &creatorID,
		ActorType:   "user",
		Action:      "submission_created",
		EntityType:  "submission",
		EntityID:    &sub.ID,
		Meta:        map[string]any{"campaign_id": campaignID.String(), "post_url": postURL},
	})

	return sub, nil
}

// ReviewSubmission approves or rejects a pending submission. Allowed for the
// campaign's artist and for admins.
func (s *SubmissionService) ReviewSubmission(ctx context.Context, submissionID, actorID uuid.UUID, isAdmin, approve bool) error {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.Status != models.SubmissionStatusPending {
		return fmt.Errorf("submission is %s, only pending submissions can be reviewed", sub.Status)
	}

	campaign, err := s.campaignRepo.GetByID(ctx, sub.CampaignID)
	if err != nil {
		return err
	}
	if campaign.ArtistUserID != actorID && !isAdmin {
		return fmt.Errorf("%w: only the campaign artist or an admin can review submissions", ErrForbidden)
	}

	newStatus := models.SubmissionStatusApproved
	if !approve {
		newStatus = models.SubmissionStatusRejected
	}
	if err := s.submissionRepo.UpdateStatus(ctx, submissionID, newStatus); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      fmt.Sprintf("submission_%s", newStatus),
		EntityType:  "submission",
		EntityID:    &sub.ID,
		Meta:        map[string]any{"campaign_id": sub.CampaignID.String()},
	})

	_ = s.publisher.Publish(ctx, events.StreamCampaigns, events.Event{
		Type: events.EventSubmissionReviewed,
		Payload: map[string]any{
			"submission_id": sub.ID.String(),
			"campaign_id":   sub.CampaignID.String(),
			"status":        newStatus,
		},
	})

	return nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, f repositories.SubmissionFilter) ([]models.Submission, error) {
	return s.submissionRepo.List(ctx, f)
}

func validatePostURL(postURL string) error {
	u, err := url.Parse(postURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("post_url must be an absolute http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("post_url must use http or https")
	}
	if strings.TrimPrefix(u.Path, "/") == "" {
		return fmt.Errorf("post_url must point at a specific post")
	}
	return nil
}
