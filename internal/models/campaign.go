package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign statuses
const (
	CampaignStatusPendingApproval = "pending_approval"
	CampaignStatusActive          = "active"
	CampaignStatusCompleted       = "completed"
	CampaignStatusCancelled       = "cancelled"
	CampaignStatusRejected        = "rejected"
)

// Payout statuses
const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
)

// Valid state transitions: from -> []to
var ValidCampaignTransitions = map[string][]string{
	CampaignStatusPendingApproval: {CampaignStatusActive, CampaignStatusRejected, CampaignStatusCancelled},
	CampaignStatusActive:          {CampaignStatusCompleted, CampaignStatusCancelled},
	CampaignStatusCompleted:       {},
	CampaignStatusCancelled:       {},
	CampaignStatusRejected:        {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidCampaignTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID                 uuid.UUID       `json:"id"`
	ArtistUserID       uuid.UUID       `json:"artist_user_id"`
	Title              string          `json:"title"`
	Brief              *string         `json:"brief,omitempty"`
	TotalBudget        decimal.Decimal `json:"total_budget"`
	CommissionPercent  decimal.Decimal `json:"commission_percent"` // 0..100, fixed at creation
	Status             string          `json:"status"`
	PayoutStatus       string          `json:"payout_status"`
	InsuranceTriggered bool            `json:"insurance_triggered"`
	EndsAt             time.Time       `json:"ends_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	PoolStats
}

// PoolStats is the denormalized per-campaign aggregate kept on the campaign
// row. Recomputed from submission rows, never independently authoritative.
type PoolStats struct {
	TotalPoints          float64    `json:"total_points"`
	TotalSubmissions     int        `json:"total_submissions"`
	AveragePoints        float64    `json:"average_points"`
	LastBatchAt          *time.Time `json:"last_batch_at,omitempty"`
	LastBatchTotalPoints float64    `json:"last_batch_total_points"`
}
