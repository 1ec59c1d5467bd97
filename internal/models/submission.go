package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Submission statuses
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

type Submission struct {
	ID            uuid.UUID `json:"id"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	CreatorUserID uuid.UUID `json:"creator_user_id"`
	PostURL       string    `json:"post_url"`
	Status        string    `json:"status"`

	// Raw engagement counters from the metrics provider.
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`

	// Derived scoring fields, refreshed alongside the counters.
	ViewPoints  float64 `json:"view_points"`
	LikePoints  float64 `json:"like_points"`
	SharePoints float64 `json:"share_points"`
	TotalPoints float64 `json:"total_points"`

	// SharePercent and EstimatedEarnings track the live pool between metric
	// batches; TotalEarnings is written exactly once when the campaign
	// distributes, and SharePercent is frozen with it.
	SharePercent      float64         `json:"share_percent"`
	EstimatedEarnings decimal.Decimal `json:"estimated_earnings"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`

	MetricsUpdatedAt *time.Time `json:"metrics_updated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
