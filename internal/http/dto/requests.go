package dto

import "time"

type SSOLoginRequest struct {
	Handle      string  `json:"handle"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        string  `json:"role"` // artist / creator
	Timestamp   string  `json:"timestamp"`
	Signature   string  `json:"signature"`
}

type CreateCampaignRequest struct {
	Title       string    `json:"title"`
	Brief       *string   `json:"brief,omitempty"`
	TotalBudget string    `json:"total_budget"`
	EndsAt      time.Time `json:"ends_at"`
}

type CreateSubmissionRequest struct {
	CampaignID string `json:"campaign_id"`
	PostURL    string `json:"post_url"`
}

type ReviewSubmissionRequest struct {
	Approve bool `json:"approve"`
}
