package events

import "context"

// Event types
const (
	EventCampaignStatusChanged = "campaign_status_changed"
	EventCampaignCompleted     = "campaign_completed"
	EventSubmissionReviewed    = "submission_reviewed"
	EventMetricsRefreshed      = "metrics_refreshed"
)

// StreamCampaigns is the pub/sub channel all campaign lifecycle events go to.
const StreamCampaigns = "events:campaign"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
