package distribution

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estimate is a read-time preview of a submission's earnings. The approximate
// figures are an uncapped proportional share of the live pool and will
// diverge from the final capped allocation; they must never be persisted as
// authoritative. Confirmed figures are only meaningful once the campaign has
// distributed.
type Estimate struct {
	ApproximateEarnings     decimal.Decimal `json:"approximate_earnings"`
	ApproximateSharePercent float64         `json:"approximate_share_percent"`
	ConfirmedEarnings       decimal.Decimal `json:"confirmed_earnings"`
	ConfirmedSharePercent   float64         `json:"confirmed_share_percent"`
	LastUpdatedAt           *time.Time      `json:"last_updated_at,omitempty"`
	IsApproximate           bool            `json:"is_approximate"`
}

// EstimateEarnings computes the display estimate for a single submission
// against the current cached aggregate. Zero pool or zero own points yields a
// zero estimate rather than a division by zero.
func EstimateEarnings(points, totalCampaignPoints float64, netBudget decimal.Decimal, lastUpdatedAt *time.Time) Estimate {
	est := Estimate{
		ApproximateEarnings: decimal.Zero,
		ConfirmedEarnings:   decimal.Zero,
		LastUpdatedAt:       lastUpdatedAt,
		IsApproximate:       true,
	}
	if totalCampaignPoints == 0 || points == 0 {
		return est
	}

	share := points / totalCampaignPoints
	est.ApproximateSharePercent = share
	est.ApproximateEarnings = netBudget.Mul(decimal.NewFromFloat(share)).Round(2)
	return est
}

// ConfirmedEstimate wraps the finalized share and earnings of a distributed
// campaign in the same display shape.
func ConfirmedEstimate(sharePercent float64, earnings decimal.Decimal, completedAt *time.Time) Estimate {
	return Estimate{
		ApproximateEarnings:     earnings,
		ApproximateSharePercent: sharePercent,
		ConfirmedEarnings:       earnings,
		ConfirmedSharePercent:   sharePercent,
		LastUpdatedAt:           completedAt,
		IsApproximate:           false,
	}
}
