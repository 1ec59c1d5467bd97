package distribution

import "github.com/google/uuid"

const (
	// MinEligiblePoints is the absolute point floor for a payout.
	MinEligiblePoints = 50.0
	// MinEligibleContribution is the minimum relative share of the campaign
	// pool (0.1%). Both thresholds must hold simultaneously.
	MinEligibleContribution = 0.001
)

// Entry is a scored participant as seen by the filter and the allocator.
type Entry struct {
	ID            uuid.UUID
	CreatorUserID uuid.UUID
	Points        float64
}

// FilterEligible returns the entries allowed to receive a payout. A campaign
// with zero total points has no eligible entries.
func FilterEligible(entries []Entry, totalCampaignPoints float64) []Entry {
	if totalCampaignPoints == 0 {
		return nil
	}

	var eligible []Entry
	for _, e := range entries {
		if e.Points < MinEligiblePoints {
			continue
		}
		if e.Points/totalCampaignPoints < MinEligibleContribution {
			continue
		}
		eligible = append(eligible, e)
	}
	return eligible
}
