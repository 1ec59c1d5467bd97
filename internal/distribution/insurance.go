package distribution

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsuranceThresholds are the minimum aggregates a campaign must reach for a
// normal distribution to proceed. Selected by budget bracket; bigger budgets
// demand more traction before any payout happens.
type InsuranceThresholds struct {
	MinSubmissions int
	MinPoints      float64
	MinViews       int64
}

var (
	bracket100k = decimal.NewFromInt(100000)
	bracket70k  = decimal.NewFromInt(70000)
	bracket40k  = decimal.NewFromInt(40000)
)

// ThresholdsForBudget selects the threshold bracket for a campaign budget.
func ThresholdsForBudget(totalBudget decimal.Decimal) InsuranceThresholds {
	switch {
	case totalBudget.GreaterThanOrEqual(bracket100k):
		return InsuranceThresholds{MinSubmissions: 15, MinPoints: 10000, MinViews: 1000000}
	case totalBudget.GreaterThanOrEqual(bracket70k):
		return InsuranceThresholds{MinSubmissions: 10, MinPoints: 6000, MinViews: 500000}
	case totalBudget.GreaterThanOrEqual(bracket40k):
		return InsuranceThresholds{MinSubmissions: 5, MinPoints: 3000, MinViews: 150000}
	default:
		return InsuranceThresholds{MinSubmissions: 3, MinPoints: 800, MinViews: 30000}
	}
}

type InsuranceResult struct {
	Passed       bool
	FailedChecks []string
}

// CheckInsurance evaluates the campaign aggregate against its budget bracket.
// A failed check is a terminal business outcome (refund path), not an error;
// every shortfall is reported so the artist can see why the pool was returned.
func CheckInsurance(totalBudget decimal.Decimal, totalSubmissions int, totalPoints float64, totalViews int64) InsuranceResult {
	th := ThresholdsForBudget(totalBudget)

	var failed []string
	if totalSubmissions < th.MinSubmissions {
		failed = append(failed, fmt.Sprintf("submissions %d below minimum %d", totalSubmissions, th.MinSubmissions))
	}
	if totalPoints < th.MinPoints {
		failed = append(failed, fmt.Sprintf("points %.2f below minimum %.2f", totalPoints, th.MinPoints))
	}
	if totalViews < th.MinViews {
		failed = append(failed, fmt.Sprintf("views %d below minimum %d", totalViews, th.MinViews))
	}

	return InsuranceResult{Passed: len(failed) == 0, FailedChecks: failed}
}
