package distribution

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNetBudget(t *testing.T) {
	tests := []struct {
		name       string
		budget     string
		commission string
		want       string
	}{
		{"twenty percent", "50000", "20", "40000"},
		{"zero commission", "50000", "0", "50000"},
		{"full commission", "50000", "100", "0"},
		{"fractional", "99999.99", "12.5", "87499.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := decimal.RequireFromString(tt.budget)
			commission := decimal.RequireFromString(tt.commission)
			got := NetBudget(budget, commission)
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("NetBudget(%s, %s) = %v, want %v", tt.budget, tt.commission, got, want)
			}
		})
	}
}

// Refund amount is the net budget: strictly below the gross budget whenever
// commission is positive.
func TestNetBudgetBelowGrossWithCommission(t *testing.T) {
	budget := decimal.NewFromInt(70000)
	for _, pct := range []int64{1, 5, 20, 50, 99} {
		net := NetBudget(budget, decimal.NewFromInt(pct))
		if !net.LessThan(budget) {
			t.Errorf("commission %d%%: net %v should be below gross %v", pct, net, budget)
		}
	}
}
