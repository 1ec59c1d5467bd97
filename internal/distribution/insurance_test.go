package distribution

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestThresholdsForBudget(t *testing.T) {
	tests := []struct {
		budget         int64
		minSubmissions int
	}{
		{150000, 15},
		{100000, 15},
		{99999, 10},
		{70000, 10},
		{50000, 5},
		{40000, 5},
		{39999, 3},
		{5000, 3},
		{0, 3},
	}

	for _, tt := range tests {
		th := ThresholdsForBudget(decimal.NewFromInt(tt.budget))
		if th.MinSubmissions != tt.minSubmissions {
			t.Errorf("ThresholdsForBudget(%d).MinSubmissions = %d, want %d",
				tt.budget, th.MinSubmissions, tt.minSubmissions)
		}
	}
}

func TestCheckInsurancePasses(t *testing.T) {
	res := CheckInsurance(decimal.NewFromInt(50000), 9, 176060.5, 1600550)
	if !res.Passed {
		t.Fatalf("expected pass, got failed checks: %v", res.FailedChecks)
	}
	if len(res.FailedChecks) != 0 {
		t.Errorf("passed result should carry no failed checks, got %v", res.FailedChecks)
	}
}

func TestCheckInsuranceLowBudgetCampaignFails(t *testing.T) {
	// 2 submissions in the default bracket: submissions, points and views all
	// fall short.
	res := CheckInsurance(decimal.NewFromInt(5000), 2, 120, 9000)
	if res.Passed {
		t.Fatal("expected insurance failure")
	}
	if len(res.FailedChecks) != 3 {
		t.Fatalf("expected 3 failed checks, got %v", res.FailedChecks)
	}
	for _, check := range res.FailedChecks {
		if !strings.Contains(check, "below minimum") {
			t.Errorf("failed check %q should name the shortfall", check)
		}
	}
}

func TestCheckInsuranceSingleShortfall(t *testing.T) {
	// Enough submissions and points, not enough views.
	res := CheckInsurance(decimal.NewFromInt(80000), 12, 9000, 100000)
	if res.Passed {
		t.Fatal("expected insurance failure")
	}
	if len(res.FailedChecks) != 1 {
		t.Fatalf("expected exactly one failed check, got %v", res.FailedChecks)
	}
	if !strings.Contains(res.FailedChecks[0], "views") {
		t.Errorf("failed check should be the views shortfall, got %q", res.FailedChecks[0])
	}
}
