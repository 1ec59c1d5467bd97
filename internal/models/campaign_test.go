package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{CampaignStatusPendingApproval, CampaignStatusActive, true},
		{CampaignStatusPendingApproval, CampaignStatusRejected, true},
		{CampaignStatusActive, CampaignStatusCompleted, true},

		// Cancellation paths
		{CampaignStatusPendingApproval, CampaignStatusCancelled, true},
		{CampaignStatusActive, CampaignStatusCancelled, true},

		// Invalid transitions
		{CampaignStatusPendingApproval, CampaignStatusCompleted, false},
		{CampaignStatusCompleted, CampaignStatusActive, false},
		{CampaignStatusCompleted, CampaignStatusCancelled, false},
		{CampaignStatusCancelled, CampaignStatusActive, false},
		{CampaignStatusRejected, CampaignStatusActive, false},
		{CampaignStatusActive, CampaignStatusPendingApproval, false},
		{"nonexistent", CampaignStatusActive, false},
		{CampaignStatusActive, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{CampaignStatusCompleted, CampaignStatusCancelled, CampaignStatusRejected}
	for _, status := range terminal {
		transitions := ValidCampaignTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}
