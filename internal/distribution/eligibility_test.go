package distribution

import (
	"testing"

	"github.com/google/uuid"
)

func entry(points float64) Entry {
	return Entry{ID: uuid.New(), CreatorUserID: uuid.New(), Points: points}
}

func TestFilterEligibleZeroPoolReturnsEmpty(t *testing.T) {
	entries := []Entry{entry(0), entry(0)}
	if got := FilterEligible(entries, 0); got != nil {
		t.Errorf("zero pool should yield no eligible entries, got %v", got)
	}
}

func TestFilterEligibleBothThresholdsRequired(t *testing.T) {
	pool := 100000.0
	tests := []struct {
		name     string
		points   float64
		eligible bool
	}{
		{"meets both", 500, true},
		{"exactly at floor and contribution", 100, true}, // 100/100000 = 0.1%
		{"below absolute floor", 49, false},
		{"at floor but below contribution", 50, false}, // 0.05%
		{"zero points", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEligible([]Entry{entry(tt.points)}, pool)
			if (len(got) == 1) != tt.eligible {
				t.Errorf("points=%v pool=%v: eligible=%v, want %v", tt.points, pool, len(got) == 1, tt.eligible)
			}
		})
	}
}

func TestFilterEligibleKeepsOrder(t *testing.T) {
	a, b, c := entry(1000), entry(10), entry(2000)
	got := FilterEligible([]Entry{a, b, c}, 3010)
	if len(got) != 2 {
		t.Fatalf("expected 2 eligible, got %d", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != c.ID {
		t.Error("eligible entries should preserve input order")
	}
}
