package distribution

import (
	"math"
	"testing"
)

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name   string
		views  int64
		likes  int64
		shares int64
		total  float64
	}{
		{"all zero", 0, 0, 0, 0},
		{"views only", 1000, 0, 0, 10},
		{"likes only", 0, 100, 0, 50},
		{"shares only", 0, 0, 10, 10},
		{"mixed", 850000, 4000, 120, 10620},
		{"single view", 1, 0, 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := CalculatePoints(tt.views, tt.likes, tt.shares)
			if math.Abs(b.TotalPoints-tt.total) > 1e-9 {
				t.Errorf("CalculatePoints(%d, %d, %d).TotalPoints = %v, want %v",
					tt.views, tt.likes, tt.shares, b.TotalPoints, tt.total)
			}
			sum := b.ViewPoints + b.LikePoints + b.SharePoints
			if math.Abs(b.TotalPoints-sum) > 1e-9 {
				t.Errorf("TotalPoints %v != component sum %v", b.TotalPoints, sum)
			}
		})
	}
}

func TestCalculatePointsWeights(t *testing.T) {
	b := CalculatePoints(100, 100, 100)
	if b.ViewPoints != 1 {
		t.Errorf("ViewPoints = %v, want 1", b.ViewPoints)
	}
	if b.LikePoints != 50 {
		t.Errorf("LikePoints = %v, want 50", b.LikePoints)
	}
	if b.SharePoints != 100 {
		t.Errorf("SharePoints = %v, want 100", b.SharePoints)
	}
}
