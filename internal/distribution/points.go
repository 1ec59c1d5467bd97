package distribution

// Engagement weights. A view is worth far less than an explicit action;
// shares carry the full unit weight.
const (
	ViewPointWeight  = 0.01
	LikePointWeight  = 0.5
	SharePointWeight = 1.0
)

type PointBreakdown struct {
	ViewPoints  float64
	LikePoints  float64
	SharePoints float64
	TotalPoints float64
}

// CalculatePoints converts raw engagement counters into the weighted score
// used for proportional allocation. Inputs must be non-negative; callers own
// that contract.
func CalculatePoints(views, likes, shares int64) PointBreakdown {
	b := PointBreakdown{
		ViewPoints:  float64(views) * ViewPointWeight,
		LikePoints:  float64(likes) * LikePointWeight,
		SharePoints: float64(shares) * SharePointWeight,
	}
	b.TotalPoints = b.ViewPoints + b.LikePoints + b.SharePoints
	return b
}
