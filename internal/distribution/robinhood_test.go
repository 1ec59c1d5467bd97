package distribution

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func totalPoints(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Points
	}
	return sum
}

func shareSum(alloc Allocation) float64 {
	var sum float64
	for _, s := range alloc.Shares {
		sum += s.SharePercent
	}
	return sum
}

func earningsSum(alloc Allocation) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range alloc.Shares {
		sum = sum.Add(s.Earnings)
	}
	return sum
}

func TestComputeSharesEmptyInputs(t *testing.T) {
	budget := decimal.NewFromInt(1000)
	if got := ComputeShares(nil, 0, budget); len(got.Shares) != 0 {
		t.Errorf("nil entries: got %d shares", len(got.Shares))
	}
	if got := ComputeShares([]Entry{entry(100)}, 0, budget); len(got.Shares) != 0 {
		t.Errorf("zero total points: got %d shares", len(got.Shares))
	}
}

// Nine creators, one dominant. The whale is capped at 40% and the freed
// budget flows to the rest; everything still sums to the pool.
func TestComputeSharesNineCreatorScenario(t *testing.T) {
	views := []int64{850000, 320000, 280000, 95000, 45000, 8000, 2000, 500}
	entries := make([]Entry, len(views))
	for i, v := range views {
		// likes tracked at a fifth of views in this fixture
		entries[i] = entry(CalculatePoints(v, v/5, 0).TotalPoints)
	}
	netBudget := decimal.NewFromInt(40000)

	alloc := ComputeShares(entries, totalPoints(entries), netBudget)
	if !alloc.Converged {
		t.Fatalf("expected convergence, rounds=%d sum=%v", alloc.Rounds, shareSum(alloc))
	}

	if sum := shareSum(alloc); math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("share sum = %v, want ~1.0", sum)
	}

	total := earningsSum(alloc)
	if diff := total.Sub(netBudget).Abs(); diff.GreaterThan(decimal.NewFromFloat(0.05)) {
		t.Errorf("earnings sum = %v, want ~%v", total, netBudget)
	}

	for i, s := range alloc.Shares {
		if s.SharePercent > MaxSharePercent+1e-4 {
			t.Errorf("entry %d share %v exceeds cap", i, s.SharePercent)
		}
	}
	if !alloc.Shares[0].Capped {
		t.Error("dominant creator should be capped")
	}
	if alloc.Shares[0].SharePercent != MaxSharePercent {
		t.Errorf("dominant creator share = %v, want %v", alloc.Shares[0].SharePercent, MaxSharePercent)
	}
}

// The same nine creators, this time starting from the raw view counts with no
// pre-filtering: eligibility runs first, then the allocator over the surviving
// pool. The tail posts fall under the 50-point floor (the 50-view one misses
// the 0.1% contribution rule as well) and the whale still lands on the cap.
func TestFilterEligibleIntoComputeShares(t *testing.T) {
	views := []int64{850000, 320000, 280000, 95000, 45000, 8000, 2000, 500, 50}
	entries := make([]Entry, len(views))
	for i, v := range views {
		entries[i] = entry(CalculatePoints(v, 0, 0).TotalPoints)
	}
	campaignPoints := totalPoints(entries)
	netBudget := decimal.NewFromInt(40000)

	eligible := FilterEligible(entries, campaignPoints)
	if len(eligible) != 6 {
		t.Fatalf("eligible = %d, want 6", len(eligible))
	}
	for _, e := range eligible {
		if e.ID == entries[8].ID {
			t.Fatal("the 50-view entry must be filtered out")
		}
	}

	alloc := ComputeShares(eligible, totalPoints(eligible), netBudget)
	if !alloc.Converged {
		t.Fatalf("expected convergence, rounds=%d sum=%v", alloc.Rounds, shareSum(alloc))
	}
	if sum := shareSum(alloc); math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("share sum = %v, want ~1.0", sum)
	}
	total := earningsSum(alloc)
	if diff := total.Sub(netBudget).Abs(); diff.GreaterThan(decimal.NewFromFloat(0.05)) {
		t.Errorf("earnings sum = %v, want ~%v", total, netBudget)
	}
	for i, s := range alloc.Shares {
		if s.SharePercent > MaxSharePercent+1e-4 {
			t.Errorf("entry %d share %v exceeds cap", i, s.SharePercent)
		}
	}
	if !alloc.Shares[0].Capped || alloc.Shares[0].SharePercent != MaxSharePercent {
		t.Errorf("dominant creator share = %v capped=%v, want %v at the cap",
			alloc.Shares[0].SharePercent, alloc.Shares[0].Capped, MaxSharePercent)
	}
}

// A single participant is capped at 40% of the pool; the remainder has no
// uncapped recipients and stays unpaid.
func TestComputeSharesSingleParticipant(t *testing.T) {
	entries := []Entry{entry(1234)}
	netBudget := decimal.NewFromInt(10000)

	alloc := ComputeShares(entries, 1234, netBudget)
	if len(alloc.Shares) != 1 {
		t.Fatalf("expected 1 share, got %d", len(alloc.Shares))
	}
	s := alloc.Shares[0]
	if s.SharePercent != MaxSharePercent {
		t.Errorf("share = %v, want %v", s.SharePercent, MaxSharePercent)
	}
	want := decimal.NewFromInt(4000)
	if !s.Earnings.Equal(want) {
		t.Errorf("earnings = %v, want %v", s.Earnings, want)
	}
}

// Ten creators with near-equal points: nobody hits the cap, split stays
// proportional and pays out the whole pool.
func TestComputeSharesNearEqualSplit(t *testing.T) {
	var entries []Entry
	for p := 10000.0; p <= 11800; p += 200 {
		entries = append(entries, entry(p))
	}
	if len(entries) != 10 {
		t.Fatalf("fixture should have 10 entries, got %d", len(entries))
	}
	netBudget := decimal.NewFromInt(40000)

	alloc := ComputeShares(entries, totalPoints(entries), netBudget)
	if !alloc.Converged || alloc.Rounds != 1 {
		t.Errorf("even split should converge in one round, rounds=%d", alloc.Rounds)
	}
	for i, s := range alloc.Shares {
		if s.Capped {
			t.Errorf("entry %d unexpectedly capped", i)
		}
	}
	if sum := shareSum(alloc); math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("share sum = %v, want ~1.0", sum)
	}
	total := earningsSum(alloc)
	if diff := total.Sub(netBudget).Abs(); diff.GreaterThan(decimal.NewFromFloat(0.05)) {
		t.Errorf("earnings sum = %v, want ~%v", total, netBudget)
	}
}

// The second whale only crosses the cap once the first whale's excess is
// redistributed; both end at exactly 40% and nobody sits above it.
func TestComputeSharesSecondCapAfterRedistribution(t *testing.T) {
	entries := []Entry{entry(45), entry(39), entry(8), entry(5), entry(3)}
	netBudget := decimal.NewFromInt(100000)

	alloc := ComputeShares(entries, totalPoints(entries), netBudget)
	if !alloc.Converged {
		t.Fatalf("expected convergence, rounds=%d sum=%v", alloc.Rounds, shareSum(alloc))
	}
	if alloc.Rounds < 2 {
		t.Errorf("second cap needs a later round, converged in %d", alloc.Rounds)
	}

	atHardCap := 0
	for _, s := range alloc.Shares {
		if s.SharePercent > MaxSharePercent+1e-4 {
			t.Errorf("share %v exceeds cap", s.SharePercent)
		}
		if s.SharePercent == MaxSharePercent {
			atHardCap++
		}
	}
	if atHardCap != MaxCappedUsers {
		t.Errorf("entries at hard cap = %d, want %d", atHardCap, MaxCappedUsers)
	}
	if sum := shareSum(alloc); math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("share sum = %v, want ~1.0", sum)
	}
	total := earningsSum(alloc)
	if diff := total.Sub(netBudget).Abs(); diff.GreaterThan(decimal.NewFromFloat(0.05)) {
		t.Errorf("earnings sum = %v, want ~%v", total, netBudget)
	}
}

// Two entries that both end up capped: the leftover pool has no uncapped
// recipients and stays unpaid, same as the single-participant case.
func TestComputeSharesAllCappedRetainsRemainder(t *testing.T) {
	entries := []Entry{entry(60), entry(40)}
	netBudget := decimal.NewFromInt(10000)

	alloc := ComputeShares(entries, 100, netBudget)
	for i, s := range alloc.Shares {
		if s.SharePercent != MaxSharePercent {
			t.Errorf("entry %d share = %v, want %v", i, s.SharePercent, MaxSharePercent)
		}
	}
	want := decimal.NewFromInt(8000)
	if total := earningsSum(alloc); !total.Equal(want) {
		t.Errorf("earnings sum = %v, want %v", total, want)
	}
}

func TestComputeSharesBoundedRounds(t *testing.T) {
	entries := []Entry{entry(1), entry(1), entry(1)}
	alloc := ComputeShares(entries, 3, decimal.NewFromInt(300))
	if alloc.Rounds > maxRounds {
		t.Errorf("rounds = %d, exceeds bound %d", alloc.Rounds, maxRounds)
	}
}
