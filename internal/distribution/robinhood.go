package distribution

import "github.com/shopspring/decimal"

const (
	// MaxSharePercent is the Robin Hood cap: no participant takes more than
	// 40% of the pool.
	MaxSharePercent = 0.40
	// MaxCappedUsers entries may sit at the hard cap; further would-be-capped
	// entries land just below it so capped entries keep a strict ordering.
	MaxCappedUsers = 2

	cappedOverflowShare = MaxSharePercent - 0.0001 // 39.99%
	convergenceEpsilon  = 0.0001
	maxRounds           = 10
)

// Share is one participant's final allocation.
type Share struct {
	Entry
	SharePercent float64
	Earnings     decimal.Decimal
	Capped       bool
}

// Allocation is the outcome of the capped-proportional fixed point.
type Allocation struct {
	Shares    []Share
	Converged bool
	Rounds    int
}

// ComputeShares runs the iterative capped-proportional allocation over the
// participating set. totalPoints must be the point sum of exactly these
// entries. Each round caps oversized shares and redistributes the shortfall
// to uncapped entries in proportion to their current share; when everyone is
// capped the shortfall is split evenly as a divide-by-zero fallback and
// clamped away on the next round, so a fully-capped pool keeps its remainder
// unpaid. Bounded at 10 rounds; a round with no new caps and no convergence
// terminates early.
func ComputeShares(entries []Entry, totalPoints float64, netBudget decimal.Decimal) Allocation {
	if len(entries) == 0 || totalPoints == 0 {
		return Allocation{}
	}

	type state struct {
		share    Share
		capValue float64
	}

	states := make([]state, len(entries))
	for i, e := range entries {
		states[i] = state{share: Share{Entry: e, SharePercent: e.Points / totalPoints}}
	}

	alloc := Allocation{}
	cappedCount := 0

	for round := 1; round <= maxRounds; round++ {
		alloc.Rounds = round

		// Cap pass. Already-capped entries are re-clamped to their assigned
		// cap without counting as progress.
		newCaps := false
		for i := range states {
			st := &states[i]
			if !st.share.Capped && st.share.SharePercent > MaxSharePercent {
				if cappedCount < MaxCappedUsers {
					st.capValue = MaxSharePercent
				} else {
					st.capValue = cappedOverflowShare
				}
				st.share.Capped = true
				cappedCount++
				newCaps = true
				st.share.SharePercent = st.capValue
			} else if st.share.Capped && st.share.SharePercent > st.capValue {
				st.share.SharePercent = st.capValue
			}
		}

		sum := 0.0
		for i := range states {
			sum += states[i].share.SharePercent
		}

		if sum >= 1.0-convergenceEpsilon && sum <= 1.0+convergenceEpsilon {
			alloc.Converged = true
			break
		}
		if !newCaps {
			break
		}
		if sum >= 1.0 {
			continue
		}

		// Redistribute the shortfall across uncapped entries, weighted by
		// their current share.
		shortfall := 1.0 - sum
		uncappedTotal := 0.0
		for i := range states {
			if !states[i].share.Capped {
				uncappedTotal += states[i].share.SharePercent
			}
		}
		if uncappedTotal > 0 {
			for i := range states {
				if !states[i].share.Capped {
					states[i].share.SharePercent += shortfall * states[i].share.SharePercent / uncappedTotal
				}
			}
		} else {
			even := shortfall / float64(len(states))
			for i := range states {
				states[i].share.SharePercent += even
			}
		}
	}

	alloc.Shares = make([]Share, len(states))
	for i, st := range states {
		s := st.share
		s.Earnings = netBudget.Mul(decimal.NewFromFloat(s.SharePercent)).Round(2)
		alloc.Shares[i] = s
	}
	return alloc
}
