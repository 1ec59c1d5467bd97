package distribution

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// NetBudget is the pool actually distributed to participants: the campaign
// budget after the platform commission is taken. The commission is retained
// on every path, including insurance refunds.
func NetBudget(totalBudget, commissionPercent decimal.Decimal) decimal.Decimal {
	commission := totalBudget.Mul(commissionPercent).Div(oneHundred)
	return totalBudget.Sub(commission).Round(2)
}
