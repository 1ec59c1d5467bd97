package distribution

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome tags the terminal result of a distribution run. Exactly one is
// produced per campaign, exactly once.
type Outcome string

const (
	OutcomeDistributed               Outcome = "distributed"
	OutcomeInsuranceRefund           Outcome = "insurance_refund"
	OutcomeInsuranceRefundNoEligible Outcome = "insurance_refund_no_eligible"
)

type Payout struct {
	SubmissionID  uuid.UUID       `json:"submission_id"`
	CreatorUserID uuid.UUID       `json:"creator_user_id"`
	SharePercent  float64         `json:"share_percent"`
	Amount        decimal.Decimal `json:"amount"`
}

type Result struct {
	Outcome      Outcome         `json:"outcome"`
	NetBudget    decimal.Decimal `json:"net_budget"`
	Payouts      []Payout        `json:"payouts,omitempty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	FailedChecks []string        `json:"failed_checks,omitempty"`
}
