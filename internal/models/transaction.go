package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger transaction types
const (
	TransactionTypeEarning         = "earning"
	TransactionTypeRefund          = "refund"
	TransactionTypeCampaignFunding = "campaign_funding"
	TransactionTypeAdjustment      = "adjustment"
)

// Transaction is an append-only ledger record. ReferenceID points at the
// submission or campaign the amount settles.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
