package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID       `json:"id"`
	Handle       string          `json:"handle"`
	DisplayName  *string         `json:"display_name,omitempty"`
	Role         string          `json:"role"` // artist/creator/admin
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActiveAt time.Time       `json:"last_active_at"`
}
