package repositories

import (
	"context"
	"fmt"

	"github.com/clipfund/backend/internal/db"
	"github.com/clipfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepo owns user balances and the append-only transaction log. Balance
// moves and their transaction records are expected to share the caller's
// transaction so they stay consistent.
type LedgerRepo struct {
	q db.Queryable
}

func NewLedgerRepo(q db.Queryable) *LedgerRepo {
	return &LedgerRepo{q: q}
}

func (r *LedgerRepo) WithTx(q db.Queryable) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// IncrementBalance adds amount (may be negative) to a user's balance.
// Negative results are rejected by the balance check.
func (r *LedgerRepo) IncrementBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users SET balance = balance + $1
		WHERE id = $2 AND balance + $1 >= 0
	`, amount, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance update rejected for user %s (missing user or insufficient funds)", userID)
	}
	return nil
}

func (r *LedgerRepo) RecordTransaction(ctx context.Context, t *models.Transaction) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO transactions (user_id, type, amount, description, reference_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, t.UserID, t.Type, t.Amount, t.Description, t.ReferenceID).Scan(&t.ID, &t.CreatedAt)
}

func (r *LedgerRepo) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	return balance, err
}

func (r *LedgerRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, type, amount, description, reference_id, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.ReferenceID, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
