package repositories

import (
	"context"
	"time"

	"github.com/clipfund/backend/internal/db"
	"github.com/clipfund/backend/internal/models"
	"github.com/google/uuid"
)

type UserRepo struct {
	q db.Queryable
}

func NewUserRepo(q db.Queryable) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) WithTx(q db.Queryable) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) UpsertByHandle(ctx context.Context, handle string, displayName *string, role string) (*models.User, error) {
	var u models.User
	err := r.q.QueryRow(ctx, `
		INSERT INTO users (handle, display_name, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (handle) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, users.display_name),
			last_active_at = now()
		RETURNING id, handle, display_name, role, balance, created_at, last_active_at
	`, handle, displayName, role).Scan(
		&u.ID, &u.Handle, &u.DisplayName, &u.Role, &u.Balance, &u.CreatedAt, &u.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.q.QueryRow(ctx, `
		SELECT id, handle, display_name, role, balance, created_at, last_active_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Handle, &u.DisplayName, &u.Role, &u.Balance, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET last_active_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}
