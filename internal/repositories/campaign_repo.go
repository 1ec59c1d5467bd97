package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clipfund/backend/internal/db"
	"github.com/clipfund/backend/internal/models"
	"github.com/google/uuid"
)

type CampaignRepo struct {
	q db.Queryable
}

func NewCampaignRepo(q db.Queryable) *CampaignRepo {
	return &CampaignRepo{q: q}
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *CampaignRepo) WithTx(q db.Queryable) *CampaignRepo {
	return &CampaignRepo{q: q}
}

const campaignColumns = `
	id, artist_user_id, title, brief, total_budget, commission_percent,
	status, payout_status, insurance_triggered, ends_at, completed_at,
	total_points, total_submissions, average_points, last_batch_at, last_batch_total_points,
	created_at, updated_at`

func scanCampaign(row interface{ Scan(dest ...any) error }) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID, &c.ArtistUserID, &c.Title, &c.Brief, &c.TotalBudget, &c.CommissionPercent,
		&c.Status, &c.PayoutStatus, &c.InsuranceTriggered, &c.EndsAt, &c.CompletedAt,
		&c.TotalPoints, &c.TotalSubmissions, &c.AveragePoints, &c.LastBatchAt, &c.LastBatchTotalPoints,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO campaigns (artist_user_id, title, brief, total_budget, commission_percent, status, payout_status, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.ArtistUserID, c.Title, c.Brief, c.TotalBudget, c.CommissionPercent,
		c.Status, c.PayoutStatus, c.EndsAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(r.q.QueryRow(ctx, `SELECT`+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

// GetByIDForUpdate locks the campaign row for the duration of the enclosing
// transaction. Concurrent distribution runs for the same campaign serialize
// here.
func (r *CampaignRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(r.q.QueryRow(ctx, `SELECT`+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id))
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.q.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// UpdatePoolStats persists the recomputed per-campaign aggregate.
func (r *CampaignRepo) UpdatePoolStats(ctx context.Context, id uuid.UUID, stats models.PoolStats) error {
	_, err := r.q.Exec(ctx, `
		UPDATE campaigns SET
			total_points = $1, total_submissions = $2, average_points = $3,
			last_batch_at = $4, last_batch_total_points = $5, updated_at = now()
		WHERE id = $6
	`, stats.TotalPoints, stats.TotalSubmissions, stats.AveragePoints,
		stats.LastBatchAt, stats.LastBatchTotalPoints, id)
	return err
}

// MarkCompleted finalizes the campaign. Called exactly once per campaign,
// inside the distribution transaction.
func (r *CampaignRepo) MarkCompleted(ctx context.Context, id uuid.UUID, insuranceTriggered bool, completedAt time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE campaigns SET
			status = $1, payout_status = $2, insurance_triggered = $3,
			completed_at = $4, updated_at = now()
		WHERE id = $5
	`, models.CampaignStatusCompleted, models.PayoutStatusCompleted, insuranceTriggered, completedAt, id)
	return err
}

// GetEndedActive returns active campaigns whose end date has passed, ready
// for final distribution.
func (r *CampaignRepo) GetEndedActive(ctx context.Context, limit int) ([]models.Campaign, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `
		SELECT`+campaignColumns+`
		FROM campaigns
		WHERE status = $1 AND ends_at <= now()
		ORDER BY ends_at ASC
		LIMIT $2
	`, models.CampaignStatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// GetActive returns campaigns currently accepting metric refreshes.
func (r *CampaignRepo) GetActive(ctx context.Context) ([]models.Campaign, error) {
	rows, err := r.q.Query(ctx, `
		SELECT`+campaignColumns+` FROM campaigns WHERE status = $1 ORDER BY created_at ASC
	`, models.CampaignStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

type CampaignFilter struct {
	ArtistUserID *uuid.UUID
	Status       *string
	Limit        int
	Offset       int
}

func (r *CampaignRepo) List(ctx context.Context, f CampaignFilter) ([]models.Campaign, error) {
	query := `SELECT` + campaignColumns + ` FROM campaigns`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ArtistUserID != nil {
		where = append(where, fmt.Sprintf("artist_user_id = $%d", argIdx))
		args = append(args, *f.ArtistUserID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}
