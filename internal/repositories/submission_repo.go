package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clipfund/backend/internal/db"
	"github.com/clipfund/backend/internal/distribution"
	"github.com/clipfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubmissionRepo struct {
	q db.Queryable
}

func NewSubmissionRepo(q db.Queryable) *SubmissionRepo {
	return &SubmissionRepo{q: q}
}

func (r *SubmissionRepo) WithTx(q db.Queryable) *SubmissionRepo {
	return &SubmissionRepo{q: q}
}

const submissionColumns = `
	id, campaign_id, creator_user_id, post_url, status,
	views, likes, comments, shares,
	view_points, like_points, share_points, total_points,
	share_percent, estimated_earnings, total_earnings,
	metrics_updated_at, created_at, updated_at`

func scanSubmission(row interface{ Scan(dest ...any) error }) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID, &s.CampaignID, &s.CreatorUserID, &s.PostURL, &s.Status,
		&s.Views, &s.Likes, &s.Comments, &s.Shares,
		&s.ViewPoints, &s.LikePoints, &s.SharePoints, &s.TotalPoints,
		&s.SharePercent, &s.EstimatedEarnings, &s.TotalEarnings,
		&s.MetricsUpdatedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepo) Create(ctx context.Context, s *models.Submission) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO submissions (campaign_id, creator_user_id, post_url, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, s.CampaignID, s.CreatorUserID, s.PostURL, s.Status).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return scanSubmission(r.q.QueryRow(ctx, `SELECT`+submissionColumns+` FROM submissions WHERE id = $1`, id))
}

func (r *SubmissionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.q.Exec(ctx, `UPDATE submissions SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// UpdateMetrics stores refreshed engagement counters and the derived points
// in one write.
func (r *SubmissionRepo) UpdateMetrics(ctx context.Context, id uuid.UUID, views, likes, comments, shares int64, points distribution.PointBreakdown, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE submissions SET
			views = $1, likes = $2, comments = $3, shares = $4,
			view_points = $5, like_points = $6, share_points = $7, total_points = $8,
			metrics_updated_at = $9, updated_at = now()
		WHERE id = $10
	`, views, likes, comments, shares,
		points.ViewPoints, points.LikePoints, points.SharePoints, points.TotalPoints,
		at, id)
	return err
}

type SubmissionFilter struct {
	CampaignID    *uuid.UUID
	CreatorUserID *uuid.UUID
	Status        *string
	Limit         int
	Offset        int
}

func (r *SubmissionRepo) List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	query := `SELECT` + submissionColumns + ` FROM submissions`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.CampaignID != nil {
		where = append(where, fmt.Sprintf("campaign_id = $%d", argIdx))
		args = append(args, *f.CampaignID)
		argIdx++
	}
	if f.CreatorUserID != nil {
		where = append(where, fmt.Sprintf("creator_user_id = $%d", argIdx))
		args = append(args, *f.CreatorUserID)
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
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// ListApprovedByCampaign returns every approved submission of a campaign,
// unpaginated: the distribution run needs the full set.
func (r *SubmissionRepo) ListApprovedByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Submission, error) {
	rows, err := r.q.Query(ctx, `
		SELECT`+submissionColumns+`
		FROM submissions
		WHERE campaign_id = $1 AND status = $2
		ORDER BY created_at ASC
	`, campaignID, models.SubmissionStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// Aggregate is the campaign-wide rollup over approved submissions.
type Aggregate struct {
	TotalPoints      float64
	TotalViews       int64
	TotalSubmissions int
}

func (r *SubmissionRepo) AggregateApproved(ctx context.Context, campaignID uuid.UUID) (Aggregate, error) {
	var agg Aggregate
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_points), 0), COALESCE(SUM(views), 0), COUNT(*)
		FROM submissions
		WHERE campaign_id = $1 AND status = $2
	`, campaignID, models.SubmissionStatusApproved).Scan(&agg.TotalPoints, &agg.TotalViews, &agg.TotalSubmissions)
	return agg, err
}

// ZeroPayouts explicitly clears share and earnings for every submission of
// the campaign, so entries excluded by eligibility are not left stale.
func (r *SubmissionRepo) ZeroPayouts(ctx context.Context, campaignID uuid.UUID) error {
	_, err := r.q.Exec(ctx, `
		UPDATE submissions SET share_percent = 0, total_earnings = 0, updated_at = now()
		WHERE campaign_id = $1
	`, campaignID)
	return err
}

// UpdateEstimate caches the display-only approximate earnings computed after
// a metrics batch. Never authoritative; the final distribution overwrites it.
func (r *SubmissionRepo) UpdateEstimate(ctx context.Context, id uuid.UUID, sharePercent float64, estimated decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `
		UPDATE submissions SET share_percent = $1, estimated_earnings = $2, updated_at = now()
		WHERE id = $3
	`, sharePercent, estimated, id)
	return err
}

// SetPayout finalizes one submission's share of the pool.
func (r *SubmissionRepo) SetPayout(ctx context.Context, id uuid.UUID, sharePercent float64, earnings decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `
		UPDATE submissions SET share_percent = $1, total_earnings = $2, updated_at = now()
		WHERE id = $3
	`, sharePercent, earnings, id)
	return err
}
