package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
)

type referrals struct {
	db querier
}

// Register inserts a pending edge. ON CONFLICT DO NOTHING enforces the
// one-edge-per-referee invariant at the schema level; the first writer wins.
func (r *referrals) Register(ctx context.Context, inviterID, refereeID string) (models.RegisterOutcome, error) {
	if inviterID == refereeID {
		return models.RegisterSelfReferral, nil
	}
	const q = `INSERT INTO referrals (inviter_id, referee_id)
		VALUES ($1, $2)
		ON CONFLICT (referee_id) DO NOTHING`
	tag, err := r.db.Exec(ctx, q, inviterID, refereeID)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return models.RegisterAlreadyExists, nil
	}
	return models.RegisterCreated, nil
}

// ActivatePending flips the referee's pending edge. The activated = FALSE
// guard makes the transition at-most-once regardless of callers.
func (r *referrals) ActivatePending(ctx context.Context, refereeID string) (bool, error) {
	const q = `UPDATE referrals SET activated = TRUE WHERE referee_id = $1 AND activated = FALSE`
	tag, err := r.db.Exec(ctx, q, refereeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Get returns the edge owned by the referee.
func (r *referrals) Get(ctx context.Context, refereeID string) (*models.Referral, error) {
	const q = `SELECT inviter_id, referee_id, activated, created_at FROM referrals WHERE referee_id = $1`
	var ref models.Referral
	err := r.db.QueryRow(ctx, q, refereeID).Scan(&ref.InviterID, &ref.RefereeID, &ref.Activated, &ref.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CountActivated counts activated edges whose inviter matches.
func (r *referrals) CountActivated(ctx context.Context, inviterID string) (int, error) {
	const q = `SELECT COUNT(*) FROM referrals WHERE inviter_id = $1 AND activated`
	var n int
	err := r.db.QueryRow(ctx, q, inviterID).Scan(&n)
	return n, err
}

// TopInviters ranks inviters by activated count; ties break by the row
// sequence assigned at insertion.
func (r *referrals) TopInviters(ctx context.Context, limit int) ([]models.InviterStanding, error) {
	const q = `SELECT inviter_id, COUNT(*) AS activated
		FROM referrals WHERE activated
		GROUP BY inviter_id
		ORDER BY activated DESC, MIN(seq) ASC
		LIMIT $1`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.InviterStanding
	for rows.Next() {
		var s models.InviterStanding
		if err := rows.Scan(&s.InviterID, &s.Activated); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
