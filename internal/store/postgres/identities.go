package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
)

type identities struct {
	db querier
}

// Upsert inserts or replaces a user (last write wins on name and inviter).
func (r *identities) Upsert(ctx context.Context, id, displayName string, invitedBy *string) error {
	const q = `INSERT INTO users (id, display_name, invited_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, invited_by = EXCLUDED.invited_by`
	_, err := r.db.Exec(ctx, q, id, displayName, invitedBy)
	return err
}

// SetJoinedChannel records the membership check result.
func (r *identities) SetJoinedChannel(ctx context.Context, id string, joined bool) error {
	const q = `UPDATE users SET joined_channel = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, joined)
	return err
}

// Get returns a user by id.
func (r *identities) Get(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, display_name, invited_by, joined_channel, registered_at FROM users WHERE id = $1`
	var u models.User
	err := r.db.QueryRow(ctx, q, id).Scan(&u.ID, &u.DisplayName, &u.InvitedBy, &u.JoinedChannel, &u.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
