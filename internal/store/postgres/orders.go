package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
)

type orders struct {
	db querier
}

// Create appends an order: BIGSERIAL id keeps ids monotonic, the payload
// is stored as JSONB exactly as submitted.
func (r *orders) Create(ctx context.Context, userID string, payload models.OrderPayload) (*models.Order, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	const q = `INSERT INTO orders (user_id, payload)
		VALUES ($1, $2)
		RETURNING id, status, created_at`
	o := models.Order{UserID: userID, Payload: payload}
	var status string
	if err := r.db.QueryRow(ctx, q, userID, body).Scan(&o.ID, &status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

// UpdateStatus transitions new→accepted or new→rejected. The status = 'new'
// guard makes terminal states immutable; a no-op re-reads the current row.
func (r *orders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (models.OrderStatus, error) {
	const q = `UPDATE orders SET status = $2 WHERE id = $1 AND status = 'new' RETURNING status`
	var got string
	err := r.db.QueryRow(ctx, q, id, string(status)).Scan(&got)
	if err == nil {
		return models.OrderStatus(got), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	// Either the order does not exist or it is already terminal.
	const cur = `SELECT status FROM orders WHERE id = $1`
	err = r.db.QueryRow(ctx, cur, id).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return models.OrderStatus(got), nil
}

// Get returns an order with its payload decoded.
func (r *orders) Get(ctx context.Context, id int64) (*models.Order, error) {
	const q = `SELECT id, user_id, payload, status, created_at FROM orders WHERE id = $1`
	var (
		o      models.Order
		body   []byte
		status string
	)
	err := r.db.QueryRow(ctx, q, id).Scan(&o.ID, &o.UserID, &body, &status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	if err := json.Unmarshal(body, &o.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &o, nil
}
