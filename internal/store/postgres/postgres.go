// Package postgres implements the store contracts over pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olimp-shop/backend/internal/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// method works inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgx-backed store.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// New creates a store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Identities() store.Identities { return &identities{db: s.db} }
func (s *Store) Referrals() store.Referrals   { return &referrals{db: s.db} }
func (s *Store) Orders() store.Orders         { return &orders{db: s.db} }

// InTx runs fn against a transaction-bound view of the store.
func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
