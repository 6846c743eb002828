// Package store defines the narrow repository contracts the core runs on.
// Implementations live in store/postgres (production) and store/memory
// (tests and dependency-free runs); invariants are the same in both.
package store

import (
	"context"
	"errors"

	"github.com/olimp-shop/backend/internal/models"
)

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("not found")

// Identities is the durable record of known users.
type Identities interface {
	// Upsert inserts or replaces a user. Last write wins on display name
	// and inviter; it never fails on an existing id.
	Upsert(ctx context.Context, id, displayName string, invitedBy *string) error
	// SetJoinedChannel records the result of the external membership check.
	SetJoinedChannel(ctx context.Context, id string, joined bool) error
	Get(ctx context.Context, id string) (*models.User, error)
}

// Referrals is the inviter→referee edge set.
type Referrals interface {
	// Register inserts a pending edge. Self-referrals and referees that
	// already own an edge are absorbed as outcomes, not errors; the first
	// writer wins.
	Register(ctx context.Context, inviterID, refereeID string) (models.RegisterOutcome, error)
	// ActivatePending flips the referee's edge to activated, at most once.
	// Returns true only for the call that performed the flip.
	ActivatePending(ctx context.Context, refereeID string) (bool, error)
	// Get returns the edge owned by the referee.
	Get(ctx context.Context, refereeID string) (*models.Referral, error)
	CountActivated(ctx context.Context, inviterID string) (int, error)
	// TopInviters orders by activated count descending; ties break by the
	// insertion order of the underlying rows.
	TopInviters(ctx context.Context, limit int) ([]models.InviterStanding, error)
}

// Orders is the append-then-transition order ledger.
type Orders interface {
	// Create assigns the next monotonic id, status new, and persists the
	// payload verbatim.
	Create(ctx context.Context, userID string, payload models.OrderPayload) (*models.Order, error)
	// UpdateStatus applies new→accepted or new→rejected and returns the
	// resulting status. A call on a terminal order is a no-op returning
	// the existing status; an unknown id returns ErrNotFound.
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (models.OrderStatus, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
}

// Store bundles the repositories with the atomic-unit boundary. Mutations
// that must be visible together (referral activation + order creation) run
// inside InTx; a crash mid-unit leaves neither half behind.
type Store interface {
	Identities() Identities
	Referrals() Referrals
	Orders() Orders
	// InTx runs fn against a transactional view of the store and commits
	// iff fn returns nil. InTx must not be nested.
	InTx(ctx context.Context, fn func(Store) error) error
}
