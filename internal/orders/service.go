// Package orders implements order submission and the manager accept/reject
// transitions over the ledger.
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olimp-shop/backend/internal/discount"
	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/pkg/keymutex"
)

// ErrRejected marks payload validation failures: the order is refused
// before anything is written.
var ErrRejected = errors.New("order rejected")

// Dispatcher receives a committed order for notification fan-out. It runs
// strictly after the transaction commits and cannot undo it.
type Dispatcher interface {
	OrderCommitted(ctx context.Context, o *models.Order, u *models.User, inviterActivated, percent int, charge decimal.Decimal)
}

// SubmitResult is what the front end needs to answer the customer.
type SubmitResult struct {
	Order   *models.Order   `json:"order"`
	Percent int             `json:"discount_percent"`
	Charge  decimal.Decimal `json:"final_charge"`
}

// ActionResult is the outcome of a manager accept/reject.
type ActionResult struct {
	OrderID int64              `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
	Changed bool               `json:"changed"`
}

// Service owns the submit and transition flows.
type Service struct {
	store      store.Store
	dispatcher Dispatcher
	locks      *keymutex.KeyMutex
	logger     *zap.Logger
}

// NewService creates an order service. locks is shared with enrollment so
// all events for one user serialize.
func NewService(st store.Store, d Dispatcher, locks *keymutex.KeyMutex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, dispatcher: d, locks: locks, logger: logger}
}

// Submit validates the payload, then in one atomic unit resolves the
// identity, activates the submitter's pending referral edge (their first
// order is the activation trigger) and appends the order. The discount
// applied at commit time is the best tier available to the submitter:
// their own activated count as inviter, or their inviter's count when they
// were referred. Dispatch happens after commit.
func (s *Service) Submit(ctx context.Context, userID string, payload models.OrderPayload) (*SubmitResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRejected, err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		order            *models.Order
		user             *models.User
		inviterActivated int
		percent          int
	)
	err := s.store.InTx(ctx, func(tx store.Store) error {
		u, err := tx.Identities().Get(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			// Order from a user the router never enrolled; create a bare
			// identity so the ledger row has an owner.
			if err := tx.Identities().Upsert(ctx, userID, "", nil); err != nil {
				return err
			}
			u, err = tx.Identities().Get(ctx, userID)
		}
		if err != nil {
			return err
		}
		user = u

		activated, err := tx.Referrals().ActivatePending(ctx, userID)
		if err != nil {
			return err
		}
		if activated {
			s.logger.Info("referral activated", zap.String("referee_id", userID))
		}

		own, err := tx.Referrals().CountActivated(ctx, userID)
		if err != nil {
			return err
		}
		tier := own
		edge, err := tx.Referrals().Get(ctx, userID)
		switch {
		case err == nil:
			inviterActivated, err = tx.Referrals().CountActivated(ctx, edge.InviterID)
			if err != nil {
				return err
			}
			if inviterActivated > tier {
				tier = inviterActivated
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		percent = discount.Percent(tier)

		order, err = tx.Orders().Create(ctx, userID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	charge := discount.Apply(payload.Total, percent)
	s.logger.Info("order committed",
		zap.Int64("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int("discount_percent", percent),
		zap.String("charge", charge.StringFixed(2)),
	)

	s.dispatcher.OrderCommitted(ctx, order, user, inviterActivated, percent, charge)

	return &SubmitResult{Order: order, Percent: percent, Charge: charge}, nil
}

// Apply handles a manager accept/reject. Terminal orders stay unchanged
// (Changed=false, current status returned); unknown ids surface
// store.ErrNotFound.
func (s *Service) Apply(ctx context.Context, orderID int64, action string) (*ActionResult, error) {
	target, err := models.ParseOrderStatus(action)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRejected, err)
	}

	res := &ActionResult{OrderID: orderID}
	err = s.store.InTx(ctx, func(tx store.Store) error {
		prev, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		got, err := tx.Orders().UpdateStatus(ctx, orderID, target)
		if err != nil {
			return err
		}
		res.Status = got
		res.Changed = !prev.Status.Terminal()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manager action applied",
		zap.Int64("order_id", orderID),
		zap.String("status", string(res.Status)),
		zap.Bool("changed", res.Changed),
	)
	return res, nil
}
