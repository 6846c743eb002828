// Package enrollment handles the Enroll event from the command router:
// identity upsert, referral edge registration and the channel-membership
// probe.
package enrollment

import (
	"context"

	"go.uber.org/zap"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/pkg/keymutex"
)

// MembershipChecker is the external channel-membership capability. It only
// selects the enrollment message variant; a failing check never blocks
// enrollment.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, userID string) (bool, error)
}

// Result reports what an enrollment did.
type Result struct {
	Outcome       models.RegisterOutcome `json:"outcome,omitempty"`
	JoinedChannel bool                   `json:"joined_channel"`
}

// Service applies enrollments to the store.
type Service struct {
	store      store.Store
	membership MembershipChecker
	locks      *keymutex.KeyMutex
	logger     *zap.Logger
}

// NewService creates an enrollment service. locks must be the same instance
// the order service uses, so events for one user serialize across both.
func NewService(st store.Store, membership MembershipChecker, locks *keymutex.KeyMutex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, membership: membership, locks: locks, logger: logger}
}

// Enroll upserts the identity and, when an inviter is given, records the
// pending referral edge. Self-referrals and duplicate edges are absorbed as
// outcomes. Both writes commit in one atomic unit.
func (s *Service) Enroll(ctx context.Context, userID, displayName string, inviterID *string) (*Result, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	joined, err := s.membership.IsChannelMember(ctx, userID)
	if err != nil {
		s.logger.Warn("membership check failed", zap.String("user_id", userID), zap.Error(err))
		joined = false
	}

	res := &Result{JoinedChannel: joined}
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Identities().Upsert(ctx, userID, displayName, inviterID); err != nil {
			return err
		}
		if err := tx.Identities().SetJoinedChannel(ctx, userID, joined); err != nil {
			return err
		}
		if inviterID != nil {
			outcome, err := tx.Referrals().Register(ctx, *inviterID, userID)
			if err != nil {
				return err
			}
			res.Outcome = outcome
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user enrolled",
		zap.String("user_id", userID),
		zap.String("outcome", string(res.Outcome)),
		zap.Bool("joined_channel", joined),
	)
	return res, nil
}
