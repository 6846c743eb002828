package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
)

func payload() models.OrderPayload {
	return models.OrderPayload{
		Items:    []models.OrderItem{{Name: "X", Qty: 2, Price: decimal.NewFromInt(100)}},
		Address:  "addr",
		District: "d",
		Total:    decimal.NewFromInt(200),
	}
}

func TestRegisterDistinctReferees(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		out, err := s.Referrals().Register(ctx, "inviter", fmt.Sprintf("referee-%d", i))
		require.NoError(t, err)
		require.Equal(t, models.RegisterCreated, out)
	}
	for i := 0; i < 10; i++ {
		_, err := s.Referrals().Get(ctx, fmt.Sprintf("referee-%d", i))
		require.NoError(t, err)
	}
}

func TestRegisterSelfReferralCreatesNoEdge(t *testing.T) {
	s := New()
	ctx := context.Background()
	out, err := s.Referrals().Register(ctx, "x", "x")
	require.NoError(t, err)
	assert.Equal(t, models.RegisterSelfReferral, out)

	_, err = s.Referrals().Get(ctx, "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegisterFirstInviterWins(t *testing.T) {
	s := New()
	ctx := context.Background()
	out, err := s.Referrals().Register(ctx, "first", "referee")
	require.NoError(t, err)
	require.Equal(t, models.RegisterCreated, out)

	out, err = s.Referrals().Register(ctx, "second", "referee")
	require.NoError(t, err)
	assert.Equal(t, models.RegisterAlreadyExists, out)

	edge, err := s.Referrals().Get(ctx, "referee")
	require.NoError(t, err)
	assert.Equal(t, "first", edge.InviterID)
}

func TestActivateIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Referrals().Register(ctx, "a", "b")
	require.NoError(t, err)

	flipped, err := s.Referrals().ActivatePending(ctx, "b")
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = s.Referrals().ActivatePending(ctx, "b")
	require.NoError(t, err)
	assert.False(t, flipped, "second activation must be a no-op")

	n, err := s.Referrals().CountActivated(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestActivateUnknownRefereeIsNoop(t *testing.T) {
	s := New()
	flipped, err := s.Referrals().ActivatePending(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, flipped)
}

// Ties on activated count break by insertion order of the referral rows:
// carol's first edge was inserted before dave's, so carol ranks ahead.
func TestTopInvitersTieBreakByInsertionOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	refs := s.Referrals()

	// alice: 2 activated; carol and dave: 1 each, carol's row is older.
	for i, pair := range [][2]string{
		{"alice", "u1"}, {"carol", "u2"}, {"dave", "u3"}, {"alice", "u4"},
	} {
		out, err := refs.Register(ctx, pair[0], pair[1])
		require.NoError(t, err, "edge %d", i)
		require.Equal(t, models.RegisterCreated, out)
		_, err = refs.ActivatePending(ctx, pair[1])
		require.NoError(t, err)
	}

	top, err := refs.TopInviters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, models.InviterStanding{InviterID: "alice", Activated: 2}, top[0])
	assert.Equal(t, models.InviterStanding{InviterID: "carol", Activated: 1}, top[1])
	assert.Equal(t, models.InviterStanding{InviterID: "dave", Activated: 1}, top[2])

	top, err = refs.TopInviters(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestTopInvitersIgnoresPendingEdges(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Referrals().Register(ctx, "a", "b")
	require.NoError(t, err)

	top, err := s.Referrals().TopInviters(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestOrderPayloadRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := payload()
	p.Items[0].Flavor = "mint"

	created, err := s.Orders().Create(ctx, "u1", p)
	require.NoError(t, err)
	require.Equal(t, models.OrderNew, created.Status)

	got, err := s.Orders().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, p.Address, got.Payload.Address)
	assert.Equal(t, p.District, got.Payload.District)
	assert.True(t, p.Total.Equal(got.Payload.Total))
	require.Len(t, got.Payload.Items, 1)
	assert.Equal(t, "X", got.Payload.Items[0].Name)
	assert.Equal(t, "mint", got.Payload.Items[0].Flavor)
	assert.Equal(t, 2, got.Payload.Items[0].Qty)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Payload.Items[0].Price))
}

func TestOrderIDsMonotonic(t *testing.T) {
	s := New()
	ctx := context.Background()
	var last int64
	for i := 0; i < 5; i++ {
		o, err := s.Orders().Create(ctx, "u", payload())
		require.NoError(t, err)
		require.Greater(t, o.ID, last)
		last = o.ID
	}
}

func TestUpdateStatusFirstTransitionWins(t *testing.T) {
	s := New()
	ctx := context.Background()
	o, err := s.Orders().Create(ctx, "u", payload())
	require.NoError(t, err)

	got, err := s.Orders().UpdateStatus(ctx, o.ID, models.OrderAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, got)

	got, err = s.Orders().UpdateStatus(ctx, o.ID, models.OrderRejected)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, got, "terminal status must not change")

	stored, err := s.Orders().Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, stored.Status)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	s := New()
	_, err := s.Orders().UpdateStatus(context.Background(), 404, models.OrderAccepted)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertLastWriteWins(t *testing.T) {
	s := New()
	ctx := context.Background()
	inviter := "inv"
	require.NoError(t, s.Identities().Upsert(ctx, "u", "old name", nil))
	require.NoError(t, s.Identities().Upsert(ctx, "u", "new name", &inviter))

	u, err := s.Identities().Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "new name", u.DisplayName)
	require.NotNil(t, u.InvitedBy)
	assert.Equal(t, inviter, *u.InvitedBy)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Referrals().Register(ctx, "a", "b"); err != nil {
			return err
		}
		if _, err := tx.Orders().Create(ctx, "b", payload()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Referrals().Get(ctx, "b")
	assert.ErrorIs(t, err, store.ErrNotFound, "edge must not survive a failed unit")
	_, err = s.Orders().Get(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound, "order must not survive a failed unit")
}
