package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
	"github.com/olimp-shop/backend/internal/store/memory"
	"github.com/olimp-shop/backend/pkg/keymutex"
)

type dispatchCall struct {
	order            *models.Order
	user             *models.User
	inviterActivated int
	percent          int
	charge           decimal.Decimal
}

type fakeDispatcher struct {
	calls []dispatchCall
}

func (f *fakeDispatcher) OrderCommitted(ctx context.Context, o *models.Order, u *models.User, inviterActivated, percent int, charge decimal.Decimal) {
	f.calls = append(f.calls, dispatchCall{o, u, inviterActivated, percent, charge})
}

func newService(t *testing.T) (*Service, store.Store, *fakeDispatcher) {
	t.Helper()
	st := memory.New()
	d := &fakeDispatcher{}
	return NewService(st, d, keymutex.New(), zap.NewNop()), st, d
}

func validPayload() models.OrderPayload {
	return models.OrderPayload{
		Items:    []models.OrderItem{{Name: "X", Qty: 2, Price: decimal.NewFromInt(100)}},
		Address:  "addr",
		District: "d",
		Total:    decimal.NewFromInt(200),
	}
}

// First order by a referred user activates their edge, applies the 5% tier
// and charges 190.00 for a declared 200.
func TestSubmitActivatesReferralAndAppliesDiscount(t *testing.T) {
	svc, st, d := newService(t)
	ctx := context.Background()

	require.NoError(t, st.Identities().Upsert(ctx, "A", "Inviter", nil))
	inviter := "A"
	require.NoError(t, st.Identities().Upsert(ctx, "B", "Referee", &inviter))
	out, err := st.Referrals().Register(ctx, "A", "B")
	require.NoError(t, err)
	require.Equal(t, models.RegisterCreated, out)

	res, err := svc.Submit(ctx, "B", validPayload())
	require.NoError(t, err)

	edge, err := st.Referrals().Get(ctx, "B")
	require.NoError(t, err)
	assert.True(t, edge.Activated)

	n, err := st.Referrals().CountActivated(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 5, res.Percent)
	assert.Equal(t, "190.00", res.Charge.StringFixed(2))

	require.Len(t, d.calls, 1)
	assert.Equal(t, res.Order.ID, d.calls[0].order.ID)
	assert.Equal(t, "B", d.calls[0].user.ID)
	assert.Equal(t, 1, d.calls[0].inviterActivated)
	assert.Equal(t, 5, d.calls[0].percent)
	assert.Equal(t, "190.00", d.calls[0].charge.StringFixed(2))
}

func TestSubmitWithoutReferralNoDiscount(t *testing.T) {
	svc, _, d := newService(t)

	res, err := svc.Submit(context.Background(), "solo", validPayload())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Percent)
	assert.Equal(t, "200.00", res.Charge.StringFixed(2))
	require.Len(t, d.calls, 1)
}

func TestSubmitSecondOrderActivatesNothingNew(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	_, err := st.Referrals().Register(ctx, "A", "B")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "B", validPayload())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "B", validPayload())
	require.NoError(t, err)

	n, err := st.Referrals().CountActivated(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "activation is at most once")
}

func TestSubmitCreatesIdentityForUnknownUser(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, "stranger", validPayload())
	require.NoError(t, err)

	u, err := st.Identities().Get(ctx, "stranger")
	require.NoError(t, err)
	assert.Equal(t, "stranger", u.ID)
	assert.Equal(t, "stranger", res.Order.UserID)
}

func TestSubmitRejectsInvalidPayloadBeforeAnyWrite(t *testing.T) {
	svc, st, d := newService(t)
	ctx := context.Background()

	_, err := st.Referrals().Register(ctx, "A", "B")
	require.NoError(t, err)

	cases := []models.OrderPayload{
		{Address: "addr", District: "d", Total: decimal.NewFromInt(200)}, // no items
		{Items: validPayload().Items, District: "d", Total: decimal.NewFromInt(200)},
		{Items: validPayload().Items, Address: "addr", District: "d"}, // zero total
		{Items: []models.OrderItem{{Name: "", Qty: 1}}, Address: "addr", District: "d", Total: decimal.NewFromInt(1)},
	}
	for i, p := range cases {
		_, err := svc.Submit(ctx, "B", p)
		require.ErrorIs(t, err, ErrRejected, "case %d", i)
	}

	// Nothing was persisted or dispatched, the edge stayed pending.
	edge, err := st.Referrals().Get(ctx, "B")
	require.NoError(t, err)
	assert.False(t, edge.Activated)
	_, err = st.Orders().Get(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, d.calls)
}

func TestApplyAcceptThenRejectKeepsAccepted(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, "u", validPayload())
	require.NoError(t, err)
	id := res.Order.ID

	act, err := svc.Apply(ctx, id, "accept")
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, act.Status)
	assert.True(t, act.Changed)

	act, err = svc.Apply(ctx, id, "reject")
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, act.Status, "first transition wins")
	assert.False(t, act.Changed)
}

func TestApplyUnknownOrder(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Apply(context.Background(), 9999, "accept")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyUnknownAction(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	res, err := svc.Submit(ctx, "u", validPayload())
	require.NoError(t, err)

	_, err = svc.Apply(ctx, res.Order.ID, "escalate")
	assert.ErrorIs(t, err, ErrRejected)
}
