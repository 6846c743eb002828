package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/pkg/queue"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:     7,
		UserID: "B",
		Payload: models.OrderPayload{
			Items: []models.OrderItem{
				{Name: "X", Flavor: "mint", Qty: 2, Price: decimal.NewFromInt(100)},
				{Name: "Y", Qty: 1, Price: decimal.RequireFromString("49.50")},
			},
			Address:  "addr",
			District: "d",
			Total:    decimal.RequireFromString("249.50"),
		},
		Status: models.OrderNew,
	}
}

func TestRenderCustomer(t *testing.T) {
	text := RenderCustomer(testOrder(), 5, decimal.RequireFromString("237.03"))

	assert.Contains(t, text, "X | mint | x2 | 200 ₽")
	assert.Contains(t, text, "Y | - | x1 | 49.5 ₽")
	assert.Contains(t, text, "District: d")
	assert.Contains(t, text, "Address: addr")
	assert.Contains(t, text, "Referral discount: 5%")
	assert.Contains(t, text, "*237.03 ₽*")
}

func TestRenderCustomerOmitsZeroDiscount(t *testing.T) {
	text := RenderCustomer(testOrder(), 0, decimal.RequireFromString("249.50"))
	assert.NotContains(t, text, "discount")
	assert.Contains(t, text, "*249.50 ₽*")
}

func TestRenderManagerEmbedsOrderReference(t *testing.T) {
	inviter := "A"
	u := &models.User{ID: "B", DisplayName: "Bee", InvitedBy: &inviter}
	text := RenderManager(testOrder(), u, 3, 15, decimal.RequireFromString("212.08"))

	assert.Contains(t, text, "NEW ORDER #7")
	assert.Contains(t, text, "From: Bee (id B)")
	assert.Contains(t, text, "Invited by A, inviter has 3 activated referrals")
	assert.Contains(t, text, "discount 15%")
}

func TestRenderManagerWithoutInviter(t *testing.T) {
	u := &models.User{ID: "B"}
	text := RenderManager(testOrder(), u, 0, 0, decimal.RequireFromString("249.50"))
	assert.NotContains(t, text, "Invited by")
	assert.Contains(t, text, "From: B (id B)", "falls back to the id when no display name")
}

type captureQueue struct {
	kinds   []queue.Kind
	chatIDs []string
	texts   []string
	err     error
}

func (c *captureQueue) Enqueue(ctx context.Context, kind queue.Kind, chatID, text string, orderID int64) error {
	c.kinds = append(c.kinds, kind)
	c.chatIDs = append(c.chatIDs, chatID)
	c.texts = append(c.texts, text)
	return c.err
}

func TestDispatcherEnqueuesBothViews(t *testing.T) {
	q := &captureQueue{}
	d := NewDispatcher(q, "-100123", nil)

	d.OrderCommitted(context.Background(), testOrder(), &models.User{ID: "B"}, 0, 5, decimal.RequireFromString("237.03"))

	require.Len(t, q.kinds, 2)
	assert.Equal(t, queue.KindCustomer, q.kinds[0])
	assert.Equal(t, "B", q.chatIDs[0], "customer chat is the user id")
	assert.Equal(t, queue.KindManager, q.kinds[1])
	assert.Equal(t, "-100123", q.chatIDs[1])
	assert.True(t, strings.Contains(q.texts[1], "#7"))
}

func TestDispatcherSwallowsEnqueueErrors(t *testing.T) {
	q := &captureQueue{err: context.DeadlineExceeded}
	d := NewDispatcher(q, "-100123", nil)

	// Must not panic or surface the failure; the order is already committed.
	d.OrderCommitted(context.Background(), testOrder(), &models.User{ID: "B"}, 0, 0, decimal.RequireFromString("249.50"))
	assert.Len(t, q.kinds, 2)
}
