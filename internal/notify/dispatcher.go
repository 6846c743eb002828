// Package notify renders the two views of a committed order and hands them
// to the outbound queue. Dispatch runs strictly after the ledger commit and
// never affects it: enqueue failures are logged and the message is lost
// (single-attempt delivery, a known gap).
package notify

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/pkg/queue"
)

// Enqueuer is the slice of the queue the dispatcher needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind queue.Kind, chatID, text string, orderID int64) error
}

// Dispatcher fans a committed order out to the customer and the manager
// channel.
type Dispatcher struct {
	queue         Enqueuer
	managerChatID string
	logger        *zap.Logger
}

// NewDispatcher creates a dispatcher. managerChatID is the chat that
// receives order alerts.
func NewDispatcher(q Enqueuer, managerChatID string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: q, managerChatID: managerChatID, logger: logger}
}

// OrderCommitted renders and enqueues both views. The user id doubles as
// the customer's private chat id.
func (d *Dispatcher) OrderCommitted(ctx context.Context, o *models.Order, u *models.User, inviterActivated, percent int, charge decimal.Decimal) {
	customer := RenderCustomer(o, percent, charge)
	if err := d.queue.Enqueue(ctx, queue.KindCustomer, u.ID, customer, o.ID); err != nil {
		d.logger.Error("enqueue customer notification failed",
			zap.Int64("order_id", o.ID), zap.Error(err))
	}

	if d.managerChatID == "" {
		d.logger.Warn("no manager chat configured, manager alert dropped", zap.Int64("order_id", o.ID))
		return
	}
	manager := RenderManager(o, u, inviterActivated, percent, charge)
	if err := d.queue.Enqueue(ctx, queue.KindManager, d.managerChatID, manager, o.ID); err != nil {
		d.logger.Error("enqueue manager notification failed",
			zap.Int64("order_id", o.ID), zap.Error(err))
	}
}
