// Package worker drains the outbound notification queue and delivers each
// message through the configured transport. Delivery is single-attempt: a
// failed send is logged and the message dropped, the ledger is already
// committed either way.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/olimp-shop/backend/pkg/queue"
)

const dequeueBackoff = 5 * time.Second

// Transport sends one rendered message to a chat.
type Transport interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Deliverer is the notification delivery loop.
type Deliverer struct {
	queue     *queue.Queue
	transport Transport
	logger    *zap.Logger
}

// NewDeliverer creates a notification deliverer.
func NewDeliverer(q *queue.Queue, transport Transport, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{queue: q, transport: transport, logger: logger}
}

// Run blocks on the queue until ctx is done.
func (d *Deliverer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("delivery worker stopping")
			return
		default:
		}

		msg, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			d.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(dequeueBackoff)
			continue
		}
		if msg == nil {
			continue
		}

		if err := d.transport.SendMessage(ctx, msg.ChatID, msg.Text); err != nil {
			d.logger.Error("delivery failed, message dropped",
				zap.String("message_id", msg.ID),
				zap.String("kind", string(msg.Kind)),
				zap.Int64("order_id", msg.OrderID),
				zap.Error(err),
			)
			continue
		}
		d.logger.Debug("notification delivered",
			zap.String("message_id", msg.ID),
			zap.String("kind", string(msg.Kind)),
			zap.Int64("order_id", msg.OrderID),
		)
	}
}
