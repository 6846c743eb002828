// Package queue is the Redis-backed outbound notification queue. The core
// pushes rendered messages after an order commits; the delivery worker
// drains them. There is deliberately no retry or dead-letter path: delivery
// is single-attempt and failures are logged by the consumer.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// QueueOutbound is the Redis list key for rendered notifications.
const QueueOutbound = "notify:outbound"

// Kind identifies which rendered view a message carries.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindManager  Kind = "manager"
)

// Message is one rendered notification awaiting delivery.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	ChatID    string    `json:"chat_id"`
	Text      string    `json:"text"`
	OrderID   int64     `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Queue enqueues and dequeues notifications via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a Redis-backed notification queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// Enqueue pushes one rendered message.
func (q *Queue) Enqueue(ctx context.Context, kind Kind, chatID, text string, orderID int64) error {
	msg := Message{
		ID:        uuid.New().String(),
		Kind:      kind,
		ChatID:    chatID,
		Text:      text,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := q.client.RPush(ctx, QueueOutbound, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued notification",
		zap.String("message_id", msg.ID),
		zap.String("kind", string(kind)),
		zap.Int64("order_id", orderID),
	)
	return nil
}

// Dequeue blocks until a message is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (*Message, error) {
	result, err := q.client.BLPop(ctx, 0, QueueOutbound).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		q.logger.Warn("invalid message payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &msg, nil
}
