package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrders   = "order_events"
	TopicProducts = "product_events"
)

const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
	OrderDeleted       = "order_deleted"
	ProductCreated     = "product_created"
	ProductUpdated     = "product_updated"
	ProductDeleted     = "product_deleted"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

func New(eventType string, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisherはcommit後に呼ぶ。失敗しても業務処理は取り消さない
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, ev Event) error
	Close() error
}

// Kafkaを使わない環境用
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, key string, ev Event) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
