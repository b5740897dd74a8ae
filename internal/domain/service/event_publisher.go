package service

import (
	"context"
	"time"

	"github.com/damon-houk/expense-tracker/internal/domain/entity"
)

// EventType names a change made to a transaction
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
)

// TransactionEvent describes a change made to a transaction
type TransactionEvent struct {
	Type          EventType           `json:"type"`
	TransactionID string              `json:"transaction_id"`
	Owner         string              `json:"owner"`
	Transaction   *entity.Transaction `json:"transaction,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// EventPublisher defines the interface for announcing transaction changes
type EventPublisher interface {
	// Publish delivers a single event
	Publish(ctx context.Context, event TransactionEvent) error
}

// NoopPublisher discards every event
type NoopPublisher struct{}

// Publish implements EventPublisher
func (NoopPublisher) Publish(context.Context, TransactionEvent) error {
	return nil
}
