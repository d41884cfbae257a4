// Package notify emits business events for external consumers: the customer
// notifier and restocking alerts. Delivery is fire-and-forget; a failed
// publish must never fail the originating operation, so callers log and move on.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Subjects events are published on.
const (
	SubjectStatusChanged = "camshaft.request.status_changed"
	SubjectLowStock      = "camshaft.inventory.low_stock"
)

// StatusChangedEvent is emitted after every successful status transition,
// including dispatch. The notifier decides how (or whether) to reach the
// customer; the engine does not care about delivery.
type StatusChangedEvent struct {
	RequestID     uuid.UUID `json:"request_id"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	Note          string    `json:"note,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LowStockEvent is emitted by the restock scan for each item at or below its
// reorder level.
type LowStockEvent struct {
	ItemID       uuid.UUID `json:"item_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	CurrentStock string    `json:"current_stock"`
	ReorderLevel string    `json:"reorder_level"`
	Severity     string    `json:"severity"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits events to whatever transport is configured.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusChangedEvent) error
	PublishLowStock(ctx context.Context, ev LowStockEvent) error
}

// NoopPublisher drops all events. Used when no broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChanged(ctx context.Context, ev StatusChangedEvent) error {
	return nil
}

func (NoopPublisher) PublishLowStock(ctx context.Context, ev LowStockEvent) error {
	return nil
}
