package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the counter.
const (
	MethodCash  = "cash"
	MethodCard  = "card"
	MethodUPI   = "upi"
	MethodCheck = "check"
)

// Payment statuses.
const (
	PaymentCompleted = "completed"
)

// Payment records money received against a service request. At most one
// active payment per request; it gates invoicing and dispatch.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	RequestID     uuid.UUID       `json:"request_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
