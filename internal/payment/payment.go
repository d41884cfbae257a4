// Package payment abstracts how a payment is actually taken. The recorder in
// internal/service only needs a transaction reference back; whether that came
// from a card terminal, a cash drawer entry or a Stripe charge is a provider
// concern.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider executes a charge and returns its transaction reference.
// Implementations: ManualProvider (cash/UPI/check), StripeProvider (card).
type Provider interface {
	Charge(ctx context.Context, params ChargeParams) (*Charge, error)
}

// ChargeParams describes the charge to take. PaymentMethodID is the gateway
// payment method reference (Stripe pm_...) tokenized by the caller; providers
// that do not talk to a gateway ignore it.
type ChargeParams struct {
	RequestID       string
	Amount          decimal.Decimal
	Method          string
	Description     string
	PaymentMethodID string
}

// Charge is the provider's record of a completed charge.
type Charge struct {
	TransactionID string
	Status        string
}
