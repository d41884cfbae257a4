package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// ErrNoPaymentMethod is returned when a card charge arrives without a payment
// method id and no default is configured.
var ErrNoPaymentMethod = errors.New("no stripe payment method id provided or configured")

// StripeProvider charges cards through Stripe payment intents. Intended for
// the card method only; counter methods go through ManualProvider.
type StripeProvider struct {
	currency string

	// defaultPaymentMethod is charged when the caller does not tokenize one
	// (e.g. a saved pm_... for counter-present card payments).
	defaultPaymentMethod string
}

// NewStripeProvider configures the Stripe SDK with the secret key.
func NewStripeProvider(apiKey, currency, defaultPaymentMethod string) *StripeProvider {
	stripe.Key = apiKey
	if currency == "" {
		currency = "inr"
	}
	return &StripeProvider{
		currency:             currency,
		defaultPaymentMethod: defaultPaymentMethod,
	}
}

// Charge creates and auto-confirms a payment intent for the amount, returning
// the intent id as the transaction reference.
func (p *StripeProvider) Charge(ctx context.Context, params ChargeParams) (*Charge, error) {
	paymentMethod := params.PaymentMethodID
	if paymentMethod == "" {
		paymentMethod = p.defaultPaymentMethod
	}
	if paymentMethod == "" {
		return nil, ErrNoPaymentMethod
	}

	minor := params.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	pi, err := paymentintent.New(&stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(minor),
		Currency:      stripe.String(p.currency),
		Description:   stripe.String(params.Description),
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String(paymentMethod),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{"service_request_id": params.RequestID},
	})
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	return &Charge{TransactionID: pi.ID, Status: string(pi.Status)}, nil
}
