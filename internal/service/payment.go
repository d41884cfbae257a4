package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/payment"
	"github.com/rfallows/camshaft/internal/telemetry"
)

// RecordPaymentParams are the inputs for recording a payment. Amount,
// Method and TransactionID are all optional: a missing amount is derived
// from the current bill, a missing method falls back to the configured
// default, and a missing transaction id is supplied by the provider.
// PaymentMethodID is the gateway payment method reference for card charges
// (the caller's tokenized pm_...); the provider falls back to its configured
// default when absent.
type RecordPaymentParams struct {
	RequestID       uuid.UUID
	Amount          string
	Method          string
	TransactionID   string
	PaymentMethodID string
}

// PaymentService records payments against service requests. A payment is the
// gate that must be satisfied before invoicing and dispatch.
type PaymentService interface {
	// RecordPayment creates the payment row. Fails with ErrRequestNotFound
	// for an unknown request, ErrInvalidAmount for a non-positive or
	// unparseable amount, and ErrPaymentExists when the request already
	// has an active payment.
	RecordPayment(ctx context.Context, params RecordPaymentParams) (*domain.Payment, error)

	// GetPayment returns the request's payment, or ErrPaymentRequired when
	// none has been recorded.
	GetPayment(ctx context.Context, requestID uuid.UUID) (*domain.Payment, error)
}

type paymentService struct {
	payments      domain.PaymentStore
	requests      domain.RequestStore
	billing       BillingService
	cardProvider  payment.Provider
	cashProvider  payment.Provider
	defaultMethod string
	metrics       *telemetry.BusinessMetrics
	logger        zerolog.Logger
}

// NewPaymentService creates a PaymentService. cardProvider handles the card
// method; every other method goes through cashProvider. metrics may be nil.
func NewPaymentService(
	payments domain.PaymentStore,
	requests domain.RequestStore,
	billing BillingService,
	cardProvider payment.Provider,
	cashProvider payment.Provider,
	defaultMethod string,
	metrics *telemetry.BusinessMetrics,
	logger zerolog.Logger,
) PaymentService {
	if defaultMethod == "" {
		defaultMethod = domain.MethodCash
	}
	return &paymentService{
		payments:      payments,
		requests:      requests,
		billing:       billing,
		cardProvider:  cardProvider,
		cashProvider:  cashProvider,
		defaultMethod: defaultMethod,
		metrics:       metrics,
		logger:        logger,
	}
}

func validMethod(method string) bool {
	switch method {
	case domain.MethodCash, domain.MethodCard, domain.MethodUPI, domain.MethodCheck:
		return true
	}
	return false
}

func (s *paymentService) RecordPayment(ctx context.Context, params RecordPaymentParams) (*domain.Payment, error) {
	req, err := s.requests.GetRequest(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Dispatched {
		return nil, ErrRequestDispatched
	}

	method := params.Method
	if method == "" {
		method = s.defaultMethod
	}
	if !validMethod(method) {
		return nil, ErrInvalidMethod
	}

	var amount decimal.Decimal
	if params.Amount == "" {
		bill, err := s.billing.CurrentBill(ctx, params.RequestID)
		if err != nil {
			return nil, err
		}
		amount = bill.GrandTotal
	} else {
		amount, err = decimal.NewFromString(params.Amount)
		if err != nil {
			return nil, ErrInvalidAmount
		}
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	transactionID := params.TransactionID
	if transactionID == "" {
		provider := s.cashProvider
		if method == domain.MethodCard {
			provider = s.cardProvider
		}
		charge, err := provider.Charge(ctx, payment.ChargeParams{
			RequestID:       params.RequestID.String(),
			Amount:          amount,
			Method:          method,
			Description:     "Service request " + params.RequestID.String(),
			PaymentMethodID: params.PaymentMethodID,
		})
		if err != nil {
			return nil, domain.Internal(err, "payment.record", "payment provider charge failed")
		}
		transactionID = charge.TransactionID
	}

	p := &domain.Payment{
		ID:            uuid.New(),
		RequestID:     params.RequestID,
		Amount:        amount,
		Method:        method,
		TransactionID: transactionID,
		Status:        domain.PaymentCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.payments.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.WithLabelValues(method).Inc()
	}
	s.logger.Info().
		Str("request_id", params.RequestID.String()).
		Str("method", method).
		Str("amount", amount.StringFixed(2)).
		Str("transaction_id", transactionID).
		Msg("payment recorded")

	return p, nil
}

func (s *paymentService) GetPayment(ctx context.Context, requestID uuid.UUID) (*domain.Payment, error) {
	p, err := s.payments.GetPaymentByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentRequired
	}
	return p, nil
}
