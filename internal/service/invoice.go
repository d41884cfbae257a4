package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/telemetry"
)

// InvoiceService turns the computed bill into the persisted financial
// document once payment exists.
type InvoiceService interface {
	// Generate recomputes totals from the ledgers at generation time (not
	// from the payment amount, which may predate later ledger edits),
	// persists the invoice and returns the render-ready document.
	// Regeneration replaces the prior invoice for the request; the invoice
	// number stays stable. Fails with ErrPaymentRequired when no payment
	// has been recorded.
	Generate(ctx context.Context, requestID uuid.UUID) (*domain.InvoiceDocument, error)

	// Ensure returns the existing invoice or generates one. Used by the
	// dispatch gate.
	Ensure(ctx context.Context, requestID uuid.UUID) (*domain.Invoice, error)

	// GetByRequest returns the persisted invoice, or ErrInvoiceNotFound.
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Invoice, error)
}

type invoiceService struct {
	invoices domain.InvoiceStore
	payments domain.PaymentStore
	requests domain.RequestStore
	billing  BillingService
	rates    domain.Rates
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

// NewInvoiceService creates an InvoiceService. rates are only used to label
// the tax and discount lines of the document. metrics may be nil.
func NewInvoiceService(
	invoices domain.InvoiceStore,
	payments domain.PaymentStore,
	requests domain.RequestStore,
	billing BillingService,
	rates domain.Rates,
	metrics *telemetry.BusinessMetrics,
	logger zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		invoices: invoices,
		payments: payments,
		requests: requests,
		billing:  billing,
		rates:    rates,
		metrics:  metrics,
		logger:   logger,
	}
}

const invoiceNumberAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// generateInvoiceNumber builds a reference like INV-20250901-K4T9.
func generateInvoiceNumber(now time.Time) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = invoiceNumberAlphabet[int(b[i])%len(invoiceNumberAlphabet)]
	}
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), string(b)), nil
}

func (s *invoiceService) Generate(ctx context.Context, requestID uuid.UUID) (*domain.InvoiceDocument, error) {
	summary, err := s.requests.GetRequestSummary(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrRequestNotFound
	}

	pay, err := s.payments.GetPaymentByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentRequired
	}

	// The document is built from the same bill that was persisted, so a
	// ledger write racing the generation cannot make the two disagree.
	inv, bill, err := s.persist(ctx, requestID, pay.ID)
	if err != nil {
		return nil, err
	}

	return s.buildDocument(summary, bill, pay, inv), nil
}

func (s *invoiceService) Ensure(ctx context.Context, requestID uuid.UUID) (*domain.Invoice, error) {
	existing, err := s.invoices.GetInvoiceByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	pay, err := s.payments.GetPaymentByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentRequired
	}

	inv, _, err := s.persist(ctx, requestID, pay.ID)
	return inv, err
}

// persist recomputes the bill, upserts the invoice row and returns both, so
// callers render from the exact snapshot that was written.
func (s *invoiceService) persist(ctx context.Context, requestID, paymentID uuid.UUID) (*domain.Invoice, *domain.Bill, error) {
	bill, err := s.billing.CurrentBill(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	number, err := generateInvoiceNumber(now)
	if err != nil {
		return nil, nil, domain.Internal(err, "invoice.generate", "failed to generate invoice number")
	}

	inv, err := s.invoices.UpsertInvoice(ctx, &domain.Invoice{
		ID:            uuid.New(),
		RequestID:     requestID,
		PaymentID:     paymentID,
		InvoiceNumber: number,
		TotalAmount:   bill.Subtotal,
		Taxes:         bill.Tax,
		NetAmount:     bill.GrandTotal,
		GeneratedAt:   now,
	})
	if err != nil {
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.InvoicesGenerated.Inc()
	}
	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("net_amount", inv.NetAmount.StringFixed(2)).
		Msg("invoice generated")

	return inv, bill, nil
}

func (s *invoiceService) GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoices.GetInvoiceByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// percentLabel renders a fractional rate as "18%".
func percentLabel(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

// buildDocument is the single construction point for the render-ready
// document: every field is filled here from source data, nothing is defaulted
// downstream.
func (s *invoiceService) buildDocument(summary *domain.RequestSummary, bill *domain.Bill, pay *domain.Payment, inv *domain.Invoice) *domain.InvoiceDocument {
	materials := make([]domain.DocumentLine, len(bill.Materials))
	for i, m := range bill.Materials {
		materials[i] = domain.DocumentLine{
			Description: m.ItemName,
			Quantity:    m.Quantity.String(),
			UnitPrice:   m.UnitPrice.StringFixed(2),
			Amount:      m.LineTotal.StringFixed(2),
		}
	}

	labor := make([]domain.DocumentLine, len(bill.Labor))
	for i, l := range bill.Labor {
		labor[i] = domain.DocumentLine{
			Description: l.Description,
			Quantity:    fmt.Sprintf("%d min", l.Minutes),
			Amount:      l.Cost.StringFixed(2),
		}
	}

	doc := &domain.InvoiceDocument{
		InvoiceNumber: inv.InvoiceNumber,
		GeneratedAt:   inv.GeneratedAt,

		CustomerName:  summary.Customer.Name,
		CustomerEmail: summary.Customer.Email,
		CustomerPhone: summary.Customer.Phone,

		VehicleRegistration: summary.Vehicle.Registration,
		VehicleMake:         summary.Vehicle.Make,
		VehicleModel:        summary.Vehicle.Model,
		ServiceType:         summary.Request.ServiceType,

		Materials: materials,
		Labor:     labor,

		MaterialsTotal: bill.MaterialsTotal.StringFixed(2),
		LaborTotal:     bill.LaborTotal.StringFixed(2),
		Subtotal:       bill.Subtotal.StringFixed(2),
		Tax: domain.DocumentLine{
			Description: "GST (" + percentLabel(s.rates.Tax) + ")",
			Amount:      bill.Tax.StringFixed(2),
		},
		GrandTotal: bill.GrandTotal.StringFixed(2),

		PaymentMethod:        pay.Method,
		PaymentTransactionID: pay.TransactionID,
		AmountPaid:           pay.Amount.StringFixed(2),
	}

	// Discount line only when non-zero.
	if bill.Discount.IsPositive() {
		doc.Discount = &domain.DocumentLine{
			Description: "Premium membership discount (" + percentLabel(s.rates.LaborDiscount) + " labor)",
			Amount:      bill.Discount.StringFixed(2),
		}
	}

	return doc
}
