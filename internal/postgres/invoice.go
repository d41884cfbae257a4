package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rfallows/camshaft/internal/domain"
)

// Compile-time check that Store implements domain.InvoiceStore.
var _ domain.InvoiceStore = (*Store)(nil)

// UpsertInvoice inserts the invoice or replaces the financial fields of the
// existing row for the request. The conflict branch deliberately keeps the
// original id, invoice number and payment link: regeneration changes the
// numbers, never the document's identity.
func (s *Store) UpsertInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	var (
		out               domain.Invoice
		total, taxes, net pgtype.Numeric
	)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO invoices
			(id, request_id, payment_id, invoice_number, total_amount, taxes, net_amount, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (request_id) DO UPDATE
		SET total_amount = EXCLUDED.total_amount,
		    taxes        = EXCLUDED.taxes,
		    net_amount   = EXCLUDED.net_amount,
		    generated_at = EXCLUDED.generated_at
		RETURNING id, request_id, payment_id, invoice_number, total_amount, taxes, net_amount, generated_at`,
		inv.ID, inv.RequestID, inv.PaymentID, inv.InvoiceNumber,
		num(inv.TotalAmount), num(inv.Taxes), num(inv.NetAmount), inv.GeneratedAt).
		Scan(&out.ID, &out.RequestID, &out.PaymentID, &out.InvoiceNumber,
			&total, &taxes, &net, &out.GeneratedAt)
	if err != nil {
		return nil, domain.Internal(err, "store.invoice.upsert", "failed to upsert invoice")
	}
	out.TotalAmount = dec(total)
	out.Taxes = dec(taxes)
	out.NetAmount = dec(net)
	return &out, nil
}

func (s *Store) GetInvoiceByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Invoice, error) {
	var (
		inv               domain.Invoice
		total, taxes, net pgtype.Numeric
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, request_id, payment_id, invoice_number, total_amount, taxes, net_amount, generated_at
		FROM invoices WHERE request_id = $1`, requestID).
		Scan(&inv.ID, &inv.RequestID, &inv.PaymentID, &inv.InvoiceNumber,
			&total, &taxes, &net, &inv.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.invoice.get", "failed to get invoice")
	}
	inv.TotalAmount = dec(total)
	inv.Taxes = dec(taxes)
	inv.NetAmount = dec(net)
	return &inv, nil
}
