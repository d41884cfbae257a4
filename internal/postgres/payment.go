package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rfallows/camshaft/internal/domain"
)

// Compile-time check that Store implements domain.PaymentStore.
var _ domain.PaymentStore = (*Store)(nil)

func (s *Store) CreatePayment(ctx context.Context, p *domain.Payment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (id, request_id, amount, method, transaction_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.RequestID, num(p.Amount), p.Method, p.TransactionID, p.Status, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrPaymentExists
		}
		return domain.Internal(err, "store.payment.create", "failed to create payment")
	}
	return nil
}

func (s *Store) GetPaymentByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount pgtype.Numeric
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, request_id, amount, method, transaction_id, status, created_at
		FROM payments WHERE request_id = $1`, requestID).
		Scan(&p.ID, &p.RequestID, &amount, &p.Method, &p.TransactionID, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.payment.get", "failed to get payment")
	}
	p.Amount = dec(amount)
	return &p, nil
}
