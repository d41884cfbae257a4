package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rfallows/camshaft/internal/domain"
)

// Compile-time check that Store implements domain.BillingStore.
var _ domain.BillingStore = (*Store)(nil)

// GetBillingSnapshot reads material lines, labor lines and membership standing
// inside one repeatable-read transaction, so the calculator never sums a bill
// over state from two points in time.
func (s *Store) GetBillingSnapshot(ctx context.Context, requestID uuid.UUID) (*domain.BillingSnapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	snap := domain.BillingSnapshot{RequestID: requestID}

	err = tx.QueryRow(ctx, `
		SELECT c.membership_tier ILIKE $2
		FROM service_requests r
		JOIN vehicles v ON v.id = r.vehicle_id
		JOIN customers c ON c.id = v.customer_id
		WHERE r.id = $1`, requestID, domain.TierPremium).
		Scan(&snap.PremiumMember)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("store.billing.snapshot", "service request", requestID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to read membership standing")
	}

	rows, err := tx.Query(ctx, `
		SELECT u.item_id, i.name, u.quantity, i.unit_price
		FROM material_usages u
		JOIN inventory_items i ON i.id = u.item_id
		WHERE u.request_id = $1 AND NOT u.reversed
		ORDER BY u.used_at, u.id`, requestID)
	if err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to read material lines")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line            domain.MaterialLine
			quantity, price pgtype.Numeric
		)
		if err := rows.Scan(&line.ItemID, &line.ItemName, &quantity, &price); err != nil {
			return nil, domain.Internal(err, "store.billing.snapshot", "failed to scan material line")
		}
		line.Quantity = dec(quantity)
		line.UnitPrice = dec(price)
		snap.Materials = append(snap.Materials, line)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to read material lines")
	}
	rows.Close()

	rows, err = tx.Query(ctx, `
		SELECT description, labor_minutes, labor_cost
		FROM labor_entries
		WHERE request_id = $1 AND kind = $2 AND NOT superseded
		ORDER BY created_at, id`, requestID, domain.EntryLaborCharge)
	if err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to read labor lines")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			line domain.LaborLine
			cost pgtype.Numeric
		)
		if err := rows.Scan(&line.Description, &line.Minutes, &cost); err != nil {
			return nil, domain.Internal(err, "store.billing.snapshot", "failed to scan labor line")
		}
		line.Cost = dec(cost)
		snap.Labor = append(snap.Labor, line)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to read labor lines")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "store.billing.snapshot", "failed to commit snapshot read")
	}
	return &snap, nil
}
