package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rfallows/camshaft/internal/domain"
)

// Compile-time check that Store implements domain.LaborStore.
var _ domain.LaborStore = (*Store)(nil)

func (s *Store) AppendEntry(ctx context.Context, e *domain.LaborEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO labor_entries
			(id, request_id, kind, description, labor_minutes, labor_cost,
			 advisor, superseded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.RequestID, e.Kind, e.Description, e.LaborMinutes, num(e.LaborCost),
		e.Advisor, e.Superseded, e.CreatedAt)
	if err != nil {
		return domain.Internal(err, "store.labor.append", "failed to append labor entry")
	}
	return nil
}

// AppendEntries inserts the batch in one transaction, so a failed insert
// leaves no partial batch behind.
func (s *Store) AppendEntries(ctx context.Context, entries []*domain.LaborEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "store.labor.append", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err = tx.Exec(ctx, `
			INSERT INTO labor_entries
				(id, request_id, kind, description, labor_minutes, labor_cost,
				 advisor, superseded, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.RequestID, e.Kind, e.Description, e.LaborMinutes, num(e.LaborCost),
			e.Advisor, e.Superseded, e.CreatedAt)
		if err != nil {
			return domain.Internal(err, "store.labor.append", "failed to insert labor entry")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "store.labor.append", "failed to commit batch")
	}
	return nil
}

// ReplaceLaborCharges supersedes the live charges and appends the new batch in
// one transaction, so readers never observe a half-replaced breakdown.
func (s *Store) ReplaceLaborCharges(ctx context.Context, requestID uuid.UUID, entries []*domain.LaborEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "store.labor.replace", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE labor_entries SET superseded = true
		WHERE request_id = $1 AND kind = $2 AND NOT superseded`,
		requestID, domain.EntryLaborCharge)
	if err != nil {
		return domain.Internal(err, "store.labor.replace", "failed to supersede labor charges")
	}

	for _, e := range entries {
		_, err = tx.Exec(ctx, `
			INSERT INTO labor_entries
				(id, request_id, kind, description, labor_minutes, labor_cost,
				 advisor, superseded, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.RequestID, e.Kind, e.Description, e.LaborMinutes, num(e.LaborCost),
			e.Advisor, e.Superseded, e.CreatedAt)
		if err != nil {
			return domain.Internal(err, "store.labor.replace", "failed to insert labor entry")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "store.labor.replace", "failed to commit replacement")
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, requestID uuid.UUID) ([]domain.LaborEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, request_id, kind, description, labor_minutes, labor_cost,
		       advisor, superseded, created_at
		FROM labor_entries
		WHERE request_id = $1
		ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, domain.Internal(err, "store.labor.list", "failed to list labor entries")
	}
	defer rows.Close()

	var entries []domain.LaborEntry
	for rows.Next() {
		var (
			e    domain.LaborEntry
			cost pgtype.Numeric
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Kind, &e.Description, &e.LaborMinutes,
			&cost, &e.Advisor, &e.Superseded, &e.CreatedAt); err != nil {
			return nil, domain.Internal(err, "store.labor.list", "failed to scan labor entry")
		}
		e.LaborCost = dec(cost)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "store.labor.list", "failed to read labor entries")
	}
	return entries, nil
}
