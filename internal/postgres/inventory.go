package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
)

// Compile-time check that Store implements domain.InventoryStore.
var _ domain.InventoryStore = (*Store)(nil)

func (s *Store) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inventory_items
			(id, name, category, current_stock, unit_price, reorder_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.Name, item.Category, num(item.CurrentStock), num(item.UnitPrice),
		num(item.ReorderLevel), item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return domain.Internal(err, "store.item.create", "failed to create inventory item")
	}
	return nil
}

func scanItem(row pgx.Row, item *domain.InventoryItem) error {
	var stock, price, reorder pgtype.Numeric
	if err := row.Scan(&item.ID, &item.Name, &item.Category, &stock, &price, &reorder,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		return err
	}
	item.CurrentStock = dec(stock)
	item.UnitPrice = dec(price)
	item.ReorderLevel = dec(reorder)
	return nil
}

const itemColumns = `id, name, category, current_stock, unit_price, reorder_level, created_at, updated_at`

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := scanItem(s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id), &item)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.item.get", "failed to get inventory item")
	}
	return &item, nil
}

// ConsumeStock locks the item row, checks availability and commits the
// decrement together with the usage record. Two concurrent consumers serialize
// on the row lock; the loser sees the reduced stock.
func (s *Store) ConsumeStock(ctx context.Context, itemID, requestID uuid.UUID, quantity decimal.Decimal) (*domain.MaterialUsage, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, "store.stock.consume", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var stock pgtype.Numeric
	err = tx.QueryRow(ctx,
		`SELECT current_stock FROM inventory_items WHERE id = $1 FOR UPDATE`, itemID).
		Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("store.stock.consume", "inventory item", itemID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, "store.stock.consume", "failed to lock inventory item")
	}
	if dec(stock).LessThan(quantity) {
		return nil, domain.ErrInsufficientStock
	}

	_, err = tx.Exec(ctx, `
		UPDATE inventory_items
		SET current_stock = current_stock - $2, updated_at = now()
		WHERE id = $1`, itemID, num(quantity))
	if err != nil {
		return nil, domain.Internal(err, "store.stock.consume", "failed to decrement stock")
	}

	usage := domain.MaterialUsage{
		ID:        uuid.New(),
		RequestID: requestID,
		ItemID:    itemID,
		Quantity:  quantity,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO material_usages (id, request_id, item_id, quantity, reversed, used_at)
		VALUES ($1, $2, $3, $4, false, now())
		RETURNING used_at`,
		usage.ID, usage.RequestID, usage.ItemID, num(usage.Quantity)).
		Scan(&usage.UsedAt)
	if err != nil {
		return nil, domain.Internal(err, "store.stock.consume", "failed to record material usage")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "store.stock.consume", "failed to commit consumption")
	}
	return &usage, nil
}

// ReverseUsage flips the reversed flag and restores stock in one transaction.
// The conditional UPDATE on reversed = false makes double reversal a no-op
// detected by rows-affected.
func (s *Store) ReverseUsage(ctx context.Context, usageID uuid.UUID) (*domain.MaterialUsage, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, "store.stock.reverse", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var (
		usage    domain.MaterialUsage
		quantity pgtype.Numeric
	)
	err = tx.QueryRow(ctx, `
		UPDATE material_usages SET reversed = true
		WHERE id = $1 AND NOT reversed
		RETURNING id, request_id, item_id, quantity, reversed, used_at`, usageID).
		Scan(&usage.ID, &usage.RequestID, &usage.ItemID, &quantity, &usage.Reversed, &usage.UsedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish missing usage from already-reversed usage.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM material_usages WHERE id = $1)`, usageID).
			Scan(&exists); err != nil {
			return nil, domain.Internal(err, "store.stock.reverse", "failed to check usage")
		}
		if exists {
			return nil, domain.ErrUsageReversed
		}
		return nil, domain.NotFound("store.stock.reverse", "material usage", usageID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, "store.stock.reverse", "failed to reverse usage")
	}
	usage.Quantity = dec(quantity)

	_, err = tx.Exec(ctx, `
		UPDATE inventory_items
		SET current_stock = current_stock + $2, updated_at = now()
		WHERE id = $1`, usage.ItemID, num(usage.Quantity))
	if err != nil {
		return nil, domain.Internal(err, "store.stock.reverse", "failed to restore stock")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "store.stock.reverse", "failed to commit reversal")
	}
	return &usage, nil
}

func (s *Store) AddStock(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := scanItem(s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET current_stock = current_stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+itemColumns, itemID, num(quantity)), &item)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("store.stock.add", "inventory item", itemID.String())
	}
	if err != nil {
		return nil, domain.Internal(err, "store.stock.add", "failed to add stock")
	}
	return &item, nil
}

func (s *Store) ListUsages(ctx context.Context, requestID uuid.UUID) ([]domain.MaterialUsage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, request_id, item_id, quantity, reversed, used_at
		FROM material_usages
		WHERE request_id = $1
		ORDER BY used_at, id`, requestID)
	if err != nil {
		return nil, domain.Internal(err, "store.usage.list", "failed to list usages")
	}
	defer rows.Close()

	var usages []domain.MaterialUsage
	for rows.Next() {
		var (
			u        domain.MaterialUsage
			quantity pgtype.Numeric
		)
		if err := rows.Scan(&u.ID, &u.RequestID, &u.ItemID, &quantity, &u.Reversed, &u.UsedAt); err != nil {
			return nil, domain.Internal(err, "store.usage.list", "failed to scan usage")
		}
		u.Quantity = dec(quantity)
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "store.usage.list", "failed to read usages")
	}
	return usages, nil
}

func (s *Store) ListLowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`,
		       CASE WHEN current_stock <= reorder_level / 2 THEN 'critical' ELSE 'low' END
		FROM inventory_items
		WHERE current_stock <= reorder_level
		ORDER BY name`)
	if err != nil {
		return nil, domain.Internal(err, "store.stock.low", "failed to query low stock")
	}
	defer rows.Close()

	var out []domain.LowStockItem
	for rows.Next() {
		var (
			l                     domain.LowStockItem
			stock, price, reorder pgtype.Numeric
		)
		if err := rows.Scan(&l.Item.ID, &l.Item.Name, &l.Item.Category, &stock, &price,
			&reorder, &l.Item.CreatedAt, &l.Item.UpdatedAt, &l.Severity); err != nil {
			return nil, domain.Internal(err, "store.stock.low", "failed to scan low stock row")
		}
		l.Item.CurrentStock = dec(stock)
		l.Item.UnitPrice = dec(price)
		l.Item.ReorderLevel = dec(reorder)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "store.stock.low", "failed to read low stock rows")
	}
	return out, nil
}
