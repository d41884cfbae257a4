package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked material. CurrentStock never goes negative;
// the invariant is enforced at decrement time by the store.
type InventoryItem struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Stock alert severities for the low-stock query.
const (
	StockSeverityLow      = "low"      // currentStock <= reorderLevel
	StockSeverityCritical = "critical" // currentStock <= reorderLevel/2
)

// LowStockItem pairs an item with the severity of its shortfall.
type LowStockItem struct {
	Item     InventoryItem `json:"item"`
	Severity string        `json:"severity"`
}

// MaterialUsage links a service request to an inventory item and quantity.
// Immutable once created; corrections are explicit reversals, never edits.
// Its creation and the matching stock decrement commit together or not at all.
type MaterialUsage struct {
	ID        uuid.UUID       `json:"id"`
	RequestID uuid.UUID       `json:"request_id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reversed  bool            `json:"reversed"`
	UsedAt    time.Time       `json:"used_at"`
}
