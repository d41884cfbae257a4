package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/telemetry"
)

// InventoryService owns stock levels and the material consumption ledger.
type InventoryService interface {
	// Consume atomically decrements stock and records a MaterialUsage for
	// the request, then returns the updated bill snapshot. Fails with
	// ErrInsufficientStock (no change) when quantity exceeds current stock,
	// reject-outright: the first committer wins, the loser retries or gives up.
	Consume(ctx context.Context, requestID, itemID uuid.UUID, quantity decimal.Decimal) (*domain.Bill, error)

	// Reverse restores stock by the reversed quantity and marks the usage
	// reversed. Used for corrections; the usage row is kept, never deleted.
	Reverse(ctx context.Context, usageID uuid.UUID) (*domain.MaterialUsage, error)

	// Restock adds stock to an item.
	Restock(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) (*domain.InventoryItem, error)

	// LowStock returns items at or below their reorder level, tagged
	// critical when at or below half of it.
	LowStock(ctx context.Context) ([]domain.LowStockItem, error)
}

type inventoryService struct {
	inventory domain.InventoryStore
	requests  domain.RequestStore
	billing   BillingService
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger
}

// NewInventoryService creates an InventoryService. metrics may be nil.
func NewInventoryService(
	inventory domain.InventoryStore,
	requests domain.RequestStore,
	billing BillingService,
	metrics *telemetry.BusinessMetrics,
	logger zerolog.Logger,
) InventoryService {
	return &inventoryService{
		inventory: inventory,
		requests:  requests,
		billing:   billing,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *inventoryService) Consume(ctx context.Context, requestID, itemID uuid.UUID, quantity decimal.Decimal) (*domain.Bill, error) {
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Dispatched {
		return nil, ErrRequestDispatched
	}

	usage, err := s.inventory.ConsumeStock(ctx, itemID, requestID, quantity)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StockConsumed.Inc()
	}
	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("item_id", itemID.String()).
		Str("quantity", quantity.String()).
		Str("usage_id", usage.ID.String()).
		Msg("material consumed")

	return s.billing.CurrentBill(ctx, requestID)
}

func (s *inventoryService) Reverse(ctx context.Context, usageID uuid.UUID) (*domain.MaterialUsage, error) {
	usage, err := s.inventory.ReverseUsage(ctx, usageID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StockReversals.Inc()
	}
	s.logger.Info().
		Str("usage_id", usageID.String()).
		Str("request_id", usage.RequestID.String()).
		Msg("material usage reversed")

	return usage, nil
}

func (s *inventoryService) Restock(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) (*domain.InventoryItem, error) {
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	return s.inventory.AddStock(ctx, itemID, quantity)
}

func (s *inventoryService) LowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	return s.inventory.ListLowStock(ctx)
}
