package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/notify"
)

type stubInventory struct {
	low []domain.LowStockItem
	err error
}

func (s *stubInventory) Consume(_ context.Context, _, _ uuid.UUID, _ decimal.Decimal) (*domain.Bill, error) {
	panic("not used")
}

func (s *stubInventory) Reverse(_ context.Context, _ uuid.UUID) (*domain.MaterialUsage, error) {
	panic("not used")
}

func (s *stubInventory) Restock(_ context.Context, _ uuid.UUID, _ decimal.Decimal) (*domain.InventoryItem, error) {
	panic("not used")
}

func (s *stubInventory) LowStock(_ context.Context) ([]domain.LowStockItem, error) {
	return s.low, s.err
}

type capturingPublisher struct {
	events []notify.LowStockEvent
}

func (p *capturingPublisher) PublishStatusChanged(_ context.Context, _ notify.StatusChangedEvent) error {
	return nil
}

func (p *capturingPublisher) PublishLowStock(_ context.Context, ev notify.LowStockEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func lowItem(name, stock, reorder, severity string) domain.LowStockItem {
	return domain.LowStockItem{
		Item: domain.InventoryItem{
			ID:           uuid.New(),
			Name:         name,
			Category:     "fluids",
			CurrentStock: decimal.RequireFromString(stock),
			ReorderLevel: decimal.RequireFromString(reorder),
		},
		Severity: severity,
	}
}

func newTestScanner(inv *stubInventory, pub *capturingPublisher) *RestockScanner {
	return NewRestockScanner(inv, pub, nil, Config{}, zerolog.Nop())
}

func TestScanPublishesAlertPerLowItem(t *testing.T) {
	inv := &stubInventory{low: []domain.LowStockItem{
		lowItem("engine oil 5W30", "4", "10", domain.StockSeverityCritical),
		lowItem("brake fluid", "8", "10", domain.StockSeverityLow),
	}}
	pub := &capturingPublisher{}
	s := newTestScanner(inv, pub)

	published, err := s.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	require.Len(t, pub.events, 2)

	ev := pub.events[0]
	assert.Equal(t, "engine oil 5W30", ev.Name)
	assert.Equal(t, "fluids", ev.Category)
	assert.Equal(t, "4", ev.CurrentStock)
	assert.Equal(t, "10", ev.ReorderLevel)
	assert.Equal(t, domain.StockSeverityCritical, ev.Severity)
	assert.WithinDuration(t, time.Now().UTC(), ev.OccurredAt, time.Minute)
}

func TestScanDoesNotRepeatAlerts(t *testing.T) {
	inv := &stubInventory{low: []domain.LowStockItem{
		lowItem("coolant", "9", "10", domain.StockSeverityLow),
	}}
	pub := &capturingPublisher{}
	s := newTestScanner(inv, pub)

	published, err := s.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, published)

	published, err = s.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, published)
	assert.Len(t, pub.events, 1)
}

func TestScanAlertsAgainOnEscalation(t *testing.T) {
	item := lowItem("coolant", "9", "10", domain.StockSeverityLow)
	inv := &stubInventory{low: []domain.LowStockItem{item}}
	pub := &capturingPublisher{}
	s := newTestScanner(inv, pub)

	_, err := s.scan(context.Background())
	require.NoError(t, err)

	item.Item.CurrentStock = decimal.RequireFromString("3")
	item.Severity = domain.StockSeverityCritical
	inv.low = []domain.LowStockItem{item}

	published, err := s.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.StockSeverityCritical, pub.events[1].Severity)
}

func TestScanRearmsAfterRestock(t *testing.T) {
	item := lowItem("coolant", "9", "10", domain.StockSeverityLow)
	inv := &stubInventory{low: []domain.LowStockItem{item}}
	pub := &capturingPublisher{}
	s := newTestScanner(inv, pub)

	_, err := s.scan(context.Background())
	require.NoError(t, err)

	// Restocked above the reorder level: the scan no longer reports it.
	inv.low = nil
	_, err = s.scan(context.Background())
	require.NoError(t, err)

	// Dips again: alert fires again.
	inv.low = []domain.LowStockItem{item}
	published, err := s.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	assert.Len(t, pub.events, 2)
}
