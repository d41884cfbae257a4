// Package worker runs the background restock scanner. It periodically lists
// items at or below their reorder level and publishes a low-stock alert for
// each one, so the parts desk can reorder before a request stalls mid-repair.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/notify"
	"github.com/rfallows/camshaft/internal/service"
	"github.com/rfallows/camshaft/internal/telemetry"
)

// Config holds restock scanner configuration.
type Config struct {
	// ScanInterval is how often to run the low-stock scan.
	ScanInterval time.Duration

	// ScanTimeout bounds a single scan, including publishes.
	ScanTimeout time.Duration
}

// RestockScanner polls inventory for low-stock items and publishes alerts.
// An item alerts once when it crosses its reorder level and again if its
// severity escalates; restocking above the level arms it for the next dip.
type RestockScanner struct {
	config    Config
	inventory service.InventoryService
	publisher notify.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger

	alerted map[uuid.UUID]string
}

func NewRestockScanner(
	inventory service.InventoryService,
	publisher notify.Publisher,
	metrics *telemetry.BusinessMetrics,
	config Config,
	logger zerolog.Logger,
) *RestockScanner {
	if config.ScanInterval == 0 {
		config.ScanInterval = 10 * time.Minute
	}
	if config.ScanTimeout == 0 {
		config.ScanTimeout = 30 * time.Second
	}

	return &RestockScanner{
		config:    config,
		inventory: inventory,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "restock_scanner").Logger(),
		alerted:   make(map[uuid.UUID]string),
	}
}

// Start runs the scan loop until the context is cancelled. The first scan
// happens immediately rather than one interval in.
func (s *RestockScanner) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("scan_interval", s.config.ScanInterval).
		Msg("restock scanner starting")

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	s.runScan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("restock scanner shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runScan(ctx)
		}
	}
}

func (s *RestockScanner) runScan(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	published, err := s.scan(scanCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("low-stock scan failed")
		return
	}
	if published > 0 {
		s.logger.Info().Int("alerts", published).Msg("low-stock scan completed")
	}
}

// scan performs one pass and returns how many alerts were published.
func (s *RestockScanner) scan(ctx context.Context) (int, error) {
	items, err := s.inventory.LowStock(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	published := 0
	for _, low := range items {
		seen[low.Item.ID] = struct{}{}

		prev, ok := s.alerted[low.Item.ID]
		if ok && !severityEscalated(prev, low.Severity) {
			continue
		}

		ev := notify.LowStockEvent{
			ItemID:       low.Item.ID,
			Name:         low.Item.Name,
			Category:     low.Item.Category,
			CurrentStock: low.Item.CurrentStock.String(),
			ReorderLevel: low.Item.ReorderLevel.String(),
			Severity:     low.Severity,
			OccurredAt:   time.Now().UTC(),
		}
		if err := s.publisher.PublishLowStock(ctx, ev); err != nil {
			s.logger.Warn().Err(err).
				Str("item_id", low.Item.ID.String()).
				Msg("failed to publish low-stock alert")
			continue
		}

		s.alerted[low.Item.ID] = low.Severity
		published++
		if s.metrics != nil {
			s.metrics.LowStockAlerts.WithLabelValues(low.Severity).Inc()
		}
		s.logger.Warn().
			Str("item", low.Item.Name).
			Str("severity", low.Severity).
			Str("current_stock", low.Item.CurrentStock.String()).
			Str("reorder_level", low.Item.ReorderLevel.String()).
			Msg("item needs restocking")
	}

	// Items back above their reorder level alert again next time they dip.
	for id := range s.alerted {
		if _, ok := seen[id]; !ok {
			delete(s.alerted, id)
		}
	}

	return published, nil
}

func severityEscalated(prev, next string) bool {
	return prev == domain.StockSeverityLow && next == domain.StockSeverityCritical
}
