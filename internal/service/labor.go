package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/telemetry"
)

var sixty = decimal.NewFromInt(60)

// maxChargeHours bounds a single labor charge. Anything above this is a data
// entry mistake, and keeps hours × 60 far inside the minutes column's range.
var maxChargeHours = decimal.NewFromInt(1000)

// LaborService owns the append-only per-request labor ledger: billable
// charges, free-form work notes and status-change audit rows.
type LaborService interface {
	// AddLaborCharges appends one or more labor charges and returns the
	// updated bill snapshot. Each charge stores total = hours × rate and
	// minutes = round(hours × 60). There is no single "the" labor row; the
	// labor total is always a sum over live charges.
	AddLaborCharges(ctx context.Context, requestID uuid.UUID, charges []domain.LaborCharge, advisor string) (*domain.Bill, error)

	// AddNote appends a work note with no financial effect.
	AddNote(ctx context.Context, requestID uuid.UUID, text, advisor string) (*domain.LaborEntry, error)

	// ReplaceLaborCharges supersedes all live labor charges for the request
	// and appends the new breakdown as one atomic batch. History is
	// preserved, not destroyed.
	ReplaceLaborCharges(ctx context.Context, requestID uuid.UUID, charges []domain.LaborCharge, advisor string) (*domain.Bill, error)

	// TotalLaborCost sums the totals of non-superseded labor charges.
	TotalLaborCost(ctx context.Context, requestID uuid.UUID) (decimal.Decimal, error)

	// Entries returns the full audit trail ordered by commit time.
	Entries(ctx context.Context, requestID uuid.UUID) ([]domain.LaborEntry, error)
}

type laborService struct {
	labor    domain.LaborStore
	requests domain.RequestStore
	billing  BillingService
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

// NewLaborService creates a LaborService. metrics may be nil.
func NewLaborService(
	labor domain.LaborStore,
	requests domain.RequestStore,
	billing BillingService,
	metrics *telemetry.BusinessMetrics,
	logger zerolog.Logger,
) LaborService {
	return &laborService{
		labor:    labor,
		requests: requests,
		billing:  billing,
		metrics:  metrics,
		logger:   logger,
	}
}

// chargeToEntry builds the ledger row for one labor charge. The cost keeps
// full precision; only the minutes figure is rounded.
func chargeToEntry(requestID uuid.UUID, c domain.LaborCharge, advisor string, now time.Time) *domain.LaborEntry {
	return &domain.LaborEntry{
		ID:           uuid.New(),
		RequestID:    requestID,
		Kind:         domain.EntryLaborCharge,
		Description:  c.Description,
		LaborMinutes: int32(c.Hours.Mul(sixty).Round(0).IntPart()),
		LaborCost:    c.Hours.Mul(c.RatePerHour),
		Advisor:      advisor,
		CreatedAt:    now,
	}
}

func validateCharges(charges []domain.LaborCharge) error {
	if len(charges) == 0 {
		return domain.Invalid("labor.add", "at least one labor charge is required")
	}
	for _, c := range charges {
		if !c.Hours.IsPositive() || c.Hours.GreaterThan(maxChargeHours) {
			return ErrInvalidHours
		}
		if !c.RatePerHour.IsPositive() {
			return ErrInvalidRate
		}
	}
	return nil
}

func (s *laborService) guardRequest(ctx context.Context, requestID uuid.UUID) error {
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Dispatched {
		return ErrRequestDispatched
	}
	return nil
}

func (s *laborService) AddLaborCharges(ctx context.Context, requestID uuid.UUID, charges []domain.LaborCharge, advisor string) (*domain.Bill, error) {
	if err := validateCharges(charges); err != nil {
		return nil, err
	}
	if err := s.guardRequest(ctx, requestID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]*domain.LaborEntry, len(charges))
	for i, c := range charges {
		entries[i] = chargeToEntry(requestID, c, advisor, now)
	}

	// One atomic batch: a failure writes none of the charges.
	if err := s.labor.AppendEntries(ctx, entries); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.LaborCharges.Add(float64(len(charges)))
	}

	s.logger.Info().
		Str("request_id", requestID.String()).
		Int("charges", len(charges)).
		Msg("labor charges recorded")

	return s.billing.CurrentBill(ctx, requestID)
}

func (s *laborService) AddNote(ctx context.Context, requestID uuid.UUID, text, advisor string) (*domain.LaborEntry, error) {
	if text == "" {
		return nil, domain.Invalid("labor.note", "note text is required")
	}
	if err := s.guardRequest(ctx, requestID); err != nil {
		return nil, err
	}

	entry := &domain.LaborEntry{
		ID:          uuid.New(),
		RequestID:   requestID,
		Kind:        domain.EntryWorkNote,
		Description: text,
		LaborCost:   decimal.Zero,
		Advisor:     advisor,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.labor.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *laborService) ReplaceLaborCharges(ctx context.Context, requestID uuid.UUID, charges []domain.LaborCharge, advisor string) (*domain.Bill, error) {
	if err := validateCharges(charges); err != nil {
		return nil, err
	}
	if err := s.guardRequest(ctx, requestID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]*domain.LaborEntry, len(charges))
	for i, c := range charges {
		entries[i] = chargeToEntry(requestID, c, advisor, now)
	}

	if err := s.labor.ReplaceLaborCharges(ctx, requestID, entries); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("advisor", advisor).
		Int("charges", len(charges)).
		Msg("labor breakdown replaced")

	return s.billing.CurrentBill(ctx, requestID)
}

func (s *laborService) TotalLaborCost(ctx context.Context, requestID uuid.UUID) (decimal.Decimal, error) {
	entries, err := s.labor.ListEntries(ctx, requestID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		if e.Kind == domain.EntryLaborCharge && !e.Superseded {
			total = total.Add(e.LaborCost)
		}
	}
	return total, nil
}

func (s *laborService) Entries(ctx context.Context, requestID uuid.UUID) ([]domain.LaborEntry, error) {
	return s.labor.ListEntries(ctx, requestID)
}
