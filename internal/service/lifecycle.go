package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/notify"
	"github.com/rfallows/camshaft/internal/telemetry"
)

// CreateRequestParams are the inputs for booking a vehicle in for service.
type CreateRequestParams struct {
	VehicleID    uuid.UUID
	ServiceType  string
	DeliveryDate time.Time
}

// TransitionParams are the inputs for a status transition. Note is an optional
// free-form remark recorded on the audit entry and passed to the customer
// notifier. NotifyCustomer opts in to the fire-and-forget notification.
type TransitionParams struct {
	RequestID      uuid.UUID
	To             domain.Status
	Note           string
	Advisor        string
	NotifyCustomer bool
}

// LifecycleService owns the service request state machine: booking, advisor
// assignment, forward-only status transitions and the terminal dispatch gate.
type LifecycleService interface {
	// CreateRequest books a vehicle in. The request starts in received with
	// no advisor.
	CreateRequest(ctx context.Context, params CreateRequestParams) (*domain.ServiceRequest, error)

	// AssignAdvisor assigns the advisor and moves the request to diagnosis.
	// Assigning the advisor already on the request is a no-op; assigning any
	// advisor outside received fails with ErrNotReceived.
	AssignAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (*domain.RequestSummary, error)

	// ReassignAdvisor swaps the assigned advisor without touching status.
	// Fails with ErrNoAdvisor when no advisor was assigned yet.
	ReassignAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (*domain.RequestSummary, error)

	// TransitionStatus moves the request strictly forward through
	// received -> diagnosis -> repair -> completed. Skipping forward is
	// allowed, moving backward or standing still is EINVALID. Every
	// transition leaves a status-change entry in the labor ledger.
	TransitionStatus(ctx context.Context, params TransitionParams) (*domain.RequestSummary, error)

	// Dispatch terminates a completed request. Requires a recorded payment
	// and an invoice; the invoice is generated on the spot when a payment
	// exists. After dispatch every mutation of the request is rejected.
	Dispatch(ctx context.Context, requestID uuid.UUID) (*domain.RequestSummary, error)

	// GetSummary resolves the request with its vehicle, customer and advisor.
	GetSummary(ctx context.Context, requestID uuid.UUID) (*domain.RequestSummary, error)
}

type lifecycleService struct {
	requests  domain.RequestStore
	labor     domain.LaborStore
	payments  domain.PaymentStore
	invoices  InvoiceService
	publisher notify.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger
}

// NewLifecycleService creates a LifecycleService. metrics may be nil; publisher
// must not be (use notify.NoopPublisher when no broker is configured).
func NewLifecycleService(
	requests domain.RequestStore,
	labor domain.LaborStore,
	payments domain.PaymentStore,
	invoices InvoiceService,
	publisher notify.Publisher,
	metrics *telemetry.BusinessMetrics,
	logger zerolog.Logger,
) LifecycleService {
	return &lifecycleService{
		requests:  requests,
		labor:     labor,
		payments:  payments,
		invoices:  invoices,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *lifecycleService) CreateRequest(ctx context.Context, params CreateRequestParams) (*domain.ServiceRequest, error) {
	if params.ServiceType == "" {
		return nil, domain.Invalid("lifecycle.create", "service type is required")
	}

	vehicle, err := s.requests.GetVehicle(ctx, params.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrVehicleNotFound
	}

	now := time.Now().UTC()
	req := &domain.ServiceRequest{
		ID:           uuid.New(),
		VehicleID:    params.VehicleID,
		Status:       domain.StatusReceived,
		ServiceType:  params.ServiceType,
		DeliveryDate: params.DeliveryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RequestsCreated.Inc()
	}
	s.logger.Info().
		Str("request_id", req.ID.String()).
		Str("vehicle_id", params.VehicleID.String()).
		Str("service_type", params.ServiceType).
		Msg("service request created")

	return req, nil
}

func (s *lifecycleService) AssignAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (*domain.RequestSummary, error) {
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

	// Re-assigning the same advisor is a no-op.
	if req.AdvisorID != nil && *req.AdvisorID == advisorID {
		return s.GetSummary(ctx, requestID)
	}
	if req.Status != domain.StatusReceived || req.AdvisorID != nil {
		return nil, ErrNotReceived
	}

	advisor, err := s.requests.GetAdvisor(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if advisor == nil {
		return nil, ErrAdvisorNotFound
	}

	ok, err := s.requests.AssignAdvisor(ctx, requestID, advisorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrencyConflict
	}

	if err := s.appendStatusEntry(ctx, requestID, advisor.Name,
		fmt.Sprintf("advisor %s assigned, status moved from %s to %s",
			advisor.Name, domain.StatusReceived, domain.StatusDiagnosis)); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(domain.StatusDiagnosis)).Inc()
	}
	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("advisor_id", advisorID.String()).
		Msg("advisor assigned")

	return s.GetSummary(ctx, requestID)
}

func (s *lifecycleService) ReassignAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (*domain.RequestSummary, error) {
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
	if req.AdvisorID == nil {
		return nil, ErrNoAdvisor
	}
	if *req.AdvisorID == advisorID {
		return s.GetSummary(ctx, requestID)
	}

	advisor, err := s.requests.GetAdvisor(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if advisor == nil {
		return nil, ErrAdvisorNotFound
	}

	ok, err := s.requests.ReplaceAdvisor(ctx, requestID, advisorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrencyConflict
	}

	entry := &domain.LaborEntry{
		ID:          uuid.New(),
		RequestID:   requestID,
		Kind:        domain.EntryWorkNote,
		Description: fmt.Sprintf("request reassigned to advisor %s", advisor.Name),
		LaborCost:   decimal.Zero,
		Advisor:     advisor.Name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.labor.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("advisor_id", advisorID.String()).
		Msg("advisor reassigned")

	return s.GetSummary(ctx, requestID)
}

func (s *lifecycleService) TransitionStatus(ctx context.Context, params TransitionParams) (*domain.RequestSummary, error) {
	req, err := s.requests.GetRequest(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Dispatched {
		return nil, ErrRequestDispatched
	}

	if err := domain.ValidateTransition(req.Status, params.To); err != nil {
		return nil, err
	}

	ok, err := s.requests.UpdateStatus(ctx, params.RequestID, req.Status, params.To)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrencyConflict
	}

	description := fmt.Sprintf("status moved from %s to %s", req.Status, params.To)
	if params.Note != "" {
		description += ": " + params.Note
	}
	if err := s.appendStatusEntry(ctx, params.RequestID, params.Advisor, description); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(params.To)).Inc()
	}
	s.logger.Info().
		Str("request_id", params.RequestID.String()).
		Str("from", string(req.Status)).
		Str("to", string(params.To)).
		Msg("status transitioned")

	summary, err := s.GetSummary(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}

	if params.NotifyCustomer {
		s.publishStatusChanged(ctx, summary, string(req.Status), string(params.To), params.Note)
	}
	return summary, nil
}

func (s *lifecycleService) Dispatch(ctx context.Context, requestID uuid.UUID) (*domain.RequestSummary, error) {
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
	if req.Status != domain.StatusCompleted {
		return nil, ErrNotCompleted
	}

	pay, err := s.payments.GetPaymentByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentRequired
	}

	// The invoice is part of the gate: generate it now if it does not exist.
	inv, err := s.invoices.Ensure(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.MarkDispatched(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrencyConflict
	}

	if err := s.appendStatusEntry(ctx, requestID, "",
		fmt.Sprintf("vehicle dispatched, invoice %s", inv.InvoiceNumber)); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Dispatches.Inc()
	}
	s.logger.Info().
		Str("request_id", requestID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("vehicle dispatched")

	summary, err := s.GetSummary(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, summary, string(domain.StatusCompleted), "dispatched", "")
	return summary, nil
}

func (s *lifecycleService) GetSummary(ctx context.Context, requestID uuid.UUID) (*domain.RequestSummary, error) {
	summary, err := s.requests.GetRequestSummary(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrRequestNotFound
	}
	return summary, nil
}

// appendStatusEntry records a lifecycle event in the labor ledger audit trail.
func (s *lifecycleService) appendStatusEntry(ctx context.Context, requestID uuid.UUID, advisor, description string) error {
	return s.labor.AppendEntry(ctx, &domain.LaborEntry{
		ID:          uuid.New(),
		RequestID:   requestID,
		Kind:        domain.EntryStatusChange,
		Description: description,
		LaborCost:   decimal.Zero,
		Advisor:     advisor,
		CreatedAt:   time.Now().UTC(),
	})
}

// publishStatusChanged notifies the customer of a transition. Delivery is
// fire-and-forget: a failed publish is logged and swallowed.
func (s *lifecycleService) publishStatusChanged(ctx context.Context, summary *domain.RequestSummary, from, to, note string) {
	ev := notify.StatusChangedEvent{
		RequestID:     summary.Request.ID,
		OldStatus:     from,
		NewStatus:     to,
		Note:          note,
		CustomerName:  summary.Customer.Name,
		CustomerEmail: summary.Customer.Email,
		CustomerPhone: summary.Customer.Phone,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishStatusChanged(ctx, ev); err != nil {
		s.logger.Warn().
			Err(err).
			Str("request_id", summary.Request.ID.String()).
			Msg("failed to publish status change notification")
	}
}
