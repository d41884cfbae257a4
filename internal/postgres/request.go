package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rfallows/camshaft/internal/domain"
)

// Compile-time check that Store implements domain.RequestStore.
var _ domain.RequestStore = (*Store)(nil)

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, membership_tier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Email, c.Phone, c.MembershipTier, c.CreatedAt)
	if err != nil {
		return domain.Internal(err, "store.customer.create", "failed to create customer")
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, membership_tier, created_at
		FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.MembershipTier, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.customer.get", "failed to get customer")
	}
	return &c, nil
}

func (s *Store) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vehicles (id, customer_id, registration, make, model, year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.CustomerID, v.Registration, v.Make, v.Model, v.Year, v.CreatedAt)
	if err != nil {
		return domain.Internal(err, "store.vehicle.create", "failed to create vehicle")
	}
	return nil
}

func (s *Store) GetVehicle(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := s.pool.QueryRow(ctx, `
		SELECT id, customer_id, registration, make, model, year, created_at
		FROM vehicles WHERE id = $1`, id).
		Scan(&v.ID, &v.CustomerID, &v.Registration, &v.Make, &v.Model, &v.Year, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.vehicle.get", "failed to get vehicle")
	}
	return &v, nil
}

func (s *Store) CreateAdvisor(ctx context.Context, a *domain.ServiceAdvisor) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO advisors (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)`,
		a.ID, a.Name, a.Email, a.CreatedAt)
	if err != nil {
		return domain.Internal(err, "store.advisor.create", "failed to create advisor")
	}
	return nil
}

func (s *Store) GetAdvisor(ctx context.Context, id uuid.UUID) (*domain.ServiceAdvisor, error) {
	var a domain.ServiceAdvisor
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at
		FROM advisors WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Email, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.advisor.get", "failed to get advisor")
	}
	return &a, nil
}

func (s *Store) CreateRequest(ctx context.Context, r *domain.ServiceRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO service_requests
			(id, vehicle_id, advisor_id, status, service_type, delivery_date,
			 dispatched, dispatched_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.VehicleID, r.AdvisorID, r.Status, r.ServiceType, r.DeliveryDate,
		r.Dispatched, r.DispatchedAt, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return domain.Internal(err, "store.request.create", "failed to create service request")
	}
	return nil
}

func scanRequest(row pgx.Row, r *domain.ServiceRequest) error {
	return row.Scan(&r.ID, &r.VehicleID, &r.AdvisorID, &r.Status, &r.ServiceType,
		&r.DeliveryDate, &r.Dispatched, &r.DispatchedAt, &r.CreatedAt, &r.UpdatedAt)
}

const requestColumns = `id, vehicle_id, advisor_id, status, service_type,
	delivery_date, dispatched, dispatched_at, created_at, updated_at`

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	var r domain.ServiceRequest
	err := scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id), &r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.request.get", "failed to get service request")
	}
	return &r, nil
}

func (s *Store) GetRequestSummary(ctx context.Context, id uuid.UUID) (*domain.RequestSummary, error) {
	var (
		sum         domain.RequestSummary
		advisorID   *uuid.UUID
		advisorName *string
		advisorMail *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT r.id, r.vehicle_id, r.advisor_id, r.status, r.service_type,
		       r.delivery_date, r.dispatched, r.dispatched_at, r.created_at, r.updated_at,
		       v.id, v.customer_id, v.registration, v.make, v.model, v.year, v.created_at,
		       c.id, c.name, c.email, c.phone, c.membership_tier, c.created_at,
		       a.id, a.name, a.email
		FROM service_requests r
		JOIN vehicles v ON v.id = r.vehicle_id
		JOIN customers c ON c.id = v.customer_id
		LEFT JOIN advisors a ON a.id = r.advisor_id
		WHERE r.id = $1`, id).
		Scan(&sum.Request.ID, &sum.Request.VehicleID, &sum.Request.AdvisorID,
			&sum.Request.Status, &sum.Request.ServiceType, &sum.Request.DeliveryDate,
			&sum.Request.Dispatched, &sum.Request.DispatchedAt,
			&sum.Request.CreatedAt, &sum.Request.UpdatedAt,
			&sum.Vehicle.ID, &sum.Vehicle.CustomerID, &sum.Vehicle.Registration,
			&sum.Vehicle.Make, &sum.Vehicle.Model, &sum.Vehicle.Year, &sum.Vehicle.CreatedAt,
			&sum.Customer.ID, &sum.Customer.Name, &sum.Customer.Email,
			&sum.Customer.Phone, &sum.Customer.MembershipTier, &sum.Customer.CreatedAt,
			&advisorID, &advisorName, &advisorMail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "store.request.summary", "failed to get request summary")
	}

	if advisorID != nil {
		sum.Advisor = &domain.ServiceAdvisor{ID: *advisorID, Name: *advisorName, Email: *advisorMail}
	}
	return &sum, nil
}

func (s *Store) AssignAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE service_requests
		SET advisor_id = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4 AND advisor_id IS NULL AND NOT dispatched`,
		requestID, advisorID, domain.StatusDiagnosis, domain.StatusReceived)
	if err != nil {
		return false, domain.Internal(err, "store.request.assign", "failed to assign advisor")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ReplaceAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE service_requests
		SET advisor_id = $2, updated_at = now()
		WHERE id = $1 AND advisor_id IS NOT NULL AND NOT dispatched`,
		requestID, advisorID)
	if err != nil {
		return false, domain.Internal(err, "store.request.reassign", "failed to replace advisor")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE service_requests
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2 AND NOT dispatched`,
		id, from, to)
	if err != nil {
		return false, domain.Internal(err, "store.request.status", "failed to update status")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE service_requests
		SET dispatched = true, dispatched_at = now(), updated_at = now()
		WHERE id = $1 AND status = $2 AND NOT dispatched`,
		id, domain.StatusCompleted)
	if err != nil {
		return false, domain.Internal(err, "store.request.dispatch", "failed to mark dispatched")
	}
	return tag.RowsAffected() == 1, nil
}
