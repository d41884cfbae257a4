package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
)

// CreateCustomerParams are the inputs for registering a customer.
type CreateCustomerParams struct {
	Name           string
	Email          string
	Phone          string
	MembershipTier string
}

// CreateVehicleParams are the inputs for registering a vehicle.
type CreateVehicleParams struct {
	CustomerID   uuid.UUID
	Registration string
	Make         string
	Model        string
	Year         int32
}

// CreateItemParams are the inputs for adding an inventory item.
type CreateItemParams struct {
	Name         string
	Category     string
	CurrentStock decimal.Decimal
	UnitPrice    decimal.Decimal
	ReorderLevel decimal.Decimal
}

// RegistryService manages the master data the lifecycle operates on:
// customers, vehicles, advisors and inventory items.
type RegistryService interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.Customer, error)
	CreateVehicle(ctx context.Context, params CreateVehicleParams) (*domain.Vehicle, error)
	CreateAdvisor(ctx context.Context, name, email string) (*domain.ServiceAdvisor, error)
	CreateItem(ctx context.Context, params CreateItemParams) (*domain.InventoryItem, error)
}

type registryService struct {
	requests  domain.RequestStore
	inventory domain.InventoryStore
	logger    zerolog.Logger
}

func NewRegistryService(requests domain.RequestStore, inventory domain.InventoryStore, logger zerolog.Logger) RegistryService {
	return &registryService{
		requests:  requests,
		inventory: inventory,
		logger:    logger,
	}
}

func (s *registryService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*domain.Customer, error) {
	if params.Name == "" {
		return nil, domain.Invalid("registry.customer", "customer name is required")
	}
	tier := params.MembershipTier
	if tier == "" {
		tier = domain.TierStandard
	}

	c := &domain.Customer{
		ID:             uuid.New(),
		Name:           params.Name,
		Email:          params.Email,
		Phone:          params.Phone,
		MembershipTier: tier,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.requests.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *registryService) CreateVehicle(ctx context.Context, params CreateVehicleParams) (*domain.Vehicle, error) {
	if params.Registration == "" {
		return nil, domain.Invalid("registry.vehicle", "vehicle registration is required")
	}

	customer, err := s.requests.GetCustomer(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	v := &domain.Vehicle{
		ID:           uuid.New(),
		CustomerID:   params.CustomerID,
		Registration: params.Registration,
		Make:         params.Make,
		Model:        params.Model,
		Year:         params.Year,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.requests.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *registryService) CreateAdvisor(ctx context.Context, name, email string) (*domain.ServiceAdvisor, error) {
	if name == "" {
		return nil, domain.Invalid("registry.advisor", "advisor name is required")
	}

	a := &domain.ServiceAdvisor{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.requests.CreateAdvisor(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *registryService) CreateItem(ctx context.Context, params CreateItemParams) (*domain.InventoryItem, error) {
	if params.Name == "" {
		return nil, domain.Invalid("registry.item", "item name is required")
	}
	if params.CurrentStock.IsNegative() || params.ReorderLevel.IsNegative() {
		return nil, ErrInvalidQuantity
	}
	if !params.UnitPrice.IsPositive() {
		return nil, domain.Invalid("registry.item", "unit price must be greater than 0")
	}

	now := time.Now().UTC()
	item := &domain.InventoryItem{
		ID:           uuid.New(),
		Name:         params.Name,
		Category:     params.Category,
		CurrentStock: params.CurrentStock,
		UnitPrice:    params.UnitPrice,
		ReorderLevel: params.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.inventory.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("item_id", item.ID.String()).
		Str("name", item.Name).
		Msg("inventory item created")

	return item, nil
}
