package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/notify"
	"github.com/rfallows/camshaft/internal/payment"
)

// fixture wires every service over one shared in-memory store, the way
// cmd/server wires them over postgres.
type fixture struct {
	store     *memStore
	provider  *payment.MockProvider
	billing   BillingService
	inventory InventoryService
	labor     LaborService
	payments  PaymentService
	invoices  InvoiceService
	lifecycle LifecycleService
	registry  RegistryService
}

func newFixture() *fixture {
	store := newMemStore()
	logger := zerolog.Nop()
	rates := domain.DefaultRates()
	provider := payment.NewMockProvider()

	billing := NewBillingService(store, rates)
	invoices := NewInvoiceService(store, store, store, billing, rates, nil, logger)

	return &fixture{
		store:     store,
		provider:  provider,
		billing:   billing,
		inventory: NewInventoryService(store, store, billing, nil, logger),
		labor:     NewLaborService(store, store, billing, nil, logger),
		payments:  NewPaymentService(store, store, billing, provider, provider, domain.MethodCash, nil, logger),
		invoices:  invoices,
		lifecycle: NewLifecycleService(store, store, store, invoices, notify.NoopPublisher{}, nil, logger),
		registry:  NewRegistryService(store, store, logger),
	}
}

// seedRequest registers a customer, vehicle and open service request and
// returns the request id.
func (f *fixture) seedRequest(t *testing.T, tier string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	customer, err := f.registry.CreateCustomer(ctx, CreateCustomerParams{
		Name:           "Asha Nair",
		Email:          "asha@example.com",
		Phone:          "9876543210",
		MembershipTier: tier,
	})
	require.NoError(t, err)

	vehicle, err := f.registry.CreateVehicle(ctx, CreateVehicleParams{
		CustomerID:   customer.ID,
		Registration: "KA01AB1234",
		Make:         "Honda",
		Model:        "City",
		Year:         2021,
	})
	require.NoError(t, err)

	req, err := f.lifecycle.CreateRequest(ctx, CreateRequestParams{
		VehicleID:    vehicle.ID,
		ServiceType:  "full_service",
		DeliveryDate: time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return req.ID
}

// seedItem adds an inventory item with the given stock and unit price.
func (f *fixture) seedItem(t *testing.T, name string, stock, price, reorder decimal.Decimal) uuid.UUID {
	t.Helper()
	item, err := f.registry.CreateItem(context.Background(), CreateItemParams{
		Name:         name,
		Category:     "parts",
		CurrentStock: stock,
		UnitPrice:    price,
		ReorderLevel: reorder,
	})
	require.NoError(t, err)
	return item.ID
}

// seedAdvisor registers an advisor.
func (f *fixture) seedAdvisor(t *testing.T, name string) uuid.UUID {
	t.Helper()
	a, err := f.registry.CreateAdvisor(context.Background(), name, name+"@workshop.example")
	require.NoError(t, err)
	return a.ID
}

// completeRequest drives a request to completed: assign advisor and walk the
// status forward.
func (f *fixture) completeRequest(t *testing.T, requestID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	advisorID := f.seedAdvisor(t, "ravi")

	_, err := f.lifecycle.AssignAdvisor(ctx, requestID, advisorID)
	require.NoError(t, err)
	_, err = f.lifecycle.TransitionStatus(ctx, TransitionParams{RequestID: requestID, To: domain.StatusRepair})
	require.NoError(t, err)
	_, err = f.lifecycle.TransitionStatus(ctx, TransitionParams{RequestID: requestID, To: domain.StatusCompleted})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
