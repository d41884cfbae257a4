package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
)

// memStore is an in-memory implementation of every store interface, guarded by
// a single mutex so the atomicity guarantees of the real store hold under
// concurrent test access.
type memStore struct {
	mu sync.Mutex

	customers map[uuid.UUID]domain.Customer
	vehicles  map[uuid.UUID]domain.Vehicle
	advisors  map[uuid.UUID]domain.ServiceAdvisor
	requests  map[uuid.UUID]domain.ServiceRequest
	items     map[uuid.UUID]domain.InventoryItem
	usages    map[uuid.UUID]domain.MaterialUsage
	entries   []domain.LaborEntry
	payments  map[uuid.UUID]domain.Payment // keyed by request id
	invoices  map[uuid.UUID]domain.Invoice // keyed by request id
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[uuid.UUID]domain.Customer),
		vehicles:  make(map[uuid.UUID]domain.Vehicle),
		advisors:  make(map[uuid.UUID]domain.ServiceAdvisor),
		requests:  make(map[uuid.UUID]domain.ServiceRequest),
		items:     make(map[uuid.UUID]domain.InventoryItem),
		usages:    make(map[uuid.UUID]domain.MaterialUsage),
		payments:  make(map[uuid.UUID]domain.Payment),
		invoices:  make(map[uuid.UUID]domain.Invoice),
	}
}

// --- RequestStore ---

func (m *memStore) CreateCustomer(_ context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = *c
	return nil
}

func (m *memStore) GetCustomer(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) CreateVehicle(_ context.Context, v *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = *v
	return nil
}

func (m *memStore) GetVehicle(_ context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.vehicles[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *memStore) CreateAdvisor(_ context.Context, a *domain.ServiceAdvisor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advisors[a.ID] = *a
	return nil
}

func (m *memStore) GetAdvisor(_ context.Context, id uuid.UUID) (*domain.ServiceAdvisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.advisors[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *memStore) CreateRequest(_ context.Context, r *domain.ServiceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = *r
	return nil
}

func (m *memStore) GetRequest(_ context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *memStore) GetRequestSummary(_ context.Context, id uuid.UUID) (*domain.RequestSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	summary := domain.RequestSummary{
		Request:  r,
		Vehicle:  m.vehicles[r.VehicleID],
		Customer: m.customers[m.vehicles[r.VehicleID].CustomerID],
	}
	if r.AdvisorID != nil {
		if a, ok := m.advisors[*r.AdvisorID]; ok {
			summary.Advisor = &a
		}
	}
	return &summary, nil
}

func (m *memStore) AssignAdvisor(_ context.Context, requestID, advisorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok || r.Status != domain.StatusReceived || r.AdvisorID != nil || r.Dispatched {
		return false, nil
	}
	r.AdvisorID = &advisorID
	r.Status = domain.StatusDiagnosis
	r.UpdatedAt = time.Now().UTC()
	m.requests[requestID] = r
	return true, nil
}

func (m *memStore) ReplaceAdvisor(_ context.Context, requestID, advisorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok || r.AdvisorID == nil || r.Dispatched {
		return false, nil
	}
	r.AdvisorID = &advisorID
	r.UpdatedAt = time.Now().UTC()
	m.requests[requestID] = r
	return true, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != from || r.Dispatched {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = time.Now().UTC()
	m.requests[id] = r
	return true, nil
}

func (m *memStore) MarkDispatched(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != domain.StatusCompleted || r.Dispatched {
		return false, nil
	}
	now := time.Now().UTC()
	r.Dispatched = true
	r.DispatchedAt = &now
	r.UpdatedAt = now
	m.requests[id] = r
	return true, nil
}

// --- InventoryStore ---

func (m *memStore) CreateItem(_ context.Context, item *domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) GetItem(_ context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (m *memStore) ConsumeStock(_ context.Context, itemID, requestID uuid.UUID, quantity decimal.Decimal) (*domain.MaterialUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.NotFound("inventory.consume", "inventory item", itemID.String())
	}
	if item.CurrentStock.LessThan(quantity) {
		return nil, domain.ErrInsufficientStock
	}
	item.CurrentStock = item.CurrentStock.Sub(quantity)
	item.UpdatedAt = time.Now().UTC()
	m.items[itemID] = item

	usage := domain.MaterialUsage{
		ID:        uuid.New(),
		RequestID: requestID,
		ItemID:    itemID,
		Quantity:  quantity,
		UsedAt:    time.Now().UTC(),
	}
	m.usages[usage.ID] = usage
	return &usage, nil
}

func (m *memStore) ReverseUsage(_ context.Context, usageID uuid.UUID) (*domain.MaterialUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	usage, ok := m.usages[usageID]
	if !ok {
		return nil, domain.NotFound("inventory.reverse", "material usage", usageID.String())
	}
	if usage.Reversed {
		return nil, domain.ErrUsageReversed
	}
	usage.Reversed = true
	m.usages[usageID] = usage

	item := m.items[usage.ItemID]
	item.CurrentStock = item.CurrentStock.Add(usage.Quantity)
	m.items[usage.ItemID] = item
	return &usage, nil
}

func (m *memStore) AddStock(_ context.Context, itemID uuid.UUID, quantity decimal.Decimal) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.NotFound("inventory.restock", "inventory item", itemID.String())
	}
	item.CurrentStock = item.CurrentStock.Add(quantity)
	item.UpdatedAt = time.Now().UTC()
	m.items[itemID] = item
	return &item, nil
}

func (m *memStore) ListUsages(_ context.Context, requestID uuid.UUID) ([]domain.MaterialUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MaterialUsage
	for _, u := range m.usages {
		if u.RequestID == requestID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UsedAt.Before(out[j].UsedAt) })
	return out, nil
}

func (m *memStore) ListLowStock(_ context.Context) ([]domain.LowStockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	two := decimal.NewFromInt(2)
	var out []domain.LowStockItem
	for _, item := range m.items {
		if item.CurrentStock.GreaterThan(item.ReorderLevel) {
			continue
		}
		severity := domain.StockSeverityLow
		if item.CurrentStock.LessThanOrEqual(item.ReorderLevel.Div(two)) {
			severity = domain.StockSeverityCritical
		}
		out = append(out, domain.LowStockItem{Item: item, Severity: severity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Name < out[j].Item.Name })
	return out, nil
}

// --- LaborStore ---

func (m *memStore) AppendEntry(_ context.Context, e *domain.LaborEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memStore) AppendEntries(_ context.Context, entries []*domain.LaborEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries = append(m.entries, *e)
	}
	return nil
}

func (m *memStore) ReplaceLaborCharges(_ context.Context, requestID uuid.UUID, entries []*domain.LaborEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.RequestID == requestID && e.Kind == domain.EntryLaborCharge && !e.Superseded {
			m.entries[i].Superseded = true
		}
	}
	for _, e := range entries {
		m.entries = append(m.entries, *e)
	}
	return nil
}

func (m *memStore) ListEntries(_ context.Context, requestID uuid.UUID) ([]domain.LaborEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LaborEntry
	for _, e := range m.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- PaymentStore ---

func (m *memStore) CreatePayment(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.RequestID]; ok {
		return domain.ErrPaymentExists
	}
	m.payments[p.RequestID] = *p
	return nil
}

func (m *memStore) GetPaymentByRequest(_ context.Context, requestID uuid.UUID) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[requestID]; ok {
		return &p, nil
	}
	return nil, nil
}

// --- InvoiceStore ---

func (m *memStore) UpsertInvoice(_ context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// The conflict branch keeps the original id, invoice number and payment
	// link, matching the postgres upsert.
	stored := *inv
	if prev, ok := m.invoices[inv.RequestID]; ok {
		stored.ID = prev.ID
		stored.InvoiceNumber = prev.InvoiceNumber
		stored.PaymentID = prev.PaymentID
	}
	m.invoices[stored.RequestID] = stored
	return &stored, nil
}

func (m *memStore) GetInvoiceByRequest(_ context.Context, requestID uuid.UUID) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invoices[requestID]; ok {
		return &inv, nil
	}
	return nil, nil
}

// --- BillingStore ---

func (m *memStore) GetBillingSnapshot(_ context.Context, requestID uuid.UUID) (*domain.BillingSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := domain.BillingSnapshot{RequestID: requestID}

	var usages []domain.MaterialUsage
	for _, u := range m.usages {
		if u.RequestID == requestID && !u.Reversed {
			usages = append(usages, u)
		}
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].UsedAt.Before(usages[j].UsedAt) })
	for _, u := range usages {
		item := m.items[u.ItemID]
		snap.Materials = append(snap.Materials, domain.MaterialLine{
			ItemID:    u.ItemID,
			ItemName:  item.Name,
			Quantity:  u.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	for _, e := range m.entries {
		if e.RequestID == requestID && e.Kind == domain.EntryLaborCharge && !e.Superseded {
			snap.Labor = append(snap.Labor, domain.LaborLine{
				Description: e.Description,
				Minutes:     e.LaborMinutes,
				Cost:        e.LaborCost,
			})
		}
	}

	if r, ok := m.requests[requestID]; ok {
		if v, ok := m.vehicles[r.VehicleID]; ok {
			snap.PremiumMember = m.customers[v.CustomerID].IsPremium()
		}
	}
	return &snap, nil
}
