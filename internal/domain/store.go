package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store-level sentinel errors. Stores return these from atomic operations so
// services can propagate them without re-deriving the failure mode.
var (
	// ErrInsufficientStock is returned by ConsumeStock when the requested
	// quantity exceeds current stock. No state changes in that case.
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock for requested quantity"}

	// ErrUsageReversed is returned by ReverseUsage when the usage was
	// already reversed.
	ErrUsageReversed = &Error{Code: ECONFLICT, Message: "Material usage already reversed"}

	// ErrPaymentExists is returned by CreatePayment when the request
	// already has an active payment.
	ErrPaymentExists = &Error{Code: ECONFLICT, Message: "Payment already recorded for this request"}
)

// Store conventions: Get* lookups return (nil, nil) when the row does not
// exist; services translate absence into their own typed errors. Mutations on
// missing parents return a NotFound domain error directly.

// RequestStore persists customers, vehicles, advisors and service requests.
// Status and advisor mutations are compare-and-set: they report false instead
// of writing when the expected prior state no longer holds.
type RequestStore interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)

	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	CreateAdvisor(ctx context.Context, a *ServiceAdvisor) error
	GetAdvisor(ctx context.Context, id uuid.UUID) (*ServiceAdvisor, error)

	CreateRequest(ctx context.Context, r *ServiceRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)

	// GetRequestSummary resolves the request with its vehicle, customer and
	// assigned advisor in one consistent read.
	GetRequestSummary(ctx context.Context, id uuid.UUID) (*RequestSummary, error)

	// AssignAdvisor sets the advisor and moves status to diagnosis, provided
	// the request is still in received with no advisor. Returns false when
	// that precondition no longer holds.
	AssignAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (bool, error)

	// ReplaceAdvisor swaps the assigned advisor on a non-dispatched request.
	// Returns false when the request is dispatched or has no advisor yet.
	ReplaceAdvisor(ctx context.Context, requestID, advisorID uuid.UUID) (bool, error)

	// UpdateStatus moves status from -> to only if the row still holds from
	// and is not dispatched. Returns false on a lost race.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)

	// MarkDispatched terminates a completed request. Returns false when the
	// request is not completed or already dispatched.
	MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error)
}

// InventoryStore persists items and material usages. ConsumeStock and
// ReverseUsage are atomic: the stock mutation and the usage row commit
// together or not at all.
type InventoryStore interface {
	CreateItem(ctx context.Context, item *InventoryItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// ConsumeStock decrements stock and records the usage in one atomic
	// unit. Returns ErrInsufficientStock, leaving stock untouched, when
	// quantity exceeds current stock. Linearizable per item: of two
	// concurrent consumers contending for the last stock, exactly one wins.
	ConsumeStock(ctx context.Context, itemID, requestID uuid.UUID, quantity decimal.Decimal) (*MaterialUsage, error)

	// ReverseUsage restores the reversed quantity to stock and marks the
	// usage reversed. History is kept. Returns ErrUsageReversed if already
	// reversed.
	ReverseUsage(ctx context.Context, usageID uuid.UUID) (*MaterialUsage, error)

	// AddStock restocks an item and returns the updated row.
	AddStock(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) (*InventoryItem, error)

	ListUsages(ctx context.Context, requestID uuid.UUID) ([]MaterialUsage, error)

	// ListLowStock returns items at or below their reorder level from a
	// consistent snapshot, tagged low or critical.
	ListLowStock(ctx context.Context) ([]LowStockItem, error)
}

// LaborStore persists the append-only labor ledger.
type LaborStore interface {
	AppendEntry(ctx context.Context, e *LaborEntry) error

	// AppendEntries appends the batch atomically: all entries commit or
	// none do.
	AppendEntries(ctx context.Context, entries []*LaborEntry) error

	// ReplaceLaborCharges marks all live labor charges for the request as
	// superseded and appends the new batch atomically.
	ReplaceLaborCharges(ctx context.Context, requestID uuid.UUID, entries []*LaborEntry) error

	// ListEntries returns the full ledger for a request ordered by commit time.
	ListEntries(ctx context.Context, requestID uuid.UUID) ([]LaborEntry, error)
}

// PaymentStore persists payments. Lookups return (nil, nil) when no payment
// exists; absence is a normal state checked by the dispatch gate.
type PaymentStore interface {
	// CreatePayment inserts the payment; ErrPaymentExists when the request
	// already has one.
	CreatePayment(ctx context.Context, p *Payment) error

	GetPaymentByRequest(ctx context.Context, requestID uuid.UUID) (*Payment, error)
}

// InvoiceStore persists invoices, one per request.
type InvoiceStore interface {
	// UpsertInvoice inserts the invoice or, when one exists for the
	// request, replaces its financial fields while keeping the original id
	// and invoice number stable. Returns the persisted row.
	UpsertInvoice(ctx context.Context, inv *Invoice) (*Invoice, error)

	GetInvoiceByRequest(ctx context.Context, requestID uuid.UUID) (*Invoice, error)
}

// BillingStore supplies the consistent snapshot the calculator sums over.
type BillingStore interface {
	// GetBillingSnapshot reads non-reversed material usages joined with
	// item prices, non-superseded labor charges and the customer's
	// membership standing from a single snapshot.
	GetBillingSnapshot(ctx context.Context, requestID uuid.UUID) (*BillingSnapshot, error)
}
