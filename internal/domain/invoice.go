package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the persisted point-in-time financial document. It may only
// exist once a Payment exists for the same request; regeneration replaces the
// prior row for the request, it never creates a duplicate.
type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	RequestID     uuid.UUID       `json:"request_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"` // pre-tax subtotal
	Taxes         decimal.Decimal `json:"taxes"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// DocumentLine is one itemized row of the render-ready invoice document.
// Amounts are pre-formatted so the renderer does no arithmetic.
type DocumentLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity,omitempty"`
	UnitPrice   string `json:"unit_price,omitempty"`
	Amount      string `json:"amount"`
}

// InvoiceDocument is the flat model handed to the external renderer. It is
// complete: identity fields, itemized lines and computed totals, with the
// discount line present only when non-zero.
type InvoiceDocument struct {
	InvoiceNumber string    `json:"invoice_number"`
	GeneratedAt   time.Time `json:"generated_at"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone,omitempty"`

	VehicleRegistration string `json:"vehicle_registration"`
	VehicleMake         string `json:"vehicle_make"`
	VehicleModel        string `json:"vehicle_model"`
	ServiceType         string `json:"service_type"`

	Materials []DocumentLine `json:"materials"`
	Labor     []DocumentLine `json:"labor"`

	MaterialsTotal string        `json:"materials_total"`
	LaborTotal     string        `json:"labor_total"`
	Discount       *DocumentLine `json:"discount,omitempty"`
	Subtotal       string        `json:"subtotal"`
	Tax            DocumentLine  `json:"tax"`
	GrandTotal     string        `json:"grand_total"`

	PaymentMethod        string `json:"payment_method"`
	PaymentTransactionID string `json:"payment_transaction_id"`
	AmountPaid           string `json:"amount_paid"`
}
