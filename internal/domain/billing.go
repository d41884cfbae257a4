package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rates are the billing percentages. They appear exactly once, here, and are
// consumed uniformly by the calculator; call sites never carry literals.
type Rates struct {
	// LaborDiscount is the fraction of the labor total discounted for
	// premium members (0.20 = 20%).
	LaborDiscount decimal.Decimal

	// Tax is the flat GST fraction applied to the post-discount subtotal
	// (0.18 = 18%).
	Tax decimal.Decimal
}

// DefaultRates returns the standard 20% premium labor discount and 18% GST.
func DefaultRates() Rates {
	return Rates{
		LaborDiscount: decimal.NewFromFloat(0.20),
		Tax:           decimal.NewFromFloat(0.18),
	}
}

// MaterialLine is one itemized materials row of a bill: a non-reversed usage
// joined with the item's current unit price.
type MaterialLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// LaborLine is one itemized labor row: a non-superseded labor charge.
type LaborLine struct {
	Description string          `json:"description"`
	Minutes     int32           `json:"minutes"`
	Cost        decimal.Decimal `json:"cost"`
}

// BillingSnapshot is the consistent read the calculator sums over: material
// and labor lines for one request plus the customer's membership standing,
// all taken from a single store snapshot.
type BillingSnapshot struct {
	RequestID     uuid.UUID
	Materials     []MaterialLine
	Labor         []LaborLine
	PremiumMember bool
}

// Bill is the always-current computed snapshot of charges. Amounts keep full
// precision except Tax and GrandTotal, which carry the 2-decimal rounding of
// the tax step. Computing the same snapshot twice yields identical bills.
type Bill struct {
	RequestID      uuid.UUID       `json:"request_id"`
	Materials      []MaterialLine  `json:"materials"`
	Labor          []LaborLine     `json:"labor"`
	MaterialsTotal decimal.Decimal `json:"materials_total"`
	LaborTotal     decimal.Decimal `json:"labor_total"`
	Discount       decimal.Decimal `json:"discount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	PremiumMember  bool            `json:"premium_member"`
}
