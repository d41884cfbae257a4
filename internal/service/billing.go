package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
)

// BillingService computes the always-current bill for a service request.
// Reading never mutates state; the same ledger state always yields the same
// bill.
type BillingService interface {
	// CurrentBill recomputes totals from a consistent snapshot of the
	// material and labor ledgers plus the customer's membership standing.
	CurrentBill(ctx context.Context, requestID uuid.UUID) (*domain.Bill, error)
}

// Calculator is the pure billing computation over a snapshot. All
// intermediate sums keep full precision; 2-decimal rounding happens only at
// the tax step.
type Calculator struct {
	rates domain.Rates
}

// NewCalculator creates a calculator with the given rates.
func NewCalculator(rates domain.Rates) Calculator {
	return Calculator{rates: rates}
}

// Compute derives the bill:
//
//	materialsTotal = Σ quantity × unitPrice          (non-reversed usages)
//	laborTotal     = Σ labor charge totals           (non-superseded)
//	discount       = premium ? laborTotal × rate : 0
//	subtotal       = materialsTotal + laborTotal − discount
//	tax            = round(subtotal × taxRate, 2)    (half up)
//	grandTotal     = subtotal + tax
func (c Calculator) Compute(snap domain.BillingSnapshot) domain.Bill {
	materials := make([]domain.MaterialLine, len(snap.Materials))
	materialsTotal := decimal.Zero
	for i, line := range snap.Materials {
		line.LineTotal = line.Quantity.Mul(line.UnitPrice)
		materials[i] = line
		materialsTotal = materialsTotal.Add(line.LineTotal)
	}

	laborTotal := decimal.Zero
	for _, line := range snap.Labor {
		laborTotal = laborTotal.Add(line.Cost)
	}

	discount := decimal.Zero
	if snap.PremiumMember {
		discount = laborTotal.Mul(c.rates.LaborDiscount)
	}

	subtotal := materialsTotal.Add(laborTotal).Sub(discount)
	tax := subtotal.Mul(c.rates.Tax).Round(2)

	return domain.Bill{
		RequestID:      snap.RequestID,
		Materials:      materials,
		Labor:          snap.Labor,
		MaterialsTotal: materialsTotal,
		LaborTotal:     laborTotal,
		Discount:       discount,
		Subtotal:       subtotal,
		Tax:            tax,
		GrandTotal:     subtotal.Add(tax),
		PremiumMember:  snap.PremiumMember,
	}
}

type billingService struct {
	store domain.BillingStore
	calc  Calculator
}

// NewBillingService creates a BillingService over the given snapshot store.
func NewBillingService(store domain.BillingStore, rates domain.Rates) BillingService {
	return &billingService{
		store: store,
		calc:  NewCalculator(rates),
	}
}

func (s *billingService) CurrentBill(ctx context.Context, requestID uuid.UUID) (*domain.Bill, error) {
	snap, err := s.store.GetBillingSnapshot(ctx, requestID)
	if err != nil {
		return nil, err
	}

	bill := s.calc.Compute(*snap)
	return &bill, nil
}
