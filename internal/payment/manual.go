package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ManualProvider handles over-the-counter methods (cash, UPI, check) where
// the money changes hands outside any gateway. It only mints a local
// transaction reference for the audit trail.
type ManualProvider struct{}

// NewManualProvider creates a manual payment provider.
func NewManualProvider() *ManualProvider {
	return &ManualProvider{}
}

// Charge generates a transaction reference of the form TXN-20250901-a3f9c2d1.
func (p *ManualProvider) Charge(ctx context.Context, params ChargeParams) (*Charge, error) {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return &Charge{
		TransactionID: fmt.Sprintf("TXN-%s-%s", time.Now().UTC().Format("20060102"), suffix),
		Status:        "succeeded",
	}, nil
}
