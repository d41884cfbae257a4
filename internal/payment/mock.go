package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockProvider is a payment provider for testing. Simulates successful
// charges without touching any gateway.
type MockProvider struct {
	// ChargeFunc allows customizing charge behavior per test.
	ChargeFunc func(ctx context.Context, params ChargeParams) (*Charge, error)

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockProvider creates a new mock payment provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{CallLog: []string{}}
}

// Charge records the call and returns a successful charge unless ChargeFunc
// overrides it.
func (m *MockProvider) Charge(ctx context.Context, params ChargeParams) (*Charge, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("Charge(%s, %s)", params.Amount.StringFixed(2), params.Method))

	if m.ChargeFunc != nil {
		return m.ChargeFunc(ctx, params)
	}

	return &Charge{
		TransactionID: "mock_" + uuid.New().String()[:8],
		Status:        "succeeded",
	}, nil
}
