package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/payment"
)

func TestRecordPaymentDerivesAmountFromBill(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	_, err := f.labor.AddLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "service", Hours: dec("2"), RatePerHour: dec("350")},
	}, "ravi")
	require.NoError(t, err)

	p, err := f.payments.RecordPayment(ctx, RecordPaymentParams{RequestID: requestID})
	require.NoError(t, err)
	assertDec(t, "826.00", p.Amount) // 700 + 126 tax
	assert.Equal(t, domain.MethodCash, p.Method)
	assert.Equal(t, domain.PaymentCompleted, p.Status)
	assert.NotEmpty(t, p.TransactionID)
}

func TestRecordPaymentExplicitFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	p, err := f.payments.RecordPayment(ctx, RecordPaymentParams{
		RequestID:     requestID,
		Amount:        "1234.50",
		Method:        domain.MethodUPI,
		TransactionID: "upi-ref-991",
	})
	require.NoError(t, err)
	assertDec(t, "1234.50", p.Amount)
	assert.Equal(t, domain.MethodUPI, p.Method)
	assert.Equal(t, "upi-ref-991", p.TransactionID)

	// An explicit transaction id bypasses the provider.
	assert.Empty(t, f.provider.CallLog)
}

func TestRecordPaymentUsesProviderForTransactionID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	p, err := f.payments.RecordPayment(ctx, RecordPaymentParams{
		RequestID: requestID,
		Amount:    "500",
		Method:    domain.MethodCard,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.TransactionID)
	require.Len(t, f.provider.CallLog, 1)
	assert.Equal(t, "Charge(500.00, card)", f.provider.CallLog[0])
}

// A tokenized payment method id must reach the card provider unchanged; the
// gateway charges that instrument, not a hardcoded one.
func TestRecordPaymentForwardsPaymentMethodID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	var got payment.ChargeParams
	f.provider.ChargeFunc = func(_ context.Context, params payment.ChargeParams) (*payment.Charge, error) {
		got = params
		return &payment.Charge{TransactionID: "pi_test_1", Status: "succeeded"}, nil
	}

	p, err := f.payments.RecordPayment(ctx, RecordPaymentParams{
		RequestID:       requestID,
		Amount:          "500",
		Method:          domain.MethodCard,
		PaymentMethodID: "pm_1OxyzSavedCard",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", p.TransactionID)
	assert.Equal(t, "pm_1OxyzSavedCard", got.PaymentMethodID)
	assert.Equal(t, domain.MethodCard, got.Method)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	tests := []struct {
		name    string
		params  RecordPaymentParams
		wantErr error
	}{
		{"unknown request", RecordPaymentParams{RequestID: uuid.New(), Amount: "100"}, ErrRequestNotFound},
		{"unparseable amount", RecordPaymentParams{RequestID: requestID, Amount: "abc"}, ErrInvalidAmount},
		{"zero amount", RecordPaymentParams{RequestID: requestID, Amount: "0"}, ErrInvalidAmount},
		{"negative amount", RecordPaymentParams{RequestID: requestID, Amount: "-50"}, ErrInvalidAmount},
		{"unknown method", RecordPaymentParams{RequestID: requestID, Amount: "100", Method: "barter"}, ErrInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.RecordPayment(ctx, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordPaymentAtMostOnePerRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	_, err := f.payments.RecordPayment(ctx, RecordPaymentParams{RequestID: requestID, Amount: "100"})
	require.NoError(t, err)

	_, err = f.payments.RecordPayment(ctx, RecordPaymentParams{RequestID: requestID, Amount: "100"})
	assert.ErrorIs(t, err, ErrPaymentExists)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestGetPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	_, err := f.payments.GetPayment(ctx, requestID)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	_, err = f.payments.RecordPayment(ctx, RecordPaymentParams{RequestID: requestID, Amount: "250"})
	require.NoError(t, err)

	p, err := f.payments.GetPayment(ctx, requestID)
	require.NoError(t, err)
	assertDec(t, "250", p.Amount)
}
