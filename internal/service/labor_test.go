package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfallows/camshaft/internal/domain"
)

func TestAddLaborChargesComputesTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	bill, err := f.labor.AddLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "diagnostics", Hours: dec("1.5"), RatePerHour: dec("200")},
		{Description: "brake job", Hours: dec("2"), RatePerHour: dec("150")},
	}, "ravi")
	require.NoError(t, err)
	assertDec(t, "600", bill.LaborTotal) // 300 + 300

	entries, err := f.labor.Entries(ctx, requestID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntryLaborCharge, entries[0].Kind)
	assert.Equal(t, int32(90), entries[0].LaborMinutes)
	assertDec(t, "300", entries[0].LaborCost)
	assert.Equal(t, "ravi", entries[0].Advisor)
}

// Minutes round to the nearest whole; the cost keeps full precision.
func TestLaborChargeMinutesRounding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	_, err := f.labor.AddLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "wiring", Hours: dec("0.33"), RatePerHour: dec("333.33")},
	}, "ravi")
	require.NoError(t, err)

	entries, err := f.labor.Entries(ctx, requestID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int32(20), entries[0].LaborMinutes) // 19.8 rounds to 20
	assertDec(t, "109.9989", entries[0].LaborCost)
}

func TestAddLaborChargesValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	tests := []struct {
		name    string
		charges []domain.LaborCharge
		wantErr error
	}{
		{
			name:    "zero hours",
			charges: []domain.LaborCharge{{Description: "x", Hours: dec("0"), RatePerHour: dec("100")}},
			wantErr: ErrInvalidHours,
		},
		{
			name:    "negative rate",
			charges: []domain.LaborCharge{{Description: "x", Hours: dec("1"), RatePerHour: dec("-5")}},
			wantErr: ErrInvalidRate,
		},
		{
			name:    "absurd hours",
			charges: []domain.LaborCharge{{Description: "x", Hours: dec("1001"), RatePerHour: dec("100")}},
			wantErr: ErrInvalidHours,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.labor.AddLaborCharges(ctx, requestID, tt.charges, "ravi")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("empty batch", func(t *testing.T) {
		_, err := f.labor.AddLaborCharges(ctx, requestID, nil, "ravi")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})
}

// flakyLaborStore accepts the first single append then fails everything, the
// shape of a store error landing mid-batch.
type flakyLaborStore struct {
	*memStore
	appended int
}

func (s *flakyLaborStore) AppendEntry(ctx context.Context, e *domain.LaborEntry) error {
	if s.appended >= 1 {
		return domain.Internal(errors.New("write conflict"), "store.labor.append", "failed to append labor entry")
	}
	s.appended++
	return s.memStore.AppendEntry(ctx, e)
}

func (s *flakyLaborStore) AppendEntries(context.Context, []*domain.LaborEntry) error {
	return domain.Internal(errors.New("write conflict"), "store.labor.append", "failed to commit batch")
}

// A failed multi-charge add must leave the ledger untouched, never a partial
// batch.
func TestAddLaborChargesBatchIsAtomic(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	labor := NewLaborService(&flakyLaborStore{memStore: f.store}, f.store, f.billing, nil, zerolog.Nop())

	_, err := labor.AddLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "diagnosis", Hours: dec("1"), RatePerHour: dec("300")},
		{Description: "repair", Hours: dec("2"), RatePerHour: dec("300")},
	}, "ravi")
	require.Error(t, err)

	entries, err := f.labor.Entries(ctx, requestID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddNoteHasNoFinancialEffect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	entry, err := f.labor.AddNote(ctx, requestID, "customer approved extra work", "ravi")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryWorkNote, entry.Kind)
	assertDec(t, "0", entry.LaborCost)

	total, err := f.labor.TotalLaborCost(ctx, requestID)
	require.NoError(t, err)
	assertDec(t, "0", total)

	bill, err := f.billing.CurrentBill(ctx, requestID)
	require.NoError(t, err)
	assertDec(t, "0", bill.LaborTotal)
}

func TestReplaceLaborChargesSupersedesHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)

	_, err := f.labor.AddLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "initial estimate", Hours: dec("4"), RatePerHour: dec("100")},
	}, "ravi")
	require.NoError(t, err)

	bill, err := f.labor.ReplaceLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "diagnostics", Hours: dec("1"), RatePerHour: dec("200")},
		{Description: "repair", Hours: dec("2"), RatePerHour: dec("150")},
	}, "ravi")
	require.NoError(t, err)
	assertDec(t, "500", bill.LaborTotal)

	// Old charge is superseded but kept in the ledger.
	entries, err := f.labor.Entries(ctx, requestID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var superseded int
	for _, e := range entries {
		if e.Superseded {
			superseded++
			assert.Equal(t, "initial estimate", e.Description)
		}
	}
	assert.Equal(t, 1, superseded)

	total, err := f.labor.TotalLaborCost(ctx, requestID)
	require.NoError(t, err)
	assertDec(t, "500", total)
}

func TestLaborRejectedAfterDispatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requestID := f.seedRequest(t, domain.TierStandard)
	f.completeRequest(t, requestID)

	_, err := f.payments.RecordPayment(ctx, RecordPaymentParams{RequestID: requestID, Amount: "100"})
	require.NoError(t, err)
	_, err = f.lifecycle.Dispatch(ctx, requestID)
	require.NoError(t, err)

	_, err = f.labor.AddLaborCharges(ctx, requestID, []domain.LaborCharge{
		{Description: "late work", Hours: dec("1"), RatePerHour: dec("100")},
	}, "ravi")
	assert.ErrorIs(t, err, ErrRequestDispatched)

	_, err = f.labor.AddNote(ctx, requestID, "late note", "ravi")
	assert.ErrorIs(t, err, ErrRequestDispatched)
}
