package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind discriminates labor ledger rows. Billable labor, free-form work
// notes and status-change audit records share one append-only ledger; only
// labor charges carry a cost.
type EntryKind string

const (
	EntryWorkNote     EntryKind = "work_note"
	EntryLaborCharge  EntryKind = "labor_charge"
	EntryStatusChange EntryKind = "status_change"
)

// LaborEntry is one row of the per-request audit trail. Entries are never
// edited or deleted; a labor charge replaced by a newer breakdown is marked
// superseded and kept.
type LaborEntry struct {
	ID           uuid.UUID       `json:"id"`
	RequestID    uuid.UUID       `json:"request_id"`
	Kind         EntryKind       `json:"kind"`
	Description  string          `json:"description"`
	LaborMinutes int32           `json:"labor_minutes"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	Advisor      string          `json:"advisor,omitempty"`
	Superseded   bool            `json:"superseded"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LaborCharge is the input shape for recording billable work.
type LaborCharge struct {
	Description string
	Hours       decimal.Decimal
	RatePerHour decimal.Decimal
}
