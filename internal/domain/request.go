package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a service request.
// Transitions move strictly forward; see ValidateTransition.
type Status string

const (
	StatusReceived  Status = "received"
	StatusDiagnosis Status = "diagnosis"
	StatusRepair    Status = "repair"
	StatusCompleted Status = "completed"
)

// statusRank orders statuses for the forward-only rule.
var statusRank = map[Status]int{
	StatusReceived:  0,
	StatusDiagnosis: 1,
	StatusRepair:    2,
	StatusCompleted: 3,
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statusRank[st]; !ok {
		return "", Errorf(EINVALID, "status.parse", "unknown status: %q", s)
	}
	return st, nil
}

// ValidateTransition returns nil when moving from -> to is a legal forward
// transition. Skipping intermediate states is allowed (a simple service may go
// straight from received to completed); moving backward or standing still is not.
func ValidateTransition(from, to Status) error {
	fromRank, ok := statusRank[from]
	if !ok {
		return Errorf(EINVALID, "status.transition", "unknown status: %q", from)
	}
	toRank, ok := statusRank[to]
	if !ok {
		return Errorf(EINVALID, "status.transition", "unknown status: %q", to)
	}
	if toRank <= fromRank {
		return Errorf(EINVALID, "status.transition", "cannot move status from %s to %s", from, to)
	}
	return nil
}

// Membership tiers controlling labor discount eligibility.
const (
	TierStandard = "Standard"
	TierPremium  = "Premium"
)

// Customer owns one or more vehicles and carries the membership tier used for
// discount computation.
type Customer struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	MembershipTier string    `json:"membership_tier"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsPremium reports whether the customer qualifies for the labor discount.
// Tier is compared case-insensitively; anything other than Premium is standard.
func (c Customer) IsPremium() bool {
	return strings.EqualFold(c.MembershipTier, TierPremium)
}

// Vehicle is the unit a service request is booked against.
type Vehicle struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Registration string    `json:"registration"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int32     `json:"year"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceAdvisor is the staff member assigned to execute and bill a request.
type ServiceAdvisor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceRequest is the aggregate root of the lifecycle. Status and advisor
// are mutated only through guarded transitions in the lifecycle service.
type ServiceRequest struct {
	ID           uuid.UUID  `json:"id"`
	VehicleID    uuid.UUID  `json:"vehicle_id"`
	AdvisorID    *uuid.UUID `json:"advisor_id,omitempty"` // nil until an advisor is assigned
	Status       Status     `json:"status"`
	ServiceType  string     `json:"service_type"`
	DeliveryDate time.Time  `json:"delivery_date"`
	Dispatched   bool       `json:"dispatched"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RequestSummary is the flat shape returned to callers after lifecycle
// operations: request fields plus resolved vehicle and customer identity.
type RequestSummary struct {
	Request  ServiceRequest  `json:"request"`
	Vehicle  Vehicle         `json:"vehicle"`
	Customer Customer        `json:"customer"`
	Advisor  *ServiceAdvisor `json:"advisor,omitempty"`
}
