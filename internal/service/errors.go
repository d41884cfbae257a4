package service

import (
	"github.com/rfallows/camshaft/internal/domain"
)

// Missing-resource errors - domain.ENOTFOUND
var (
	ErrRequestNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Service request not found")
	ErrVehicleNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Vehicle not found")
	ErrCustomerNotFound = domain.Errorf(domain.ENOTFOUND, "", "Customer not found")
	ErrAdvisorNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Service advisor not found")
	ErrItemNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Inventory item not found")
	ErrUsageNotFound    = domain.Errorf(domain.ENOTFOUND, "", "Material usage not found")
	ErrInvoiceNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Invoice not found")
)

// Validation errors - domain.EINVALID
var (
	ErrInvalidQuantity = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrInvalidHours    = domain.Errorf(domain.EINVALID, "", "Hours must be greater than 0")
	ErrInvalidRate     = domain.Errorf(domain.EINVALID, "", "Rate per hour must be greater than 0")
	ErrInvalidAmount   = domain.Errorf(domain.EINVALID, "", "Payment amount must be a positive number")
	ErrInvalidMethod   = domain.Errorf(domain.EINVALID, "", "Unknown payment method")
	ErrNotCompleted    = domain.Errorf(domain.EINVALID, "", "Service request must be completed before dispatch")
	ErrNoAdvisor       = domain.Errorf(domain.EINVALID, "", "No advisor assigned to reassign from")
	ErrNotReceived     = domain.Errorf(domain.EINVALID, "", "Advisor can only be assigned while the request is received")
)

// Gate and conflict errors
var (
	ErrPaymentRequired     = domain.Errorf(domain.EPAYMENT, "", "No payment recorded for this request")
	ErrPaymentExists       = domain.ErrPaymentExists
	ErrInsufficientStock   = domain.ErrInsufficientStock
	ErrUsageReversed       = domain.ErrUsageReversed
	ErrRequestDispatched   = domain.Errorf(domain.ECONFLICT, "", "Service request already dispatched")
	ErrConcurrencyConflict = domain.Errorf(domain.ECONFLICT, "", "Concurrent update detected, retry the operation")
)
