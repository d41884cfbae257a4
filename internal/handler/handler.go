// Package handler exposes the lifecycle and billing operations over HTTP.
// Handlers stay thin: parse, validate, call the service, render. All domain
// decisions live below this layer.
package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/service"
)

// Handler carries the service dependencies for every route.
type Handler struct {
	registry  service.RegistryService
	lifecycle service.LifecycleService
	inventory service.InventoryService
	labor     service.LaborService
	billing   service.BillingService
	payments  service.PaymentService
	invoices  service.InvoiceService

	// baseLaborRate resolves an hourly rate from a service type when a labor
	// charge arrives without one.
	baseLaborRate func(serviceType string) decimal.Decimal

	logger zerolog.Logger
}

func New(
	registry service.RegistryService,
	lifecycle service.LifecycleService,
	inventory service.InventoryService,
	labor service.LaborService,
	billing service.BillingService,
	payments service.PaymentService,
	invoices service.InvoiceService,
	baseLaborRate func(serviceType string) decimal.Decimal,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		registry:      registry,
		lifecycle:     lifecycle,
		inventory:     inventory,
		labor:         labor,
		billing:       billing,
		payments:      payments,
		invoices:      invoices,
		baseLaborRate: baseLaborRate,
		logger:        logger,
	}
}

// RegisterRoutes mounts every operation on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/customers", h.CreateCustomer)
	e.POST("/vehicles", h.CreateVehicle)
	e.POST("/advisors", h.CreateAdvisor)

	e.POST("/inventory/items", h.CreateItem)
	e.GET("/inventory/low-stock", h.LowStock)
	e.POST("/inventory/items/:id/restock", h.Restock)
	e.POST("/inventory/usages/:id/reverse", h.ReverseUsage)

	e.POST("/requests", h.CreateRequest)
	e.GET("/requests/:id", h.GetRequest)
	e.POST("/requests/:id/advisor", h.AssignAdvisor)
	e.PUT("/requests/:id/advisor", h.ReassignAdvisor)
	e.POST("/requests/:id/status", h.TransitionStatus)
	e.POST("/requests/:id/dispatch", h.Dispatch)

	e.POST("/requests/:id/materials", h.ConsumeMaterial)
	e.POST("/requests/:id/labor", h.AddLaborCharges)
	e.PUT("/requests/:id/labor", h.ReplaceLaborCharges)
	e.POST("/requests/:id/notes", h.AddNote)
	e.GET("/requests/:id/entries", h.ListEntries)

	e.GET("/requests/:id/bill", h.GetBill)
	e.POST("/requests/:id/payment", h.RecordPayment)
	e.GET("/requests/:id/payment", h.GetPayment)
	e.POST("/requests/:id/invoice", h.GenerateInvoice)
	e.GET("/requests/:id/invoice", h.GetInvoice)
}

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return domain.Invalid("handler.validate", err.Error())
	}
	return nil
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP statuses.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPErrorHandler renders domain errors as JSON with the mapped status.
// Internal details never reach the client; domain.ErrorMessage substitutes a
// generic message for EINTERNAL.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := domain.ErrorCode(err)
		status := ErrorCodeToHTTPStatus(code)

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			code = domain.EINVALID
			if status >= http.StatusInternalServerError {
				code = domain.EINTERNAL
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		body := errorBody{Code: code, Message: domain.ErrorMessage(err)}
		if jsonErr := c.JSON(status, body); jsonErr != nil {
			logger.Error().Err(jsonErr).Msg("failed to write error response")
		}
	}
}

// parseID reads a UUID path parameter.
func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("handler.parse_id", "invalid "+name+" parameter")
	}
	return id, nil
}

// parseAmount reads a decimal from a string field. Sign and range checks
// belong to the services.
func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, domain.Invalid("handler.parse_amount", field+" must be a decimal number")
	}
	return d, nil
}
