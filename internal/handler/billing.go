package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rfallows/camshaft/internal/service"
)

// GetBill returns the always-current computed bill for a request.
func (h *Handler) GetBill(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	bill, err := h.billing.CurrentBill(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

type recordPaymentRequest struct {
	Amount          string `json:"amount"`
	Method          string `json:"method"`
	TransactionID   string `json:"transaction_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	payment, err := h.payments.RecordPayment(c.Request().Context(), service.RecordPaymentParams{
		RequestID:       id,
		Amount:          req.Amount,
		Method:          req.Method,
		TransactionID:   req.TransactionID,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *Handler) GetPayment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payment, err := h.payments.GetPayment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// GenerateInvoice builds (or rebuilds) the invoice and returns the
// render-ready document.
func (h *Handler) GenerateInvoice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.invoices.Generate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	inv, err := h.invoices.GetByRequest(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}
