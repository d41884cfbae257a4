package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rfallows/camshaft/internal/domain"
)

type laborChargeInput struct {
	Description string `json:"description" validate:"required"`
	Hours       string `json:"hours" validate:"required"`
	RatePerHour string `json:"rate_per_hour"`
}

type laborChargesRequest struct {
	Charges []laborChargeInput `json:"charges" validate:"required,min=1,dive"`
	Advisor string             `json:"advisor"`
}

// parseCharges converts the wire inputs. A charge without a rate falls back
// to the base rate configured for the request's service type.
func (h *Handler) parseCharges(c echo.Context, requestID string, inputs []laborChargeInput) ([]domain.LaborCharge, error) {
	var baseRate decimal.Decimal
	baseResolved := false

	charges := make([]domain.LaborCharge, len(inputs))
	for i, in := range inputs {
		hours, err := parseAmount("hours", in.Hours)
		if err != nil {
			return nil, err
		}

		var rate decimal.Decimal
		if in.RatePerHour != "" {
			if rate, err = parseAmount("rate_per_hour", in.RatePerHour); err != nil {
				return nil, err
			}
		} else {
			if !baseResolved {
				id, err := parseID(c, requestID)
				if err != nil {
					return nil, err
				}
				summary, err := h.lifecycle.GetSummary(c.Request().Context(), id)
				if err != nil {
					return nil, err
				}
				baseRate = h.baseLaborRate(summary.Request.ServiceType)
				baseResolved = true
			}
			rate = baseRate
		}

		charges[i] = domain.LaborCharge{
			Description: in.Description,
			Hours:       hours,
			RatePerHour: rate,
		}
	}
	return charges, nil
}

func (h *Handler) AddLaborCharges(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req laborChargesRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	charges, err := h.parseCharges(c, "id", req.Charges)
	if err != nil {
		return err
	}

	bill, err := h.labor.AddLaborCharges(c.Request().Context(), id, charges, req.Advisor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) ReplaceLaborCharges(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req laborChargesRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	charges, err := h.parseCharges(c, "id", req.Charges)
	if err != nil {
		return err
	}

	bill, err := h.labor.ReplaceLaborCharges(c.Request().Context(), id, charges, req.Advisor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

type noteRequest struct {
	Text    string `json:"text" validate:"required"`
	Advisor string `json:"advisor"`
}

func (h *Handler) AddNote(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, err := h.labor.AddNote(c.Request().Context(), id, req.Text, req.Advisor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) ListEntries(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.labor.Entries(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
