package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type consumeRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity string    `json:"quantity" validate:"required"`
}

// ConsumeMaterial decrements stock against the request and returns the
// updated bill.
func (h *Handler) ConsumeMaterial(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req consumeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	quantity, err := parseAmount("quantity", req.Quantity)
	if err != nil {
		return err
	}

	bill, err := h.inventory.Consume(c.Request().Context(), id, req.ItemID, quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) ReverseUsage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	usage, err := h.inventory.Reverse(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usage)
}

type restockRequest struct {
	Quantity string `json:"quantity" validate:"required"`
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	quantity, err := parseAmount("quantity", req.Quantity)
	if err != nil {
		return err
	}

	item, err := h.inventory.Restock(c.Request().Context(), id, quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.inventory.LowStock(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
