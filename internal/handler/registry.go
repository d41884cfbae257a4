package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rfallows/camshaft/internal/service"
)

type createCustomerRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	MembershipTier string `json:"membership_tier"`
}

func (h *Handler) CreateCustomer(c echo.Context) error {
	var req createCustomerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	customer, err := h.registry.CreateCustomer(c.Request().Context(), service.CreateCustomerParams{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		MembershipTier: req.MembershipTier,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

type createVehicleRequest struct {
	CustomerID   uuid.UUID `json:"customer_id" validate:"required"`
	Registration string    `json:"registration" validate:"required"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int32     `json:"year"`
}

func (h *Handler) CreateVehicle(c echo.Context) error {
	var req createVehicleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	vehicle, err := h.registry.CreateVehicle(c.Request().Context(), service.CreateVehicleParams{
		CustomerID:   req.CustomerID,
		Registration: req.Registration,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, vehicle)
}

type createAdvisorRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) CreateAdvisor(c echo.Context) error {
	var req createAdvisorRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	advisor, err := h.registry.CreateAdvisor(c.Request().Context(), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, advisor)
}

type createItemRequest struct {
	Name         string `json:"name" validate:"required"`
	Category     string `json:"category"`
	CurrentStock string `json:"current_stock" validate:"required"`
	UnitPrice    string `json:"unit_price" validate:"required"`
	ReorderLevel string `json:"reorder_level"`
}

func (h *Handler) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	stock, err := parseAmount("current_stock", req.CurrentStock)
	if err != nil {
		return err
	}
	price, err := parseAmount("unit_price", req.UnitPrice)
	if err != nil {
		return err
	}
	params := service.CreateItemParams{
		Name:         req.Name,
		Category:     req.Category,
		CurrentStock: stock,
		UnitPrice:    price,
	}
	if req.ReorderLevel != "" {
		if params.ReorderLevel, err = parseAmount("reorder_level", req.ReorderLevel); err != nil {
			return err
		}
	}

	item, err := h.registry.CreateItem(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}
