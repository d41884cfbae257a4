package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rfallows/camshaft/internal/domain"
	"github.com/rfallows/camshaft/internal/service"
)

type createRequestRequest struct {
	VehicleID    uuid.UUID `json:"vehicle_id" validate:"required"`
	ServiceType  string    `json:"service_type" validate:"required"`
	DeliveryDate time.Time `json:"delivery_date"`
}

func (h *Handler) CreateRequest(c echo.Context) error {
	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.lifecycle.CreateRequest(c.Request().Context(), service.CreateRequestParams{
		VehicleID:    req.VehicleID,
		ServiceType:  req.ServiceType,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.lifecycle.GetSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

type advisorRequest struct {
	AdvisorID uuid.UUID `json:"advisor_id" validate:"required"`
}

func (h *Handler) AssignAdvisor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req advisorRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	summary, err := h.lifecycle.AssignAdvisor(c.Request().Context(), id, req.AdvisorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ReassignAdvisor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req advisorRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	summary, err := h.lifecycle.ReassignAdvisor(c.Request().Context(), id, req.AdvisorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

type transitionRequest struct {
	Status         string `json:"status" validate:"required"`
	Note           string `json:"note"`
	Advisor        string `json:"advisor"`
	NotifyCustomer bool   `json:"notify_customer"`
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	summary, err := h.lifecycle.TransitionStatus(c.Request().Context(), service.TransitionParams{
		RequestID:      id,
		To:             to,
		Note:           req.Note,
		Advisor:        req.Advisor,
		NotifyCustomer: req.NotifyCustomer,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Dispatch(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.lifecycle.Dispatch(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
