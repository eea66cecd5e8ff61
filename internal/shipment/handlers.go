package shipment

import (
	"github.com/labstack/echo/v4"

	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/shipments
func (h *Handler) Create(c echo.Context) error {
	actor := httpx.Actor(c)

	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	sh, err := h.svc.Create(c.Request().Context(), actor.ID, req)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, sh)
}

// GET /api/shipments
func (h *Handler) List(c echo.Context) error {
	actor := httpx.Actor(c)
	out, err := h.svc.ListForUser(c.Request().Context(), actor.ID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"shipments": out})
}

// GET /api/shipments/:id
func (h *Handler) Get(c echo.Context) error {
	sh, err := h.svc.Get(c.Request().Context(), httpx.Actor(c), c.Param("id"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, sh)
}

// PUT /api/shipments/:id — advance status
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	next, err := ParseStatus(req.Status)
	if err != nil {
		return httpx.Fail(c, err)
	}

	sh, err := h.svc.AdvanceStatus(c.Request().Context(), httpx.Actor(c), c.Param("id"), next)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, sh)
}

// POST /api/shipments/:id/cancel
func (h *Handler) Cancel(c echo.Context) error {
	var req struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	sh, err := h.svc.Cancel(c.Request().Context(), httpx.Actor(c), c.Param("id"), req.Reason)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, sh)
}

// POST /api/shipments/:id/assign-carrier
func (h *Handler) AssignCarrier(c echo.Context) error {
	var req struct {
		CarrierID string `json:"carrier_id" validate:"required,uuid"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	sh, err := h.svc.AssignCarrier(c.Request().Context(), httpx.Actor(c), c.Param("id"), req.CarrierID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, sh)
}
