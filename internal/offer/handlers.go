package offer

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

// POST /api/offers
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	o, err := h.svc.Create(c.Request().Context(), httpx.Actor(c), req)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, o)
}

// POST /api/offers/:id/accept
func (h *Handler) Accept(c echo.Context) error {
	res, err := h.svc.Accept(c.Request().Context(), httpx.Actor(c), c.Param("id"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, res)
}

// POST /api/offers/:id/reject
func (h *Handler) Reject(c echo.Context) error {
	o, err := h.svc.Reject(c.Request().Context(), httpx.Actor(c), c.Param("id"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, o)
}

// GET /api/offers?shipment_id=...
func (h *Handler) List(c echo.Context) error {
	shipmentID := c.QueryParam("shipment_id")
	if shipmentID == "" {
		return httpx.Fail(c, apperr.Validation("shipment_id query parameter is required"))
	}

	offers, err := h.svc.ListForShipment(c.Request().Context(), httpx.Actor(c), shipmentID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"offers": offers})
}
