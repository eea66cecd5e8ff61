package complaint

import (
	"strconv"

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

// POST /api/complaints
func (h *Handler) Open(c echo.Context) error {
	var req OpenRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	cp, err := h.svc.Open(c.Request().Context(), httpx.Actor(c), req)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, cp)
}

// GET /api/complaints — the caller's own cases. Admins get everything.
func (h *Handler) List(c echo.Context) error {
	actor := httpx.Actor(c)

	if actor.IsAdmin() {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		out, err := h.svc.ListAll(c.Request().Context(), actor, c.QueryParam("status"), limit)
		if err != nil {
			return httpx.Fail(c, err)
		}
		return httpx.OK(c, echo.Map{"complaints": out})
	}

	out, err := h.svc.ListForUser(c.Request().Context(), actor.ID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"complaints": out})
}

// PATCH /api/admin/complaints/:id/status
func (h *Handler) Transition(c echo.Context) error {
	var req struct {
		Status   string `json:"status" validate:"required"`
		Override bool   `json:"override"`
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

	cp, err := h.svc.Transition(c.Request().Context(), httpx.Actor(c), c.Param("id"), next, req.Override)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, cp)
}
