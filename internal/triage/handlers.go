package triage

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/loadboard-app/loadboard/internal/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/admin/inbox
func (h *Handler) Inbox(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, warnings, err := h.svc.Inbox(c.Request().Context(), limit)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"items": items, "warnings": warnings})
}

// GET /api/admin/planner/briefing
func (h *Handler) Briefing(c echo.Context) error {
	b, err := h.svc.Briefing(c.Request().Context())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, b)
}
