package moderation

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

// PATCH /api/admin/users/:id/active
func (h *Handler) SetUserActive(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return httpx.Fail(c, apperr.Validation("user id required"))
	}

	var req struct {
		IsActive *bool  `json:"is_active" validate:"required"`
		Reason   string `json:"reason" validate:"required,min=3"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	res, err := h.svc.SetUserActive(c.Request().Context(), httpx.Actor(c), userID, *req.IsActive, req.Reason)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, res)
}

// POST /api/admin/flags
func (h *Handler) CreateFlag(c echo.Context) error {
	var req CreateFlagRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	f, err := h.svc.CreateFlag(c.Request().Context(), httpx.Actor(c), req)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, f)
}

// GET /api/admin/flags
func (h *Handler) ListFlags(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	out, err := h.svc.ListFlags(c.Request().Context(), httpx.Actor(c), c.QueryParam("status"), limit)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"flags": out})
}

// GET /api/admin/audit
func (h *Handler) ListAudit(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	out, err := h.svc.ListAudit(c.Request().Context(), httpx.Actor(c), limit)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"audit": out})
}

// GET /api/admin/users
func (h *Handler) ListUsers(c echo.Context) error {
	out, err := h.svc.ListUsers(c.Request().Context(), httpx.Actor(c))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{"users": out})
}
