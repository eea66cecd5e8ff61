package rating

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

// POST /api/ratings
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, apperr.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpx.Fail(c, err)
	}

	r, err := h.svc.Submit(c.Request().Context(), httpx.Actor(c), req)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, r)
}

// GET /api/users/:id/ratings
func (h *Handler) SummaryFor(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return httpx.Fail(c, apperr.Validation("missing user id"))
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	summary, list, err := h.svc.SummaryFor(c.Request().Context(), userID, limit, (page-1)*limit)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, echo.Map{
		"summary": summary,
		"ratings": list,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": summary.TotalRatings,
		},
	})
}
