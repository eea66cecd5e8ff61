package alerts

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/httpx"
)

// Handler serves the in-app notification endpoints.
type Handler struct {
	pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// List returns the current user's notifications, newest first.
// GET /api/notifications
func (h *Handler) List(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	rows, err := h.pool.Query(c.Request().Context(),
		`SELECT id::text, type, title, body, COALESCE(link, ''), severity, COALESCE(metadata::text, ''), created_at, read_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100`, userID,
	)
	if err != nil {
		return httpx.Fail(c, apperr.Unexpected(err))
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var id, kind, title, body, link, severity, metadata string
		var createdAt time.Time
		var readAt *time.Time
		if err := rows.Scan(&id, &kind, &title, &body, &link, &severity, &metadata, &createdAt, &readAt); err != nil {
			return httpx.Fail(c, apperr.Unexpected(err))
		}
		item := map[string]any{
			"id":         id,
			"type":       kind,
			"title":      title,
			"body":       body,
			"link":       link,
			"severity":   severity,
			"metadata":   metadata,
			"created_at": createdAt.UTC().Format(time.RFC3339),
		}
		if readAt != nil {
			item["read_at"] = readAt.UTC().Format(time.RFC3339)
		} else {
			item["read_at"] = nil
		}
		items = append(items, item)
	}
	return httpx.OK(c, echo.Map{"notifications": items})
}

// MarkRead marks one notification as read.
// POST /api/notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	nid := c.Param("id")
	if nid == "" {
		return httpx.Fail(c, apperr.Validation("missing notification id"))
	}

	res, err := h.pool.Exec(c.Request().Context(),
		`UPDATE notifications SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`, nid, userID,
	)
	if err != nil {
		return httpx.Fail(c, apperr.Unexpected(err))
	}
	if res.RowsAffected() == 0 {
		return httpx.Fail(c, apperr.NotFound("notification not found or already read"))
	}
	return httpx.OK(c, echo.Map{"id": nid})
}
