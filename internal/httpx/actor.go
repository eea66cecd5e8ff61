package httpx

import (
	"github.com/labstack/echo/v4"

	"github.com/loadboard-app/loadboard/internal/authz"
)

// Actor reads the authenticated caller that the JWT middleware stored on the
// context.
func Actor(c echo.Context) authz.Actor {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return authz.Actor{ID: id, Role: role}
}
