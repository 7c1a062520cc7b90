package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Every endpoint answers with the same envelope: {"success": true, "data":
// ...} on the happy path and {"success": false, "error": "..."} on
// failure. Domain errors carry a short client-safe message; unexpected
// failures are logged by the caller and surfaced as an opaque
// "server error".

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

func failServer(c echo.Context) error {
	return fail(c, http.StatusInternalServerError, "server error")
}

var errNoUser = errors.New("no user in context")

// getUserID extracts the authenticated account id placed in the context by
// the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
		return v, nil
	}
	return 0, errNoUser
}
