package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gymdesk/gym-booking-api/internal/model"
)

// StatusLoader reads the current status of an account. *repository.AccountRepo
// satisfies it; tests substitute a fake.
type StatusLoader interface {
	StatusByID(ctx context.Context, id uint64) (string, error)
}

// RequireActiveStatus returns a middleware that re-reads the account status
// on every request and blocks anything that is not active. Tokens outlive
// status changes (an admin can reject an account whose token is still
// valid), so checking the claim alone is not enough. The identity endpoint
// is registered outside this gate so a pending member can still see their
// own pending state.
func RequireActiveStatus(loader StatusLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("user_id").(uint64)
			if !ok || uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
			}
			status, err := loader.StatusByID(c.Request().Context(), uid)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					// Account deleted after the token was issued.
					return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "server error"})
			}
			switch status {
			case model.StatusActive:
				return next(c)
			case model.StatusPending:
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "account pending approval"})
			case model.StatusRejected:
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "account rejected"})
			default:
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
			}
		}
	}
}
