package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakeStatusLoader struct {
	status string
	err    error
}

func (f fakeStatusLoader) StatusByID(ctx context.Context, id uint64) (string, error) {
	return f.status, f.err
}

func runStatusGate(t *testing.T, uid interface{}, loader StatusLoader) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != nil {
		c.Set("user_id", uid)
	}
	h := RequireActiveStatus(loader)(func(c echo.Context) error {
		return c.String(http.StatusOK, "through")
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestStatusGate_ActivePasses(t *testing.T) {
	rec := runStatusGate(t, uint64(1), fakeStatusLoader{status: "active"})
	if rec.Code != http.StatusOK {
		t.Fatalf("active account blocked: %d %s", rec.Code, rec.Body.String())
	}
}

func TestStatusGate_PendingBlocked(t *testing.T) {
	rec := runStatusGate(t, uint64(1), fakeStatusLoader{status: "pending"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending account not blocked: %d", rec.Code)
	}
}

func TestStatusGate_RejectedBlocked(t *testing.T) {
	rec := runStatusGate(t, uint64(1), fakeStatusLoader{status: "rejected"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("rejected account not blocked: %d", rec.Code)
	}
}

func TestStatusGate_DeletedAccountUnauthorized(t *testing.T) {
	// A valid token whose account was deleted afterwards must read as
	// unauthenticated, not as a server error.
	rec := runStatusGate(t, uint64(1), fakeStatusLoader{err: sql.ErrNoRows})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted account: got %d want 401", rec.Code)
	}
}

func TestStatusGate_NoIdentityUnauthorized(t *testing.T) {
	rec := runStatusGate(t, nil, fakeStatusLoader{status: "active"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing identity: got %d want 401", rec.Code)
	}
}
