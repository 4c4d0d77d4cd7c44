package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/token"
)

// adminRoute builds an echo instance with an admin-only endpoint behind the
// full Auth → RBAC pipeline.
func adminRoute() *echo.Echo {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Auth(token.NewVerifier(testSecret)), RBAC(domain.RoleAdmin))
	return e
}

func getWithToken(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRBAC_AdminAllowed(t *testing.T) {
	e := adminRoute()
	issuer := token.NewIssuer(testSecret, 15*time.Minute, time.Hour)
	admin, _ := issuer.IssueAccess("user-1", domain.RoleAdmin)

	rec := getWithToken(e, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_CustomerForbidden(t *testing.T) {
	e := adminRoute()
	issuer := token.NewIssuer(testSecret, 15*time.Minute, time.Hour)
	customer, _ := issuer.IssueAccess("user-2", domain.RoleCustomer)

	rec := getWithToken(e, customer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for valid customer token, got %d", rec.Code)
	}
}

// Authentication precedes authorization: an expired token on an admin route
// is 401, never 403.
func TestRBAC_ExpiredTokenIsUnauthenticated(t *testing.T) {
	e := adminRoute()
	expired := accessToken(t, domain.RoleAdmin, time.Now().Add(-time.Minute))

	rec := getWithToken(e, expired)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestRBAC_MissingTokenIsUnauthenticated(t *testing.T) {
	e := adminRoute()

	rec := getWithToken(e, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", rec.Code)
	}
}
