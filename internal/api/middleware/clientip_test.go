package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/identity-service/internal/core/domain"
)

func TestClientIP_SetOnRequestContext(t *testing.T) {
	e := echo.New()

	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = domain.ClientIP(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}, ClientIP())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if seen != "203.0.113.7" {
		t.Fatalf("expected client ip on context, got %q", seen)
	}
}
