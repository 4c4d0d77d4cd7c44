package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/marketbase/identity-service/internal/core/domain"
)

// ClientIP copies the resolved client address onto the request context so
// the service layer can attribute audit events to it.
func ClientIP() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := domain.WithClientIP(req.Context(), c.RealIP())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
