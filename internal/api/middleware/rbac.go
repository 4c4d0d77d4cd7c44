package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/identity-service/internal/core/domain"
)

// RBAC enforces role membership. It must run after Auth: an unauthenticated
// request never reaches this check, so a valid-but-insufficient role is the
// only way to receive 403 here.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(domain.Role)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
