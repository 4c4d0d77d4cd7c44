package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/ports"
)

// RequireVerified rejects requests whose identity has not verified its
// email. The flag is read fresh from the store because tokens do not carry
// it. Runs after Auth.
func RequireVerified(repo ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := repo.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				return err
			}

			if !user.EmailVerified {
				return echo.NewHTTPError(http.StatusForbidden, "email verification required")
			}
			return next(c)
		}
	}
}
