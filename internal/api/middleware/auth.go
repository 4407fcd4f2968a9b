package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-service/internal/core/domain"
)

// TokenVerifier checks a presented credential's signature and expiry and
// returns the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SessionResolver loads an account only while the token is still in its
// session list. A revoked token resolves exactly like a missing user.
type SessionResolver interface {
	FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)
}

// Auth validates the bearer token and injects the resolved account into the
// request context. A signature-valid token that has been logged out is
// rejected the same way as a forged one.
func Auth(tokens TokenVerifier, sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			raw := parts[1]

			userID, err := tokens.Verify(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			user, err := sessions.FindByIDAndToken(c.Request().Context(), userID, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			c.Set("user", user)
			c.Set("token", raw)

			return next(c)
		}
	}
}
