package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
)

// ContextKeyUser is the echo.Context key holding the authenticated *domain.User.
const ContextKeyUser = "user"

// TokenResolver turns a bearer token into the user it was issued to.
type TokenResolver interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires a valid bearer token and injects the resolved user into the
// context.
func Auth(resolver TokenResolver) echo.MiddlewareFunc {
	return authenticate(resolver, false)
}

// OptionalAuth resolves a bearer token when one is sent and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func OptionalAuth(resolver TokenResolver) echo.MiddlewareFunc {
	return authenticate(resolver, true)
}

func authenticate(resolver TokenResolver, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := resolver.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// UserFrom returns the user injected by Auth, or nil for anonymous requests.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ContextKeyUser).(*domain.User)
	return u
}
