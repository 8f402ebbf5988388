package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionReader is the part of *auth.Session the guard reads.
type SessionReader interface {
	IsAuthenticated() bool
	UserID() string
}

// RequireSession rejects requests while signed out and exposes the
// signed-in user's id as "user_id".
// Usage: route(..., RequireSession(session))
func RequireSession(s SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.IsAuthenticated() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sign in required"})
			}
			uid := s.UserID()
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session has no user"})
			}
			c.Set("user_id", uid)
			return next(c)
		}
	}
}
