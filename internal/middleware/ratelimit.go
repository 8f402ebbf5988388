package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimit applies a token bucket per signed-in user, or per client IP
// while signed out. It reads the user from s, since it runs before any
// route-level RequireSession. Preflight and health probes are never
// limited.
func RateLimit(rps float64, burst int, s SessionReader) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 10 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return c.Request().Method == http.MethodOptions || p == "/health" || p == "/ready"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if s != nil && s.IsAuthenticated() {
				if uid := s.UserID(); uid != "" {
					return "uid:" + uid, nil
				}
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set("Retry-After", "1")
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
		},
	})
}

// AuthRateLimit is the stricter per-IP limit for sign-in and sign-up.
func AuthRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(1),
		Burst:     5,
		ExpiresIn: 10 * time.Minute,
	}))
}
