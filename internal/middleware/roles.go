package middleware

import (
	"net/http"

	"github.com/chiarivoices/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// RequireRole restricts a route group to users whose JWT role claim is one of
// the allowed roles. It must run after JWTAuthMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*models.JwtCustomClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !allowed[claims.Role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role for this operation")
			}
			return next(c)
		}
	}
}
