package auth

import (
	"github.com/labstack/echo/v4"
)

// Require returns middleware that evaluates g before the handler runs.
func Require(g Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := Check(c, g); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireRole is Require(Roles(roles...)), for route groups gated by role alone.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return Require(Roles(roles...))
}
