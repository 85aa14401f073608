package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths are reachable without a bearer token. Keys are echo route
// paths, so they are matched against c.Path().
var publicPaths = map[string]bool{
	"/health":        true,
	"/health/db":     true,
	"/metrics":       true,
	"/auth/login":    true,
	"/auth/register": true,
}

// AuthSkipper reports whether the request's route is public.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}
