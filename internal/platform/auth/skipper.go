package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass session resolution.
var publicPaths = map[string]bool{
	"/health":            true,
	"/api/v1/extensions": true,
}

// Skipper reports whether the matched route needs no session.
func Skipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}
