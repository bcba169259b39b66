package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SuperuserRole passes every role check, as it does inside OpenMRS.
const SuperuserRole = "System Developer"

// RequireRole rejects sessions that carry none of roles with 403. With no
// roles configured every session passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if len(roles) == 0 {
			return next
		}
		return func(c echo.Context) error {
			s, err := RequireSession(c)
			if err != nil {
				return err
			}
			if s.HasRole(SuperuserRole) {
				return next(c)
			}
			for _, required := range roles {
				if s.HasRole(required) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
