package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dentica/dentica/internal/platform/apperr"
)

// Clinic roles.
const (
	RolePatient    = "patient"
	RoleDentist    = "dentist"
	RoleSecretary  = "secretary"
	RoleSuperAdmin = "super_admin"
)

// RequireRole returns middleware that rejects the request unless the caller
// holds one of the given roles. super_admin passes every gate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == "" {
				return apperr.Unauthorized("no authenticated session")
			}
			if role == RoleSuperAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return apperr.Forbidden("required role: %s", strings.Join(roles, " or "))
		}
	}
}
