package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/core/domain"
)

// RBAC enforces role-based access control on the resolved principal. It is a
// fast-fail in front of the services, which check capabilities again.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if _, ok := allowed[p.Role]; !ok {
				return fmt.Errorf("%w: role %s", domain.ErrNotAuthorized, p.Role)
			}
			return next(c)
		}
	}
}
