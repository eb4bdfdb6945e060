package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/api/middleware"
	"github.com/spendline/expense-approval/internal/core/domain"
)

// ctxPrincipal returns the principal resolved by the Auth middleware. A
// principal without a tenant is structurally valid but unusable.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.UserID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	if p.CompanyID == "" {
		return domain.Principal{}, domain.ErrUnknownPrincipal
	}
	return p, nil
}

// bindAndValidate binds the request into req and runs the registered
// validator. Validation failures are 422s.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
