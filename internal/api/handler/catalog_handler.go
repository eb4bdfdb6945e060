package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spendline/expense-approval/internal/core/domain"
)

type CatalogHandler struct {
	catalog domain.Catalog
}

func NewCatalogHandler(catalog domain.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Get handles GET /v1/catalog.
//
// @Summary      Accepted currencies and categories
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  catalogResponse
// @Router       /v1/catalog [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, catalogResponse{
		Currencies: h.catalog.Currencies,
		Categories: h.catalog.Categories,
	})
}
