package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
)

// CatalogHandler serves formulas and integrations.
type CatalogHandler struct {
	catalog *store.CatalogStore
}

// NewCatalogHandler wires the handler.
func NewCatalogHandler(catalog *store.CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListFormulas(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := h.catalog.ListFormulas(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *CatalogHandler) CreateFormula(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req store.FormulaInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	row, err := h.catalog.CreateFormula(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *CatalogHandler) UpdateFormula(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req store.FormulaInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	row, err := h.catalog.UpdateFormula(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *CatalogHandler) DeleteFormula(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalog.DeleteFormula(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Formula deleted successfully"})
}

func (h *CatalogHandler) ListIntegrations(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := h.catalog.ListIntegrations(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *CatalogHandler) CreateIntegration(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req store.IntegrationInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	row, err := h.catalog.CreateIntegration(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *CatalogHandler) UpdateIntegration(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req store.IntegrationInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	row, err := h.catalog.UpdateIntegration(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *CatalogHandler) DeleteIntegration(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalog.DeleteIntegration(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Integration deleted successfully"})
}
