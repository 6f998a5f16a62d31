package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
)

// ProductHandler serves the product and inventory endpoints.
type ProductHandler struct {
	products *store.ProductStore
}

// NewProductHandler wires the handler.
func NewProductHandler(products *store.ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

// List returns the products of the caller's organization.
func (h *ProductHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	products, err := h.products.List(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// Get returns one product.
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	product, err := h.products.Get(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Create adds a product, counted against the plan limit.
func (h *ProductHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req store.ProductInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	product, err := h.products.Create(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("product created",
		zap.Uint("product_id", product.ID),
		zap.Uint("org_id", product.OrgID),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// Update mutates a product.
func (h *ProductHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var req store.ProductInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	product, err := h.products.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.products.Delete(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// ListInventory returns the stock rows of the caller's organization.
func (h *ProductHandler) ListInventory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	items, err := h.products.ListInventory(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateInventory adds a stock row.
func (h *ProductHandler) CreateInventory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req store.InventoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	item, err := h.products.CreateInventory(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateInventory mutates a stock row.
func (h *ProductHandler) UpdateInventory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var req store.InventoryInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	item, err := h.products.UpdateInventory(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteInventory removes a stock row.
func (h *ProductHandler) DeleteInventory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.products.DeleteInventory(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Inventory item deleted successfully"})
}
