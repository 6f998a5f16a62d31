package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// OrganizationHandler serves the organization registry endpoints.
type OrganizationHandler struct {
	orgs *store.OrganizationRegistry
}

// NewOrganizationHandler wires the handler.
func NewOrganizationHandler(orgs *store.OrganizationRegistry) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs}
}

// Create registers a new organization (superadmin only).
func (h *OrganizationHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prometheus.OrgOperationCounter.WithLabelValues("create").Inc()

	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Plan string `json:"plan"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	if req.Plan == "" {
		req.Plan = string(model.PlanFree)
	}

	org, err := h.orgs.Create(c.Request().Context(), p, req.Name, model.OrgType(req.Type), model.Plan(req.Plan))
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("organization created",
		zap.Uint("org_id", org.ID),
		zap.String("name", org.Name))
	return c.JSON(http.StatusCreated, org)
}

// Get returns one organization.
func (h *OrganizationHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prometheus.OrgOperationCounter.WithLabelValues("access").Inc()

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	org, err := h.orgs.Get(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// List returns every organization (superadmin only).
func (h *OrganizationHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prometheus.OrgOperationCounter.WithLabelValues("list").Inc()

	orgs, err := h.orgs.List(c.Request().Context(), p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orgs)
}

// Update mutates name, type, plan and limits independently.
func (h *OrganizationHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prometheus.OrgOperationCounter.WithLabelValues("update").Inc()

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var patch store.OrgPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	org, err := h.orgs.Update(c.Request().Context(), p, id, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// Delete removes an organization and everything it owns. Requires the
// confirm query parameter; the operation is irreversible.
func (h *OrganizationHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prometheus.OrgOperationCounter.WithLabelValues("delete").Inc()

	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	confirm := c.QueryParam("confirm") == "true"

	if err := h.orgs.Delete(c.Request().Context(), p, id, confirm); err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("organization deleted", zap.Uint("org_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Organization deleted successfully"})
}
