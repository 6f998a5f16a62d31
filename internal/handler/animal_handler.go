package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
)

// AnimalHandler serves the animal CRUD endpoints.
type AnimalHandler struct {
	animals *store.AnimalStore
}

// NewAnimalHandler wires the handler.
func NewAnimalHandler(animals *store.AnimalStore) *AnimalHandler {
	return &AnimalHandler{animals: animals}
}

// List returns the animals of the caller's organization. Superadmin may
// pass ?org_id= or omit it to list across organizations.
func (h *AnimalHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	animals, err := h.animals.List(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, animals)
}

// Get returns one animal.
func (h *AnimalHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	animal, err := h.animals.Get(c.Request().Context(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, animal)
}

// Create adds an animal, counted against the plan limit.
func (h *AnimalHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req store.AnimalInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	animal, err := h.animals.Create(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("animal created",
		zap.Uint("animal_id", animal.ID),
		zap.Uint("org_id", animal.OrgID),
		zap.String("name", animal.Name))
	return c.JSON(http.StatusCreated, animal)
}

// Update mutates an animal.
func (h *AnimalHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	var req store.AnimalInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}

	animal, err := h.animals.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, animal)
}

// Delete removes an animal.
func (h *AnimalHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.animals.Delete(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Animal deleted successfully"})
}
