package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
)

// ClinicalHandler serves prescriptions, vaccinations, diagnostics and
// timeline events.
type ClinicalHandler struct {
	clinical *store.ClinicalStore
}

// NewClinicalHandler wires the handler.
func NewClinicalHandler(clinical *store.ClinicalStore) *ClinicalHandler {
	return &ClinicalHandler{clinical: clinical}
}

func (h *ClinicalHandler) ListPrescriptions(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := h.clinical.ListPrescriptions(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *ClinicalHandler) CreatePrescription(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req store.PrescriptionInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	row, err := h.clinical.CreatePrescription(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *ClinicalHandler) UpdatePrescription(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req store.PrescriptionInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	row, err := h.clinical.UpdatePrescription(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *ClinicalHandler) DeletePrescription(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.clinical.DeletePrescription(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Prescription deleted successfully"})
}

func (h *ClinicalHandler) ListVaccinations(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := h.clinical.ListVaccinations(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *ClinicalHandler) CreateVaccination(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req store.VaccinationInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	row, err := h.clinical.CreateVaccination(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *ClinicalHandler) UpdateVaccination(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req store.VaccinationInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	row, err := h.clinical.UpdateVaccination(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *ClinicalHandler) DeleteVaccination(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.clinical.DeleteVaccination(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vaccination deleted successfully"})
}

func (h *ClinicalHandler) ListDiagnostics(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := h.clinical.ListDiagnostics(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *ClinicalHandler) CreateDiagnostic(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req store.DiagnosticInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	row, err := h.clinical.CreateDiagnostic(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *ClinicalHandler) UpdateDiagnostic(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req store.DiagnosticInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	row, err := h.clinical.UpdateDiagnostic(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *ClinicalHandler) DeleteDiagnostic(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.clinical.DeleteDiagnostic(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Diagnostic deleted successfully"})
}

func (h *ClinicalHandler) ListEvents(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	rows, err := h.clinical.ListEvents(c.Request().Context(), p, orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *ClinicalHandler) CreateEvent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req store.EventInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	orgID, err := queryOrgID(c)
	if err != nil {
		return fail(c, err)
	}
	row, err := h.clinical.CreateEvent(c.Request().Context(), p, orgID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *ClinicalHandler) UpdateEvent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req store.EventInput
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.Validation("invalid request"))
	}
	row, err := h.clinical.UpdateEvent(c.Request().Context(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *ClinicalHandler) DeleteEvent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.clinical.DeleteEvent(c.Request().Context(), p, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}
