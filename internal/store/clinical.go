package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// ClinicalStore owns prescriptions, vaccinations, diagnostics and timeline
// events. None of these count against plan limits.
type ClinicalStore struct {
	base
}

// NewClinicalStore creates the store.
func NewClinicalStore(db *gorm.DB, timeout time.Duration, f *feed.Feed) *ClinicalStore {
	return &ClinicalStore{base: newBase(db, timeout, f)}
}

// animalInOrg verifies the referenced animal belongs to the organization.
func (s *ClinicalStore) animalInOrg(ctx context.Context, orgID, animalID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Animal{}).
		Where("org_id = ? AND id = ?", orgID, animalID).Count(&count).Error; err != nil {
		return dbError(err, "animal")
	}
	if count == 0 {
		return apperr.NotFound("animal not found")
	}
	return nil
}

// PrescriptionInput carries the writable prescription fields. The vet is
// always the acting principal.
type PrescriptionInput struct {
	AnimalID     uint   `json:"animal_id"`
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// ListPrescriptions returns the prescriptions visible to the principal.
func (s *ClinicalStore) ListPrescriptions(ctx context.Context, p authz.Principal, orgID uint) ([]model.Prescription, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindPrescription, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rows []model.Prescription
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&rows); result.Error != nil {
		return nil, dbError(result.Error, "prescription")
	}
	return rows, nil
}

// CreatePrescription records a prescription issued by the principal.
func (s *ClinicalStore) CreatePrescription(ctx context.Context, p authz.Principal, orgID uint, in PrescriptionInput) (*model.Prescription, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindPrescription, OrgID: org}); err != nil {
		return nil, err
	}
	if in.Medication == "" {
		return nil, apperr.Validation("medication is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}
	if err := s.animalInOrg(ctx, org, in.AnimalID); err != nil {
		return nil, err
	}

	row := model.Prescription{
		OrgID:        org,
		AnimalID:     in.AnimalID,
		VetID:        p.UserID,
		Medication:   in.Medication,
		Dosage:       in.Dosage,
		Instructions: in.Instructions,
	}
	if result := s.db.WithContext(ctx).Create(&row); result.Error != nil {
		return nil, dbError(result.Error, "prescription")
	}

	prometheus.RecordResourceOperation("prescription", "create")
	s.feed.Publish(feed.Change{Table: "prescriptions", Op: feed.OpInsert, OrgID: org, RowID: row.ID})
	return &row, nil
}

// UpdatePrescription mutates a prescription in place.
func (s *ClinicalStore) UpdatePrescription(ctx context.Context, p authz.Principal, id uint, in PrescriptionInput) (*model.Prescription, error) {
	if in.Medication == "" {
		return nil, apperr.Validation("medication is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Prescription
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return nil, dbError(result.Error, "prescription")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindPrescription, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return nil, err
	}

	row.Medication = in.Medication
	row.Dosage = in.Dosage
	row.Instructions = in.Instructions
	if result := s.db.WithContext(ctx).Save(&row); result.Error != nil {
		return nil, dbError(result.Error, "prescription")
	}

	prometheus.RecordResourceOperation("prescription", "update")
	s.feed.Publish(feed.Change{Table: "prescriptions", Op: feed.OpUpdate, OrgID: row.OrgID, RowID: row.ID})
	return &row, nil
}

// DeletePrescription removes a prescription.
func (s *ClinicalStore) DeletePrescription(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Prescription
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return dbError(result.Error, "prescription")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindPrescription, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return err
	}
	if result := s.db.WithContext(ctx).Delete(&row); result.Error != nil {
		return dbError(result.Error, "prescription")
	}

	prometheus.RecordResourceOperation("prescription", "delete")
	s.feed.Publish(feed.Change{Table: "prescriptions", Op: feed.OpDelete, OrgID: row.OrgID, RowID: row.ID})
	return nil
}

// VaccinationInput carries the writable vaccination fields.
type VaccinationInput struct {
	AnimalID   uint       `json:"animal_id"`
	Vaccine    string     `json:"vaccine"`
	AppliedAt  time.Time  `json:"applied_at"`
	NextDoseAt *time.Time `json:"next_dose_at,omitempty"`
}

// ListVaccinations returns the vaccinations visible to the principal.
func (s *ClinicalStore) ListVaccinations(ctx context.Context, p authz.Principal, orgID uint) ([]model.Vaccination, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindVaccination, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rows []model.Vaccination
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&rows); result.Error != nil {
		return nil, dbError(result.Error, "vaccination")
	}
	return rows, nil
}

// CreateVaccination records an applied dose.
func (s *ClinicalStore) CreateVaccination(ctx context.Context, p authz.Principal, orgID uint, in VaccinationInput) (*model.Vaccination, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindVaccination, OrgID: org}); err != nil {
		return nil, err
	}
	if in.Vaccine == "" {
		return nil, apperr.Validation("vaccine is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}
	if err := s.animalInOrg(ctx, org, in.AnimalID); err != nil {
		return nil, err
	}

	applied := in.AppliedAt
	if applied.IsZero() {
		applied = time.Now()
	}
	row := model.Vaccination{
		OrgID:      org,
		AnimalID:   in.AnimalID,
		Vaccine:    in.Vaccine,
		AppliedAt:  applied,
		NextDoseAt: in.NextDoseAt,
	}
	if result := s.db.WithContext(ctx).Create(&row); result.Error != nil {
		return nil, dbError(result.Error, "vaccination")
	}

	prometheus.RecordResourceOperation("vaccination", "create")
	s.feed.Publish(feed.Change{Table: "vaccinations", Op: feed.OpInsert, OrgID: org, RowID: row.ID})
	return &row, nil
}

// UpdateVaccination mutates a vaccination record in place. The animal
// binding is fixed at creation.
func (s *ClinicalStore) UpdateVaccination(ctx context.Context, p authz.Principal, id uint, in VaccinationInput) (*model.Vaccination, error) {
	if in.Vaccine == "" {
		return nil, apperr.Validation("vaccine is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Vaccination
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return nil, dbError(result.Error, "vaccination")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindVaccination, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return nil, err
	}

	row.Vaccine = in.Vaccine
	if !in.AppliedAt.IsZero() {
		row.AppliedAt = in.AppliedAt
	}
	row.NextDoseAt = in.NextDoseAt
	if result := s.db.WithContext(ctx).Save(&row); result.Error != nil {
		return nil, dbError(result.Error, "vaccination")
	}

	prometheus.RecordResourceOperation("vaccination", "update")
	s.feed.Publish(feed.Change{Table: "vaccinations", Op: feed.OpUpdate, OrgID: row.OrgID, RowID: row.ID})
	return &row, nil
}

// DeleteVaccination removes a vaccination record.
func (s *ClinicalStore) DeleteVaccination(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Vaccination
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return dbError(result.Error, "vaccination")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindVaccination, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return err
	}
	if result := s.db.WithContext(ctx).Delete(&row); result.Error != nil {
		return dbError(result.Error, "vaccination")
	}

	prometheus.RecordResourceOperation("vaccination", "delete")
	s.feed.Publish(feed.Change{Table: "vaccinations", Op: feed.OpDelete, OrgID: row.OrgID, RowID: row.ID})
	return nil
}

// DiagnosticInput carries the writable diagnostic fields.
type DiagnosticInput struct {
	AnimalID  uint   `json:"animal_id"`
	Condition string `json:"condition"`
	Severity  string `json:"severity,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// ListDiagnostics returns the diagnostics visible to the principal.
func (s *ClinicalStore) ListDiagnostics(ctx context.Context, p authz.Principal, orgID uint) ([]model.Diagnostic, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindDiagnostic, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rows []model.Diagnostic
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&rows); result.Error != nil {
		return nil, dbError(result.Error, "diagnostic")
	}
	return rows, nil
}

// CreateDiagnostic records a diagnosed condition.
func (s *ClinicalStore) CreateDiagnostic(ctx context.Context, p authz.Principal, orgID uint, in DiagnosticInput) (*model.Diagnostic, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindDiagnostic, OrgID: org}); err != nil {
		return nil, err
	}
	if in.Condition == "" {
		return nil, apperr.Validation("condition is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}
	if err := s.animalInOrg(ctx, org, in.AnimalID); err != nil {
		return nil, err
	}

	row := model.Diagnostic{
		OrgID:     org,
		AnimalID:  in.AnimalID,
		VetID:     p.UserID,
		Condition: in.Condition,
		Severity:  in.Severity,
		Notes:     in.Notes,
	}
	if result := s.db.WithContext(ctx).Create(&row); result.Error != nil {
		return nil, dbError(result.Error, "diagnostic")
	}

	prometheus.RecordResourceOperation("diagnostic", "create")
	s.feed.Publish(feed.Change{Table: "diagnostics", Op: feed.OpInsert, OrgID: org, RowID: row.ID})
	return &row, nil
}

// UpdateDiagnostic mutates a diagnostic record in place. The animal
// binding and the attributed vet are fixed at creation.
func (s *ClinicalStore) UpdateDiagnostic(ctx context.Context, p authz.Principal, id uint, in DiagnosticInput) (*model.Diagnostic, error) {
	if in.Condition == "" {
		return nil, apperr.Validation("condition is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Diagnostic
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return nil, dbError(result.Error, "diagnostic")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindDiagnostic, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return nil, err
	}

	row.Condition = in.Condition
	row.Severity = in.Severity
	row.Notes = in.Notes
	if result := s.db.WithContext(ctx).Save(&row); result.Error != nil {
		return nil, dbError(result.Error, "diagnostic")
	}

	prometheus.RecordResourceOperation("diagnostic", "update")
	s.feed.Publish(feed.Change{Table: "diagnostics", Op: feed.OpUpdate, OrgID: row.OrgID, RowID: row.ID})
	return &row, nil
}

// DeleteDiagnostic removes a diagnostic record.
func (s *ClinicalStore) DeleteDiagnostic(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Diagnostic
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return dbError(result.Error, "diagnostic")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindDiagnostic, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return err
	}
	if result := s.db.WithContext(ctx).Delete(&row); result.Error != nil {
		return dbError(result.Error, "diagnostic")
	}

	prometheus.RecordResourceOperation("diagnostic", "delete")
	s.feed.Publish(feed.Change{Table: "diagnostics", Op: feed.OpDelete, OrgID: row.OrgID, RowID: row.ID})
	return nil
}

// EventInput carries the writable event fields. AnimalID is optional; farm
// events often apply to the whole herd.
type EventInput struct {
	AnimalID   *uint     `json:"animal_id,omitempty"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Notes      string    `json:"notes,omitempty"`
}

// ListEvents returns the events visible to the principal.
func (s *ClinicalStore) ListEvents(ctx context.Context, p authz.Principal, orgID uint) ([]model.Event, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindEvent, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rows []model.Event
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("occurred_at desc").Find(&rows); result.Error != nil {
		return nil, dbError(result.Error, "event")
	}
	return rows, nil
}

// CreateEvent records a timeline event.
func (s *ClinicalStore) CreateEvent(ctx context.Context, p authz.Principal, orgID uint, in EventInput) (*model.Event, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindEvent, OrgID: org}); err != nil {
		return nil, err
	}
	if in.Kind == "" {
		return nil, apperr.Validation("event kind is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}
	if in.AnimalID != nil {
		if err := s.animalInOrg(ctx, org, *in.AnimalID); err != nil {
			return nil, err
		}
	}

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	row := model.Event{
		OrgID:      org,
		AnimalID:   in.AnimalID,
		Kind:       in.Kind,
		OccurredAt: occurred,
		Notes:      in.Notes,
	}
	if result := s.db.WithContext(ctx).Create(&row); result.Error != nil {
		return nil, dbError(result.Error, "event")
	}

	prometheus.RecordResourceOperation("event", "create")
	s.feed.Publish(feed.Change{Table: "events", Op: feed.OpInsert, OrgID: org, RowID: row.ID})
	return &row, nil
}

// UpdateEvent mutates a timeline event in place. The animal binding is
// fixed at creation.
func (s *ClinicalStore) UpdateEvent(ctx context.Context, p authz.Principal, id uint, in EventInput) (*model.Event, error) {
	if in.Kind == "" {
		return nil, apperr.Validation("event kind is required")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Event
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return nil, dbError(result.Error, "event")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindEvent, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return nil, err
	}

	row.Kind = in.Kind
	if !in.OccurredAt.IsZero() {
		row.OccurredAt = in.OccurredAt
	}
	row.Notes = in.Notes
	if result := s.db.WithContext(ctx).Save(&row); result.Error != nil {
		return nil, dbError(result.Error, "event")
	}

	prometheus.RecordResourceOperation("event", "update")
	s.feed.Publish(feed.Change{Table: "events", Op: feed.OpUpdate, OrgID: row.OrgID, RowID: row.ID})
	return &row, nil
}

// DeleteEvent removes a timeline event.
func (s *ClinicalStore) DeleteEvent(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Event
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return dbError(result.Error, "event")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindEvent, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return err
	}
	if result := s.db.WithContext(ctx).Delete(&row); result.Error != nil {
		return dbError(result.Error, "event")
	}

	prometheus.RecordResourceOperation("event", "delete")
	s.feed.Publish(feed.Change{Table: "events", Op: feed.OpDelete, OrgID: row.OrgID, RowID: row.ID})
	return nil
}
