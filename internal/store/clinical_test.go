package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
)

func clinicalFixture(t *testing.T) (*ClinicalStore, *model.User, *model.Animal, *model.Organization) {
	t.Helper()
	db := newTestDB(t)

	org := seedOrg(t, db, model.PlanPro)
	vet := seedUser(t, db, org, model.RoleVet)

	animal := model.Animal{OrgID: org.ID, Name: "Rex", Species: "dog"}
	require.NoError(t, db.Create(&animal).Error)

	return NewClinicalStore(db, testTimeout, nil), vet, &animal, org
}

func TestPrescriptionAttributedToActingVet(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	created, err := clinical.CreatePrescription(ctx, asPrincipal(vet), 0, PrescriptionInput{
		AnimalID:   animal.ID,
		Medication: "amoxicillin",
		Dosage:     "250mg",
	})
	require.NoError(t, err)
	require.Equal(t, vet.ID, created.VetID)
	require.Equal(t, animal.OrgID, created.OrgID)

	updated, err := clinical.UpdatePrescription(ctx, asPrincipal(vet), created.ID, PrescriptionInput{
		AnimalID:   animal.ID,
		Medication: "amoxicillin",
		Dosage:     "500mg",
	})
	require.NoError(t, err)
	require.Equal(t, "500mg", updated.Dosage)

	require.NoError(t, clinical.DeletePrescription(ctx, asPrincipal(vet), created.ID))
	list, err := clinical.ListPrescriptions(ctx, asPrincipal(vet), 0)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPrescriptionRequiresOwnOrgAnimal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	orgA := seedOrg(t, db, model.PlanPro)
	orgB := seedOrg(t, db, model.PlanPro)
	vetA := seedUser(t, db, orgA, model.RoleVet)

	foreign := model.Animal{OrgID: orgB.ID, Name: "Toro", Species: "cattle"}
	require.NoError(t, db.Create(&foreign).Error)

	clinical := NewClinicalStore(db, testTimeout, nil)

	_, err := clinical.CreatePrescription(ctx, asPrincipal(vetA), 0, PrescriptionInput{
		AnimalID:   foreign.ID,
		Medication: "x",
	})
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVaccinationDefaultsAppliedAt(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	before := time.Now()
	created, err := clinical.CreateVaccination(ctx, asPrincipal(vet), 0, VaccinationInput{
		AnimalID: animal.ID,
		Vaccine:  "rabies",
	})
	require.NoError(t, err)
	require.False(t, created.AppliedAt.Before(before.Add(-time.Second)))

	next := time.Now().AddDate(1, 0, 0)
	dated, err := clinical.CreateVaccination(ctx, asPrincipal(vet), 0, VaccinationInput{
		AnimalID:   animal.ID,
		Vaccine:    "parvo",
		AppliedAt:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		NextDoseAt: &next,
	})
	require.NoError(t, err)
	require.Equal(t, 2026, dated.AppliedAt.Year())
	require.NotNil(t, dated.NextDoseAt)

	list, err := clinical.ListVaccinations(ctx, asPrincipal(vet), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestDiagnosticLifecycle(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	created, err := clinical.CreateDiagnostic(ctx, asPrincipal(vet), 0, DiagnosticInput{
		AnimalID:  animal.ID,
		Condition: "dermatitis",
		Severity:  "mild",
	})
	require.NoError(t, err)
	require.Equal(t, vet.ID, created.VetID)

	_, err = clinical.CreateDiagnostic(ctx, asPrincipal(vet), 0, DiagnosticInput{AnimalID: animal.ID})
	require.True(t, apperr.Is(err, apperr.KindValidation), "condition is required")

	require.NoError(t, clinical.DeleteDiagnostic(ctx, asPrincipal(vet), created.ID))
}

func TestEventsWithAndWithoutAnimal(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	// an org-level event with no animal
	_, err := clinical.CreateEvent(ctx, asPrincipal(vet), 0, EventInput{Kind: "inspection"})
	require.NoError(t, err)

	// an animal-bound event
	_, err = clinical.CreateEvent(ctx, asPrincipal(vet), 0, EventInput{
		AnimalID: &animal.ID,
		Kind:     "weighing",
		Notes:    "32kg",
	})
	require.NoError(t, err)

	// a dangling animal reference is rejected
	missing := uint(9999)
	_, err = clinical.CreateEvent(ctx, asPrincipal(vet), 0, EventInput{AnimalID: &missing, Kind: "weighing"})
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := clinical.ListEvents(ctx, asPrincipal(vet), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestClinicalWritesDeniedToNonClinicalRoles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanPro)
	sales := seedUser(t, db, org, model.RoleSalesperson)

	animal := model.Animal{OrgID: org.ID, Name: "Rex", Species: "dog"}
	require.NoError(t, db.Create(&animal).Error)

	clinical := NewClinicalStore(db, testTimeout, nil)

	_, err := clinical.CreatePrescription(ctx, asPrincipal(sales), 0, PrescriptionInput{
		AnimalID: animal.ID, Medication: "x",
	})
	require.True(t, apperr.Is(err, apperr.KindPermission))

	_, err = clinical.CreateVaccination(ctx, asPrincipal(sales), 0, VaccinationInput{
		AnimalID: animal.ID, Vaccine: "rabies",
	})
	require.True(t, apperr.Is(err, apperr.KindPermission))

	// reads remain open inside the org
	_, err = clinical.ListPrescriptions(ctx, asPrincipal(sales), 0)
	require.NoError(t, err)
}

func TestOrgLevelEventRequiresExistingOrg(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	root := seedUser(t, db, nil, model.RoleSuperAdmin)
	clinical := NewClinicalStore(db, testTimeout, nil)

	// no animal anchors an org-level event, so the org itself is checked
	_, err := clinical.CreateEvent(ctx, asPrincipal(root), 0, EventInput{Kind: "audit"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = clinical.CreateEvent(ctx, asPrincipal(root), 999, EventInput{Kind: "audit"})
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	var count int64
	require.NoError(t, db.Model(&model.Event{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestVaccinationUpdate(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	created, err := clinical.CreateVaccination(ctx, asPrincipal(vet), 0, VaccinationInput{
		AnimalID:  animal.ID,
		Vaccine:   "rabies",
		AppliedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	next := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	updated, err := clinical.UpdateVaccination(ctx, asPrincipal(vet), created.ID, VaccinationInput{
		Vaccine:    "rabies booster",
		NextDoseAt: &next,
	})
	require.NoError(t, err)
	require.Equal(t, "rabies booster", updated.Vaccine)
	require.NotNil(t, updated.NextDoseAt)
	// a zero applied date keeps the recorded one
	require.Equal(t, 2026, updated.AppliedAt.Year())

	_, err = clinical.UpdateVaccination(ctx, asPrincipal(vet), created.ID, VaccinationInput{})
	require.True(t, apperr.Is(err, apperr.KindValidation), "vaccine is required")
}

func TestDiagnosticUpdate(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	created, err := clinical.CreateDiagnostic(ctx, asPrincipal(vet), 0, DiagnosticInput{
		AnimalID:  animal.ID,
		Condition: "dermatitis",
		Severity:  "mild",
	})
	require.NoError(t, err)

	updated, err := clinical.UpdateDiagnostic(ctx, asPrincipal(vet), created.ID, DiagnosticInput{
		Condition: "dermatitis",
		Severity:  "moderate",
		Notes:     "worsening",
	})
	require.NoError(t, err)
	require.Equal(t, "moderate", updated.Severity)
	// attribution is fixed at creation
	require.Equal(t, vet.ID, updated.VetID)
}

func TestEventUpdate(t *testing.T) {
	clinical, vet, animal, _ := clinicalFixture(t)
	ctx := context.Background()

	created, err := clinical.CreateEvent(ctx, asPrincipal(vet), 0, EventInput{
		AnimalID: &animal.ID,
		Kind:     "weighing",
		Notes:    "32kg",
	})
	require.NoError(t, err)

	updated, err := clinical.UpdateEvent(ctx, asPrincipal(vet), created.ID, EventInput{
		Kind:  "weighing",
		Notes: "33kg",
	})
	require.NoError(t, err)
	require.Equal(t, "33kg", updated.Notes)
	require.Equal(t, created.OccurredAt.Unix(), updated.OccurredAt.Unix())
}

func TestClinicalUpdatesDeniedToNonClinicalRoles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanPro)
	vet := seedUser(t, db, org, model.RoleVet)
	sales := seedUser(t, db, org, model.RoleSalesperson)

	animal := model.Animal{OrgID: org.ID, Name: "Rex", Species: "dog"}
	require.NoError(t, db.Create(&animal).Error)

	clinical := NewClinicalStore(db, testTimeout, nil)

	vac, err := clinical.CreateVaccination(ctx, asPrincipal(vet), 0, VaccinationInput{
		AnimalID: animal.ID, Vaccine: "rabies",
	})
	require.NoError(t, err)
	diag, err := clinical.CreateDiagnostic(ctx, asPrincipal(vet), 0, DiagnosticInput{
		AnimalID: animal.ID, Condition: "dermatitis",
	})
	require.NoError(t, err)

	_, err = clinical.UpdateVaccination(ctx, asPrincipal(sales), vac.ID, VaccinationInput{Vaccine: "x"})
	require.True(t, apperr.Is(err, apperr.KindPermission))
	_, err = clinical.UpdateDiagnostic(ctx, asPrincipal(sales), diag.ID, DiagnosticInput{Condition: "x"})
	require.True(t, apperr.Is(err, apperr.KindPermission))
}
