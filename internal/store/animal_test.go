package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
)

func TestAnimalTenancyIsolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	orgA := seedOrg(t, db, model.PlanPro)
	orgB := seedOrg(t, db, model.PlanPro)
	adminA := seedUser(t, db, orgA, model.RoleAdmin)
	adminB := seedUser(t, db, orgB, model.RoleAdmin)

	metrics := NewMetricsAggregator(db, testTimeout, nil)
	animals := NewAnimalStore(db, testTimeout, nil, metrics)

	created, err := animals.Create(ctx, asPrincipal(adminA), 0, AnimalInput{Name: "Rex", Species: "dog"})
	require.NoError(t, err)
	require.Equal(t, orgA.ID, created.OrgID)

	// a different tenant cannot see the row, not even by id
	_, err = animals.Get(ctx, asPrincipal(adminB), created.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = animals.Update(ctx, asPrincipal(adminB), created.ID, AnimalInput{Name: "Stolen", Species: "dog"})
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	err = animals.Delete(ctx, asPrincipal(adminB), created.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	listB, err := animals.List(ctx, asPrincipal(adminB), 0)
	require.NoError(t, err)
	require.Empty(t, listB)

	listA, err := animals.List(ctx, asPrincipal(adminA), 0)
	require.NoError(t, err)
	require.Len(t, listA, 1)
}

func TestAnimalSuperadminCrossesOrgs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	orgA := seedOrg(t, db, model.PlanPro)
	orgB := seedOrg(t, db, model.PlanPro)
	adminA := seedUser(t, db, orgA, model.RoleAdmin)
	adminB := seedUser(t, db, orgB, model.RoleAdmin)
	root := seedUser(t, db, nil, model.RoleSuperAdmin)

	metrics := NewMetricsAggregator(db, testTimeout, nil)
	animals := NewAnimalStore(db, testTimeout, nil, metrics)

	_, err := animals.Create(ctx, asPrincipal(adminA), 0, AnimalInput{Name: "Mimi", Species: "cat"})
	require.NoError(t, err)
	_, err = animals.Create(ctx, asPrincipal(adminB), 0, AnimalInput{Name: "Toro", Species: "cattle"})
	require.NoError(t, err)

	all, err := animals.List(ctx, asPrincipal(root), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyB, err := animals.List(ctx, asPrincipal(root), orgB.ID)
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
	require.Equal(t, orgB.ID, onlyB[0].OrgID)

	// superadmin creates on behalf of a tenant
	created, err := animals.Create(ctx, asPrincipal(root), orgA.ID, AnimalInput{Name: "Luna", Species: "dog"})
	require.NoError(t, err)
	require.Equal(t, orgA.ID, created.OrgID)
}

func TestAnimalRoleDenials(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanPro)
	staff := seedUser(t, db, org, model.RoleStaff)
	sales := seedUser(t, db, org, model.RoleSalesperson)

	metrics := NewMetricsAggregator(db, testTimeout, nil)
	animals := NewAnimalStore(db, testTimeout, nil, metrics)

	created, err := animals.Create(ctx, asPrincipal(staff), 0, AnimalInput{Name: "Bela", Species: "dog"})
	require.NoError(t, err)

	// staff may update but never delete
	_, err = animals.Update(ctx, asPrincipal(staff), created.ID, AnimalInput{Name: "Bela II", Species: "dog"})
	require.NoError(t, err)
	err = animals.Delete(ctx, asPrincipal(staff), created.ID)
	require.True(t, apperr.Is(err, apperr.KindPermission))

	// salespeople do not touch animals at all
	_, err = animals.Create(ctx, asPrincipal(sales), 0, AnimalInput{Name: "Nope", Species: "dog"})
	require.True(t, apperr.Is(err, apperr.KindPermission))
}

func TestAnimalPlanLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanFree) // 10 animals
	admin := seedUser(t, db, org, model.RoleAdmin)

	metrics := NewMetricsAggregator(db, testTimeout, nil)
	animals := NewAnimalStore(db, testTimeout, nil, metrics)

	for i := 0; i < 10; i++ {
		_, err := animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Name: "a", Species: "dog"})
		require.NoError(t, err)
	}

	_, err := animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Name: "one too many", Species: "dog"})
	require.True(t, apperr.Is(err, apperr.KindLimitExceeded))

	var count int64
	require.NoError(t, db.Model(&model.Animal{}).Where("org_id = ?", org.ID).Count(&count).Error)
	require.EqualValues(t, 10, count)

	// deleting one frees a slot
	var victim model.Animal
	require.NoError(t, db.Where("org_id = ?", org.ID).First(&victim).Error)
	require.NoError(t, animals.Delete(ctx, asPrincipal(admin), victim.ID))

	_, err = animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Name: "replacement", Species: "dog"})
	require.NoError(t, err)
}

func TestAnimalInputValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanPro)
	admin := seedUser(t, db, org, model.RoleAdmin)

	metrics := NewMetricsAggregator(db, testTimeout, nil)
	animals := NewAnimalStore(db, testTimeout, nil, metrics)

	_, err := animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Species: "dog"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Name: "Rex"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Name: "Rex", Species: "dog", WeightKg: -1})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
