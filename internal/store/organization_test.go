package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
)

func TestOrganizationCreateIsSuperadminOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanFree)
	admin := seedUser(t, db, org, model.RoleAdmin)
	root := seedUser(t, db, nil, model.RoleSuperAdmin)

	orgs := NewOrganizationRegistry(db, testTimeout, nil)

	_, err := orgs.Create(ctx, asPrincipal(admin), "Rogue Org", model.OrgTypeFarm, model.PlanFree)
	require.True(t, apperr.Is(err, apperr.KindPermission))

	created, err := orgs.Create(ctx, asPrincipal(root), "New Farm", model.OrgTypeFarm, model.PlanEnterprise)
	require.NoError(t, err)
	require.Equal(t, model.LimitUnbounded, created.LimitAnimals)

	// invalid enum values are rejected before any write
	_, err = orgs.Create(ctx, asPrincipal(root), "Bad", model.OrgType("zoo"), model.PlanFree)
	require.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = orgs.Create(ctx, asPrincipal(root), "", model.OrgTypeFarm, model.PlanFree)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestOrganizationGetAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	orgA := seedOrg(t, db, model.PlanFree)
	orgB := seedOrg(t, db, model.PlanFree)
	adminA := seedUser(t, db, orgA, model.RoleAdmin)
	root := seedUser(t, db, nil, model.RoleSuperAdmin)

	orgs := NewOrganizationRegistry(db, testTimeout, nil)

	got, err := orgs.Get(ctx, asPrincipal(adminA), orgA.ID)
	require.NoError(t, err)
	require.Equal(t, orgA.ID, got.ID)

	// another tenant's organization is off limits
	_, err = orgs.Get(ctx, asPrincipal(adminA), orgB.ID)
	require.True(t, apperr.Is(err, apperr.KindPermission))

	_, err = orgs.Get(ctx, asPrincipal(adminA), 9999)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	// listing is a superadmin surface
	_, err = orgs.List(ctx, asPrincipal(adminA))
	require.True(t, apperr.Is(err, apperr.KindPermission))

	all, err := orgs.List(ctx, asPrincipal(root))
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestOrganizationUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanFree)
	admin := seedUser(t, db, org, model.RoleAdmin)
	vet := seedUser(t, db, org, model.RoleVet)

	orgs := NewOrganizationRegistry(db, testTimeout, nil)

	name := "Renamed Clinic"
	plan := model.PlanPro
	updated, err := orgs.Update(ctx, asPrincipal(admin), org.ID, OrgPatch{Name: &name, Plan: &plan})
	require.NoError(t, err)
	require.Equal(t, "Renamed Clinic", updated.Name)
	require.Equal(t, model.PlanPro, updated.Plan)
	// limits are stored, not derived: the plan change leaves them alone
	require.Equal(t, 10, updated.LimitAnimals)

	limit := 500
	updated, err = orgs.Update(ctx, asPrincipal(admin), org.ID, OrgPatch{LimitAnimals: &limit})
	require.NoError(t, err)
	require.Equal(t, 500, updated.LimitAnimals)

	negative := -1
	_, err = orgs.Update(ctx, asPrincipal(admin), org.ID, OrgPatch{LimitStaff: &negative})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	empty := ""
	_, err = orgs.Update(ctx, asPrincipal(admin), org.ID, OrgPatch{Name: &empty})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = orgs.Update(ctx, asPrincipal(vet), org.ID, OrgPatch{Name: &name})
	require.True(t, apperr.Is(err, apperr.KindPermission))
}

func TestOrganizationCascadeDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	org := seedOrg(t, db, model.PlanPro)
	admin := seedUser(t, db, org, model.RoleAdmin)
	root := seedUser(t, db, nil, model.RoleSuperAdmin)

	metrics := NewMetricsAggregator(db, testTimeout, nil)
	animals := NewAnimalStore(db, testTimeout, nil, metrics)
	products := NewProductStore(db, testTimeout, nil, metrics)
	orgs := NewOrganizationRegistry(db, testTimeout, nil)

	_, err := animals.Create(ctx, asPrincipal(admin), 0, AnimalInput{Name: "Rex", Species: "dog"})
	require.NoError(t, err)
	_, err = products.Create(ctx, asPrincipal(admin), 0, ProductInput{Name: "Feed", SKU: "F-1", Price: 10})
	require.NoError(t, err)

	// only superadmin deletes tenants, and only with confirmation
	err = orgs.Delete(ctx, asPrincipal(admin), org.ID, true)
	require.True(t, apperr.Is(err, apperr.KindPermission))
	err = orgs.Delete(ctx, asPrincipal(root), org.ID, false)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, orgs.Delete(ctx, asPrincipal(root), org.ID, true))

	// the organization and its resources are gone
	_, err = orgs.Get(ctx, asPrincipal(root), org.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	var count int64
	require.NoError(t, db.Model(&model.Animal{}).Where("org_id = ?", org.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&model.Product{}).Where("org_id = ?", org.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&model.UsageMetric{}).Where("org_id = ?", org.ID).Count(&count).Error)
	require.Zero(t, count)

	// member profiles survive, unassigned
	var member model.User
	require.NoError(t, db.First(&member, admin.ID).Error)
	require.Nil(t, member.OrgID)

	// deleting a missing organization reports not found
	err = orgs.Delete(ctx, asPrincipal(root), 9999, true)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}
