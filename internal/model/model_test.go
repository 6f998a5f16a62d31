package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"superadmin", RoleSuperAdmin, true},
		{"admin", RoleAdmin, true},
		{"vet", RoleVet, true},
		{"vendedor", RoleSalesperson, true},
		{"gerente_produto", RoleProductManager, true},
		{"colaborador", RoleStaff, true},
		// legacy persisted values fold into the canonical enum
		{"veterinario", RoleVet, true},
		{"empresa", RoleStaff, true},
		{"fazendeiro", RoleStaff, true},
		{"", "", false},
		{"root", "", false},
		{"Admin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoleCapHelpers(t *testing.T) {
	require.True(t, RoleAdmin.CanManageTeam())
	require.True(t, RoleSuperAdmin.CanManageTeam())
	require.False(t, RoleVet.CanManageTeam())
	require.False(t, RoleStaff.CanManageTeam())

	require.True(t, RoleSuperAdmin.CanSeeAllOrgs())
	require.False(t, RoleAdmin.CanSeeAllOrgs())
}

func TestLimitsFor(t *testing.T) {
	free := LimitsFor(PlanFree)
	require.Equal(t, PlanLimits{Animals: 10, Staff: 2, Products: 5}, free)

	pro := LimitsFor(PlanPro)
	require.Equal(t, PlanLimits{Animals: 100, Staff: 10, Products: 50}, pro)

	ent := LimitsFor(PlanEnterprise)
	require.Equal(t, LimitUnbounded, ent.Animals)
	require.Equal(t, LimitUnbounded, ent.Staff)
	require.Equal(t, LimitUnbounded, ent.Products)
}

func TestOrgTypeAndPlanValid(t *testing.T) {
	for _, v := range []OrgType{OrgTypeClinic, OrgTypeFoodCompany, OrgTypeMedicineCompany, OrgTypeFarm} {
		require.True(t, v.Valid())
	}
	require.False(t, OrgType("petshop").Valid())
	require.False(t, OrgType("").Valid())

	for _, p := range []Plan{PlanFree, PlanPro, PlanEnterprise} {
		require.True(t, p.Valid())
	}
	require.False(t, Plan("trial").Valid())
}

func TestUserInOrg(t *testing.T) {
	org := uint(4)
	assigned := User{OrgID: &org}
	require.True(t, assigned.InOrg(4))
	require.False(t, assigned.InOrg(5))

	var unassigned User
	require.False(t, unassigned.InOrg(4))
}
