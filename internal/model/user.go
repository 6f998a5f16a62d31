package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the single closed role enum used everywhere: persisted column,
// JWT claim and authorization gate. Legacy rows carried a second, UI-only
// role set; ParseRole folds those aliases into this one.
type Role string

const (
	RoleSuperAdmin     Role = "superadmin"
	RoleAdmin          Role = "admin"
	RoleVet            Role = "vet"
	RoleSalesperson    Role = "vendedor"
	RoleProductManager Role = "gerente_produto"
	RoleStaff          Role = "colaborador"
)

// legacy persisted values that predate the reconciled enum
var roleAliases = map[string]Role{
	"veterinario": RoleVet,
	"empresa":     RoleStaff,
	"fazendeiro":  RoleStaff,
}

// ParseRole normalizes a stored or submitted role value. The second return
// is false when the value belongs to neither the canonical enum nor the
// legacy alias set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if r.Valid() {
		return r, true
	}
	if alias, ok := roleAliases[s]; ok {
		return alias, true
	}
	return "", false
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleVet, RoleSalesperson, RoleProductManager, RoleStaff:
		return true
	}
	return false
}

// CanManageTeam reports whether the role may create, mutate or remove team
// members.
func (r Role) CanManageTeam() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanSeeAllOrgs reports whether the role crosses the tenancy boundary.
func (r Role) CanSeeAllOrgs() bool {
	return r == RoleSuperAdmin
}

// User represents the profile row for an authenticated principal. A user
// with a nil OrgID is unassigned and has no organization-scoped access.
type User struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	AuthPrincipalID string         `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name            string         `json:"name" gorm:"type:varchar(200);not null"`
	Email           string         `json:"email" gorm:"type:varchar(200);uniqueIndex;not null"`
	Phone           string         `json:"phone,omitempty" gorm:"type:varchar(40)"`
	Role            Role           `json:"role" gorm:"type:varchar(30);not null;default:'colaborador'"`
	OrgID           *uint          `json:"org_id,omitempty" gorm:"index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// InOrg reports whether the user belongs to the given organization.
func (u *User) InOrg(orgID uint) bool {
	return u.OrgID != nil && *u.OrgID == orgID
}
