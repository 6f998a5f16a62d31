package model

import (
	"time"

	"gorm.io/gorm"
)

// OrgType is the persisted organization type enum. The values are a storage
// contract shared with existing data and must not be renamed.
type OrgType string

const (
	OrgTypeClinic          OrgType = "clinica_veterinaria"
	OrgTypeFoodCompany     OrgType = "empresa_alimentos"
	OrgTypeMedicineCompany OrgType = "empresa_medicamentos"
	OrgTypeFarm            OrgType = "fazenda"
)

// Valid reports whether t is one of the persisted organization types.
func (t OrgType) Valid() bool {
	switch t {
	case OrgTypeClinic, OrgTypeFoodCompany, OrgTypeMedicineCompany, OrgTypeFarm:
		return true
	}
	return false
}

// Plan is the persisted billing plan enum.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is one of the persisted plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// LimitUnbounded is the sentinel used for enterprise plans. Limits are
// always non-negative; "unbounded" is just a count nobody reaches.
const LimitUnbounded = 1_000_000

// PlanLimits holds the per-resource limits a plan grants at creation time.
type PlanLimits struct {
	Animals  int
	Staff    int
	Products int
}

var planLimits = map[Plan]PlanLimits{
	PlanFree:       {Animals: 10, Staff: 2, Products: 5},
	PlanPro:        {Animals: 100, Staff: 10, Products: 50},
	PlanEnterprise: {Animals: LimitUnbounded, Staff: LimitUnbounded, Products: LimitUnbounded},
}

// LimitsFor returns the default limits assigned when an organization is
// created on the given plan. Limits are stored on the organization row and
// never re-derived afterwards, even if the plan changes.
func LimitsFor(p Plan) PlanLimits {
	return planLimits[p]
}

// Organization represents a tenant: the billing and isolation boundary that
// owns every scoped resource.
type Organization struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"type:varchar(200);not null"`
	Type          OrgType        `json:"type" gorm:"type:varchar(50);not null;index"`
	Plan          Plan           `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	LimitAnimals  int            `json:"limit_animals" gorm:"not null"`
	LimitStaff    int            `json:"limit_staff" gorm:"not null"`
	LimitProducts int            `json:"limit_products" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
