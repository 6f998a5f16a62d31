package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
)

// OrganizationRegistry owns the tenant records.
type OrganizationRegistry struct {
	base
}

// NewOrganizationRegistry creates the registry.
func NewOrganizationRegistry(db *gorm.DB, timeout time.Duration, f *feed.Feed) *OrganizationRegistry {
	return &OrganizationRegistry{base: newBase(db, timeout, f)}
}

// createOrganization inserts a tenant row with limits taken from the plan
// table. Shared with the onboarding saga, which runs it inside its own
// transaction handle.
func createOrganization(tx *gorm.DB, name string, orgType model.OrgType, plan model.Plan) (*model.Organization, error) {
	if name == "" {
		return nil, apperr.Validation("organization name is required")
	}
	if !orgType.Valid() {
		return nil, apperr.Validation("invalid organization type %q", orgType)
	}
	if !plan.Valid() {
		return nil, apperr.Validation("invalid plan %q", plan)
	}

	limits := model.LimitsFor(plan)
	org := model.Organization{
		Name:          name,
		Type:          orgType,
		Plan:          plan,
		LimitAnimals:  limits.Animals,
		LimitStaff:    limits.Staff,
		LimitProducts: limits.Products,
	}
	if result := tx.Create(&org); result.Error != nil {
		return nil, dbError(result.Error, "organization")
	}
	return &org, nil
}

// Create registers a new organization. Only superadmin may create tenants
// outside the onboarding flow.
func (s *OrganizationRegistry) Create(ctx context.Context, p authz.Principal, name string, orgType model.OrgType, plan model.Plan) (*model.Organization, error) {
	if p.Role != model.RoleSuperAdmin {
		return nil, apperr.Permission("only superadmin may create organizations directly")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	org, err := createOrganization(s.db.WithContext(ctx), name, orgType, plan)
	if err != nil {
		return nil, err
	}
	s.feed.Publish(feed.Change{Table: "organizations", Op: feed.OpInsert, OrgID: org.ID, RowID: org.ID})
	return org, nil
}

// Get returns one organization, gate-checked against the principal.
func (s *OrganizationRegistry) Get(ctx context.Context, p authz.Principal, id uint) (*model.Organization, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var org model.Organization
	if result := s.db.WithContext(ctx).First(&org, id); result.Error != nil {
		return nil, dbError(result.Error, "organization")
	}
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindOrganization, OrgID: org.ID, ID: org.ID}); err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns every organization. Superadmin only.
func (s *OrganizationRegistry) List(ctx context.Context, p authz.Principal) ([]model.Organization, error) {
	if !p.Role.CanSeeAllOrgs() {
		return nil, apperr.Permission("listing organizations is restricted to superadmin")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var orgs []model.Organization
	if result := s.db.WithContext(ctx).Order("id").Find(&orgs); result.Error != nil {
		return nil, dbError(result.Error, "organization")
	}
	return orgs, nil
}

// OrgPatch carries the independently mutable organization fields. Changing
// the plan does not re-derive limits; they are stored, not computed.
type OrgPatch struct {
	Name          *string        `json:"name,omitempty"`
	Type          *model.OrgType `json:"type,omitempty"`
	Plan          *model.Plan    `json:"plan,omitempty"`
	LimitAnimals  *int           `json:"limit_animals,omitempty"`
	LimitStaff    *int           `json:"limit_staff,omitempty"`
	LimitProducts *int           `json:"limit_products,omitempty"`
}

func (patch *OrgPatch) validate() error {
	if patch.Name != nil && *patch.Name == "" {
		return apperr.Validation("organization name cannot be empty")
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return apperr.Validation("invalid organization type %q", *patch.Type)
	}
	if patch.Plan != nil && !patch.Plan.Valid() {
		return apperr.Validation("invalid plan %q", *patch.Plan)
	}
	for _, limit := range []*int{patch.LimitAnimals, patch.LimitStaff, patch.LimitProducts} {
		if limit != nil && *limit < 0 {
			return apperr.Validation("limits must be non-negative")
		}
	}
	return nil
}

// Update mutates name, type, plan and limits.
func (s *OrganizationRegistry) Update(ctx context.Context, p authz.Principal, id uint, patch OrgPatch) (*model.Organization, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var org model.Organization
	if result := s.db.WithContext(ctx).First(&org, id); result.Error != nil {
		return nil, dbError(result.Error, "organization")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindOrganization, OrgID: org.ID, ID: org.ID}); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		org.Name = *patch.Name
	}
	if patch.Type != nil {
		org.Type = *patch.Type
	}
	if patch.Plan != nil {
		org.Plan = *patch.Plan
	}
	if patch.LimitAnimals != nil {
		org.LimitAnimals = *patch.LimitAnimals
	}
	if patch.LimitStaff != nil {
		org.LimitStaff = *patch.LimitStaff
	}
	if patch.LimitProducts != nil {
		org.LimitProducts = *patch.LimitProducts
	}

	if result := s.db.WithContext(ctx).Save(&org); result.Error != nil {
		return nil, dbError(result.Error, "organization")
	}
	s.feed.Publish(feed.Change{Table: "organizations", Op: feed.OpUpdate, OrgID: org.ID, RowID: org.ID})
	return &org, nil
}

// scopedModels lists every organization-scoped resource removed when a
// tenant is deleted. Orphaned tenant rows would break the tenancy
// invariant, so deletion cascades.
var scopedModels = []interface{}{
	&model.Animal{},
	&model.Product{},
	&model.InventoryItem{},
	&model.Prescription{},
	&model.Vaccination{},
	&model.Event{},
	&model.Diagnostic{},
	&model.Formula{},
	&model.Integration{},
}

// Delete removes an organization and cascade-deletes everything it owns.
// Irreversible; the caller must pass confirm. Superadmin only. Member
// profiles are unassigned rather than deleted so their principals survive.
func (s *OrganizationRegistry) Delete(ctx context.Context, p authz.Principal, id uint, confirm bool) error {
	if p.Role != model.RoleSuperAdmin {
		return apperr.Permission("deleting organizations is restricted to superadmin")
	}
	if !confirm {
		return apperr.Validation("organization deletion requires confirmation")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org model.Organization
		if result := tx.First(&org, id); result.Error != nil {
			return dbError(result.Error, "organization")
		}

		for _, m := range scopedModels {
			if result := tx.Where("org_id = ?", id).Delete(m); result.Error != nil {
				return dbError(result.Error, "organization resources")
			}
		}
		if result := tx.Where("org_id = ?", id).Delete(&model.UsageMetric{}); result.Error != nil {
			return dbError(result.Error, "usage metrics")
		}
		if result := tx.Model(&model.User{}).Where("org_id = ?", id).Update("org_id", nil); result.Error != nil {
			return dbError(result.Error, "organization members")
		}
		if result := tx.Delete(&org); result.Error != nil {
			return dbError(result.Error, "organization")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish(feed.Change{Table: "organizations", Op: feed.OpDelete, OrgID: id, RowID: id})
	return nil
}
