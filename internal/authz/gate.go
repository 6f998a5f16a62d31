// Package authz implements the authorization gate: a pure decision function
// over (principal, action, resource) evaluated on every access path before a
// store is touched.
package authz

import "github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"

// Action is an operation a principal attempts on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind identifies the resource category a capability applies to.
type Kind string

const (
	KindOrganization Kind = "organization"
	KindTeamMember   Kind = "team_member"
	KindAnimal       Kind = "animal"
	KindProduct      Kind = "product"
	KindInventory    Kind = "inventory"
	KindPrescription Kind = "prescription"
	KindVaccination  Kind = "vaccination"
	KindEvent        Kind = "event"
	KindDiagnostic   Kind = "diagnostic"
	KindFormula      Kind = "formula"
	KindIntegration  Kind = "integration"
)

// Principal is the authenticated caller. OrgID is nil for users not yet
// assigned to an organization.
type Principal struct {
	UserID uint
	Role   model.Role
	OrgID  *uint
}

// Resource describes the target of an access attempt. For creates, ID is
// zero and OrgID is the organization the row would be created in. For team
// member resources, ID is the target user's id.
type Resource struct {
	Kind  Kind
	OrgID uint
	ID    uint
}

// Decision is the gate outcome. Reason is stable and machine-readable; it
// feeds the denial metrics and log lines, never user-facing messages.
type Decision struct {
	Allow  bool
	Reason string
}

var allow = Decision{Allow: true, Reason: "allowed"}

func deny(reason string) Decision {
	return Decision{Allow: false, Reason: reason}
}

// capability matrix: role -> kind -> permitted actions. Superadmin and the
// tenancy boundary are handled before the matrix is consulted, so entries
// here are always same-tenant. Team member mutation is also decided before
// the matrix (admin-only, no self-delete).
var capabilities = map[model.Role]map[Kind][]Action{
	model.RoleAdmin: {
		KindOrganization: {ActionRead, ActionUpdate},
		KindTeamMember:   {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindAnimal:       {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindProduct:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindInventory:    {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindPrescription: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindVaccination:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindEvent:        {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindDiagnostic:   {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindFormula:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindIntegration:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	model.RoleVet: {
		KindOrganization: {ActionRead},
		KindTeamMember:   {ActionRead},
		KindAnimal:       {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindProduct:      {ActionRead},
		KindInventory:    {ActionRead},
		KindPrescription: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindVaccination:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindEvent:        {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindDiagnostic:   {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindFormula:      {ActionRead},
		KindIntegration:  {ActionRead},
	},
	model.RoleSalesperson: {
		KindOrganization: {ActionRead},
		KindTeamMember:   {ActionRead},
		KindAnimal:       {ActionRead},
		KindProduct:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindInventory:    {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindPrescription: {ActionRead},
		KindVaccination:  {ActionRead},
		KindEvent:        {ActionRead},
		KindDiagnostic:   {ActionRead},
		KindFormula:      {ActionRead},
		KindIntegration:  {ActionRead},
	},
	model.RoleProductManager: {
		KindOrganization: {ActionRead},
		KindTeamMember:   {ActionRead},
		KindAnimal:       {ActionRead},
		KindProduct:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindInventory:    {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindPrescription: {ActionRead},
		KindVaccination:  {ActionRead},
		KindEvent:        {ActionRead},
		KindDiagnostic:   {ActionRead},
		KindFormula:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		KindIntegration:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	model.RoleStaff: {
		KindOrganization: {ActionRead},
		KindTeamMember:   {ActionRead},
		KindAnimal:       {ActionRead, ActionCreate, ActionUpdate},
		KindProduct:      {ActionRead},
		KindInventory:    {ActionRead},
		KindPrescription: {ActionRead},
		KindVaccination:  {ActionRead},
		KindEvent:        {ActionRead, ActionCreate, ActionUpdate},
		KindDiagnostic:   {ActionRead},
		KindFormula:      {ActionRead},
		KindIntegration:  {ActionRead},
	},
}

// Decide evaluates the gate rules in strict priority order:
//
//  1. superadmin bypasses everything, cross-tenant included
//  2. the tenancy boundary: the resource must belong to the principal's org
//  3. no self-deletion from the team roster
//  4. team membership mutation requires a team-managing role
//  5. the capability matrix for the principal's role
func Decide(p Principal, action Action, res Resource) Decision {
	if p.Role == model.RoleSuperAdmin {
		return allow
	}

	if p.OrgID == nil {
		return deny("principal_unassigned")
	}
	if res.OrgID != *p.OrgID {
		return deny("tenancy_boundary")
	}

	if res.Kind == KindTeamMember {
		if action == ActionDelete && res.ID == p.UserID {
			return deny("self_removal")
		}
		if action != ActionRead && !p.Role.CanManageTeam() {
			return deny("team_management_role_required")
		}
	}

	kinds, ok := capabilities[p.Role]
	if !ok {
		return deny("unknown_role")
	}
	for _, a := range kinds[res.Kind] {
		if a == action {
			return allow
		}
	}
	return deny("capability_missing")
}

// Authorize is Decide folded into an error, for store call sites.
func Authorize(p Principal, action Action, res Resource) error {
	if d := Decide(p, action, res); !d.Allow {
		return permissionError(d.Reason)
	}
	return nil
}
