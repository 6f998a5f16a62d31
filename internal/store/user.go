package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/identity"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
)

// UserDirectory maps principals to profiles and owns team management.
type UserDirectory struct {
	base
	idp     identity.Provider
	metrics *MetricsAggregator
}

// NewUserDirectory creates the directory. The identity provider is needed
// for team invites, which register a principal for the invited member.
func NewUserDirectory(db *gorm.DB, timeout time.Duration, f *feed.Feed, idp identity.Provider, metrics *MetricsAggregator) *UserDirectory {
	return &UserDirectory{base: newBase(db, timeout, f), idp: idp, metrics: metrics}
}

// ResolveProfile looks up the profile for an authenticated principal. A
// principal with no profile is an inconsistent state: the identity provider
// knows the caller but the directory does not. Callers must surface it,
// never ignore it.
func (s *UserDirectory) ResolveProfile(ctx context.Context, principalID string) (*model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var user model.User
	result := s.db.WithContext(ctx).Where("auth_principal_id = ?", principalID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no profile for authenticated principal")
		}
		return nil, dbError(result.Error, "profile")
	}
	return &user, nil
}

// GetByID returns a profile row by id without tenancy filtering; callers
// gate-check before exposing it.
func (s *UserDirectory) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var user model.User
	if result := s.db.WithContext(ctx).First(&user, id); result.Error != nil {
		return nil, dbError(result.Error, "user")
	}
	return &user, nil
}

// OrgName resolves the user's organization name for token claims. Empty
// when unassigned or on lookup failure; the claim is cosmetic.
func (s *UserDirectory) OrgName(ctx context.Context, user *model.User) string {
	if user.OrgID == nil {
		return ""
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var org model.Organization
	if result := s.db.WithContext(ctx).Select("name").First(&org, *user.OrgID); result.Error != nil {
		return ""
	}
	return org.Name
}

// ProfilePatch carries the self-editable profile fields.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// UpdateProfile lets a user edit their own profile fields.
func (s *UserDirectory) UpdateProfile(ctx context.Context, p authz.Principal, patch ProfilePatch) (*model.User, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, apperr.Validation("name cannot be empty")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var user model.User
	if result := s.db.WithContext(ctx).First(&user, p.UserID); result.Error != nil {
		return nil, dbError(result.Error, "user")
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if result := s.db.WithContext(ctx).Save(&user); result.Error != nil {
		return nil, dbError(result.Error, "user")
	}
	return &user, nil
}

// ListTeam returns the members of the addressed organization.
func (s *UserDirectory) ListTeam(ctx context.Context, p authz.Principal, orgID uint) ([]model.User, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindTeamMember, OrgID: org}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var users []model.User
	if result := s.db.WithContext(ctx).Where("org_id = ?", org).Order("id").Find(&users); result.Error != nil {
		return nil, dbError(result.Error, "team")
	}
	return users, nil
}

// InviteInput describes a new team member. The initial password is set by
// the inviting admin and changed by the member on first login.
type InviteInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Invite creates a principal and a profile in the actor's organization.
// Counted against the staff limit. The superadmin role cannot be granted
// through the team path.
func (s *UserDirectory) Invite(ctx context.Context, p authz.Principal, orgID uint, in InviteInput) (*model.User, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindTeamMember, OrgID: org}); err != nil {
		return nil, err
	}

	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	role, ok := model.ParseRole(in.Role)
	if !ok {
		return nil, apperr.Validation("invalid role %q", in.Role)
	}
	if role == model.RoleSuperAdmin {
		return nil, apperr.Permission("superadmin cannot be granted through team management")
	}

	if err := s.metrics.CheckLimit(ctx, org, CountedStaff); err != nil {
		return nil, err
	}

	principal, err := s.idp.RegisterPrincipal(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user := model.User{
		AuthPrincipalID: principal.ID,
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Role:            role,
		OrgID:           &org,
	}
	if result := s.db.WithContext(ctx).Create(&user); result.Error != nil {
		// compensate the principal so a retry with the same email works
		_ = s.idp.DeletePrincipal(context.WithoutCancel(ctx), principal.ID)
		return nil, dbError(result.Error, "team member")
	}

	s.feed.Publish(feed.Change{Table: "users", Op: feed.OpInsert, OrgID: org, RowID: user.ID})
	s.metrics.RefreshAsync(org)
	return &user, nil
}

// AssignRole changes a member's role, gate-checked against the target's
// organization. The superadmin role can be neither granted nor revoked
// here.
func (s *UserDirectory) AssignRole(ctx context.Context, p authz.Principal, targetID uint, newRole string) (*model.User, error) {
	role, ok := model.ParseRole(newRole)
	if !ok {
		return nil, apperr.Validation("invalid role %q", newRole)
	}
	if role == model.RoleSuperAdmin {
		return nil, apperr.Permission("superadmin cannot be granted through team management")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var target model.User
	if result := s.db.WithContext(ctx).First(&target, targetID); result.Error != nil {
		return nil, dbError(result.Error, "user")
	}
	if target.OrgID == nil {
		return nil, apperr.Validation("target user has no organization")
	}
	if target.Role == model.RoleSuperAdmin {
		return nil, apperr.Permission("superadmin role cannot be changed through team management")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindTeamMember, OrgID: *target.OrgID, ID: target.ID}); err != nil {
		return nil, err
	}

	target.Role = role
	if result := s.db.WithContext(ctx).Save(&target); result.Error != nil {
		return nil, dbError(result.Error, "user")
	}
	s.feed.Publish(feed.Change{Table: "users", Op: feed.OpUpdate, OrgID: *target.OrgID, RowID: target.ID})
	return &target, nil
}

// Remove deletes a member's profile row. The gate denies self-removal;
// superadmin rows are never removable through this path.
func (s *UserDirectory) Remove(ctx context.Context, p authz.Principal, targetID uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var target model.User
	if result := s.db.WithContext(ctx).First(&target, targetID); result.Error != nil {
		return dbError(result.Error, "user")
	}
	if target.OrgID == nil {
		return apperr.Validation("target user has no organization")
	}
	if target.Role == model.RoleSuperAdmin {
		return apperr.Permission("superadmin cannot be removed through team management")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindTeamMember, OrgID: *target.OrgID, ID: target.ID}); err != nil {
		return err
	}

	orgID := *target.OrgID
	if result := s.db.WithContext(ctx).Delete(&target); result.Error != nil {
		return dbError(result.Error, "user")
	}
	s.feed.Publish(feed.Change{Table: "users", Op: feed.OpDelete, OrgID: orgID, RowID: target.ID})
	s.metrics.RefreshAsync(orgID)
	return nil
}

// PromoteSuperadmin sets the superadmin role on the profile with the given
// email. Startup-only migration aid for deployments moving off the old
// allow-listed email; the gate itself only ever reads the role column.
func (s *UserDirectory) PromoteSuperadmin(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("role", model.RoleSuperAdmin)
	if result.Error != nil {
		return dbError(result.Error, "user")
	}
	return nil
}
