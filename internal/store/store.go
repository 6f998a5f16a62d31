// Package store implements the organization registry, user directory,
// resource stores and usage metrics aggregator. Every operation takes the
// acting principal explicitly and runs it through the authorization gate
// before touching a row; nothing in this package reads ambient auth state.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
)

// DefaultOpTimeout bounds a single database operation when the caller did
// not configure one.
const DefaultOpTimeout = 5 * time.Second

type base struct {
	db      *gorm.DB
	timeout time.Duration
	feed    *feed.Feed
}

func newBase(db *gorm.DB, timeout time.Duration, f *feed.Feed) base {
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return base{db: db, timeout: timeout, feed: f}
}

// opCtx bounds one persistence round trip. Exceeding the deadline surfaces
// as a TimeoutError rather than hanging the request.
func (b base) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// dbError translates driver and gorm errors into the service taxonomy.
func dbError(err error, noun string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", noun)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("%s already exists", noun)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Wrap(err, apperr.KindTimeout, noun+" operation timed out")
	default:
		return apperr.Wrap(err, apperr.KindTransport, noun+" operation failed")
	}
}

// scopeOrg narrows a query to the organization visible to the principal.
// Superadmin principals see every organization; an explicit orgID further
// narrows their view. Everyone else is pinned to their own organization.
func scopeOrg(q *gorm.DB, p authz.Principal, orgID uint) *gorm.DB {
	if p.Role.CanSeeAllOrgs() {
		if orgID != 0 {
			return q.Where("org_id = ?", orgID)
		}
		return q
	}
	// the gate has already denied unassigned principals by the time a
	// query is built; this keeps the invariant even if it has not
	if p.OrgID == nil {
		return q.Where("1 = 0")
	}
	return q.Where("org_id = ?", *p.OrgID)
}

// targetOrg resolves the organization a list/create operation addresses:
// the requested one for superadmin, the principal's own otherwise.
func targetOrg(p authz.Principal, requested uint) uint {
	if p.Role.CanSeeAllOrgs() && requested != 0 {
		return requested
	}
	if p.OrgID != nil {
		return *p.OrgID
	}
	return requested
}

// ensureOrg verifies that a write lands in an existing organization. A
// superadmin without an assignment resolves to org 0, and a token minted
// before its organization was deleted still carries the stale id; neither
// may create rows owned by no tenant.
func (b base) ensureOrg(ctx context.Context, orgID uint) error {
	if orgID == 0 {
		return apperr.Validation("organization is required")
	}
	var count int64
	if err := b.db.WithContext(ctx).Model(&model.Organization{}).
		Where("id = ?", orgID).Count(&count).Error; err != nil {
		return dbError(err, "organization")
	}
	if count == 0 {
		return apperr.NotFound("organization not found")
	}
	return nil
}
