package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/identity"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// Onboarder runs account creation as a compensated sequence:
//
//  1. register the identity principal
//  2. create the organization
//  3. create the admin profile linked to it
//  4. seed the usage metrics
//
// Steps 2 and 3 share one database transaction. If it fails, step 1 is
// compensated by deleting the principal and the caller gets a single
// aggregate error; no orphaned organization or unlinked principal survives.
// Step 4 runs after commit and is allowed to fail: limit checks recompute
// from live tables and never trust the seeded row.
type Onboarder struct {
	base
	idp     identity.Provider
	metrics *MetricsAggregator
	log     *zap.Logger
}

// NewOnboarder creates the saga runner.
func NewOnboarder(db *gorm.DB, timeout time.Duration, f *feed.Feed, idp identity.Provider, metrics *MetricsAggregator, log *zap.Logger) *Onboarder {
	return &Onboarder{base: newBase(db, timeout, f), idp: idp, metrics: metrics, log: log}
}

// OnboardingInput is everything needed to open an account: the organization
// and its first (admin) user.
type OnboardingInput struct {
	OrgName  string `json:"org_name"`
	OrgType  string `json:"org_type"`
	Plan     string `json:"plan"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// OnboardingResult is the committed outcome.
type OnboardingResult struct {
	Organization *model.Organization `json:"organization"`
	User         *model.User         `json:"user"`
}

func (in *OnboardingInput) validate() error {
	if in.OrgName == "" {
		return apperr.Validation("organization name is required")
	}
	if !model.OrgType(in.OrgType).Valid() {
		return apperr.Validation("invalid organization type %q", in.OrgType)
	}
	plan := model.Plan(in.Plan)
	if in.Plan == "" {
		plan = model.PlanFree
	}
	if !plan.Valid() {
		return apperr.Validation("invalid plan %q", in.Plan)
	}
	if in.UserName == "" {
		return apperr.Validation("user name is required")
	}
	if in.Email == "" || in.Password == "" {
		return apperr.Validation("email and password are required")
	}
	return nil
}

// Onboard runs the saga.
func (o *Onboarder) Onboard(ctx context.Context, in OnboardingInput) (*OnboardingResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan := model.Plan(in.Plan)
	if in.Plan == "" {
		plan = model.PlanFree
	}

	// step 1: identity principal
	principal, err := o.idp.RegisterPrincipal(ctx, in.Email, in.Password)
	if err != nil {
		prometheus.OnboardingCounter.WithLabelValues("failed").Inc()
		return nil, err
	}

	// steps 2-3: organization and linked admin profile, atomically
	var org *model.Organization
	var user *model.User

	ctx, cancel := o.opCtx(ctx)
	defer cancel()

	txErr := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		org, err = createOrganization(tx, in.OrgName, model.OrgType(in.OrgType), plan)
		if err != nil {
			return err
		}

		user = &model.User{
			AuthPrincipalID: principal.ID,
			Name:            in.UserName,
			Email:           in.Email,
			Phone:           in.Phone,
			Role:            model.RoleAdmin,
			OrgID:           &org.ID,
		}
		if result := tx.Create(user); result.Error != nil {
			return dbError(result.Error, "user profile")
		}
		return nil
	})
	if txErr != nil {
		// compensate step 1 so the email is usable again
		compCtx := context.WithoutCancel(ctx)
		if compErr := o.idp.DeletePrincipal(compCtx, principal.ID); compErr != nil {
			o.log.Error("onboarding compensation failed, principal orphaned",
				zap.String("principal_id", principal.ID),
				zap.Error(compErr))
			prometheus.OnboardingCounter.WithLabelValues("compensation_failed").Inc()
		} else {
			prometheus.OnboardingCounter.WithLabelValues("compensated").Inc()
		}
		return nil, apperr.Wrap(txErr, apperr.KindOf(txErr), "onboarding failed")
	}

	// step 4: metrics seed, non-fatal
	if err := o.metrics.Initialize(ctx, org.ID); err != nil {
		o.log.Warn("usage metric initialization failed during onboarding",
			zap.Uint("org_id", org.ID),
			zap.Error(err))
	}

	prometheus.OnboardingCounter.WithLabelValues("completed").Inc()
	o.feed.Publish(feed.Change{Table: "organizations", Op: feed.OpInsert, OrgID: org.ID, RowID: org.ID})
	o.feed.Publish(feed.Change{Table: "users", Op: feed.OpInsert, OrgID: org.ID, RowID: user.ID})

	o.log.Info("organization onboarded",
		zap.Uint("org_id", org.ID),
		zap.String("org_name", org.Name),
		zap.Uint("admin_user_id", user.ID))
	return &OnboardingResult{Organization: org, User: user}, nil
}
