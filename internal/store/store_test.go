package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/identity"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
)

const testTimeout = 5 * time.Second

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.Animal{},
		&model.Product{},
		&model.InventoryItem{},
		&model.Prescription{},
		&model.Vaccination{},
		&model.Diagnostic{},
		&model.Event{},
		&model.Formula{},
		&model.Integration{},
		&model.UsageMetric{},
	))
	return db
}

var seedSeq int

func seedOrg(t *testing.T, db *gorm.DB, plan model.Plan) *model.Organization {
	t.Helper()
	seedSeq++
	org, err := createOrganization(db, fmt.Sprintf("org-%d", seedSeq), model.OrgTypeClinic, plan)
	require.NoError(t, err)
	return org
}

func seedUser(t *testing.T, db *gorm.DB, org *model.Organization, role model.Role) *model.User {
	t.Helper()
	seedSeq++
	user := model.User{
		AuthPrincipalID: fmt.Sprintf("principal-%d", seedSeq),
		Name:            fmt.Sprintf("user-%d", seedSeq),
		Email:           fmt.Sprintf("user-%d@test.example", seedSeq),
		Role:            role,
	}
	if org != nil {
		user.OrgID = &org.ID
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func asPrincipal(u *model.User) authz.Principal {
	return authz.Principal{UserID: u.ID, Role: u.Role, OrgID: u.OrgID}
}

// fakeIDP lets tests inject identity failures and observe compensation.
type fakeIDP struct {
	registerErr error
	deleteErr   error
	registered  []string
	deleted     []string
}

func (f *fakeIDP) Authenticate(ctx context.Context, email, password string) (*identity.Principal, error) {
	return &identity.Principal{ID: "fake-" + email, Email: email}, nil
}

func (f *fakeIDP) RegisterPrincipal(ctx context.Context, email, password string) (*identity.Principal, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	id := "fake-" + email
	f.registered = append(f.registered, id)
	return &identity.Principal{ID: id, Email: email}, nil
}

func (f *fakeIDP) DeletePrincipal(ctx context.Context, principalID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, principalID)
	return nil
}
