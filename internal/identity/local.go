package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
)

// credential is the persisted row backing the local provider. It lives in
// its own table so the profile directory never touches password material.
type credential struct {
	ID           uint           `gorm:"primaryKey"`
	PrincipalID  string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string         `gorm:"type:varchar(200);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (credential) TableName() string { return "credentials" }

// LocalProvider implements Provider on the service's own database with
// bcrypt-hashed passwords.
type LocalProvider struct {
	db   *gorm.DB
	cost int
}

// NewLocalProvider creates a provider. A cost of 0 uses bcrypt.DefaultCost.
func NewLocalProvider(db *gorm.DB, cost int) *LocalProvider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalProvider{db: db, cost: cost}
}

// Migrate creates the credentials table.
func (p *LocalProvider) Migrate() error {
	return p.db.AutoMigrate(&credential{})
}

// Authenticate verifies credentials. Both unknown email and wrong password
// come back as the same permission error so callers cannot probe accounts.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	var cred credential
	result := p.db.WithContext(ctx).Where("email = ?", email).First(&cred)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.Permission("invalid credentials")
		}
		return nil, apperr.Wrap(result.Error, apperr.KindTransport, "credential lookup failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Permission("invalid credentials")
	}

	return &Principal{ID: cred.PrincipalID, Email: cred.Email}, nil
}

// RegisterPrincipal creates a credential row with a fresh opaque id.
func (p *LocalProvider) RegisterPrincipal(ctx context.Context, email, password string) (*Principal, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&credential{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Wrap(err, apperr.KindTransport, "credential lookup failed")
	}
	if count > 0 {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnknown, "password hash failed")
	}

	cred := credential{
		PrincipalID:  uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if result := p.db.WithContext(ctx).Create(&cred); result.Error != nil {
		return nil, apperr.Wrap(result.Error, apperr.KindTransport, "credential create failed")
	}

	return &Principal{ID: cred.PrincipalID, Email: cred.Email}, nil
}

// DeletePrincipal removes the credential row. Deleting an unknown principal
// is not an error; compensation must be idempotent. The delete is hard so
// the email becomes registrable again and no password hash lingers.
func (p *LocalProvider) DeletePrincipal(ctx context.Context, principalID string) error {
	result := p.db.WithContext(ctx).Unscoped().Where("principal_id = ?", principalID).Delete(&credential{})
	if result.Error != nil {
		return apperr.Wrap(result.Error, apperr.KindTransport, "credential delete failed")
	}
	return nil
}
