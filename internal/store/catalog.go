package store

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// CatalogStore owns feed formulas and external-system integrations.
type CatalogStore struct {
	base
}

// NewCatalogStore creates the store.
func NewCatalogStore(db *gorm.DB, timeout time.Duration, f *feed.Feed) *CatalogStore {
	return &CatalogStore{base: newBase(db, timeout, f)}
}

// validJSON rejects payloads that are not a JSON document. Empty is fine.
func validJSON(s string) bool {
	if s == "" {
		return true
	}
	return json.Valid([]byte(s))
}

// FormulaInput carries the writable formula fields.
type FormulaInput struct {
	Name        string  `json:"name"`
	Species     string  `json:"species,omitempty"`
	Composition string  `json:"composition,omitempty"`
	CostPerKg   float64 `json:"cost_per_kg,omitempty"`
}

// ListFormulas returns the formulas visible to the principal.
func (s *CatalogStore) ListFormulas(ctx context.Context, p authz.Principal, orgID uint) ([]model.Formula, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindFormula, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rows []model.Formula
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&rows); result.Error != nil {
		return nil, dbError(result.Error, "formula")
	}
	return rows, nil
}

// CreateFormula adds a feed composition recipe.
func (s *CatalogStore) CreateFormula(ctx context.Context, p authz.Principal, orgID uint, in FormulaInput) (*model.Formula, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindFormula, OrgID: org}); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, apperr.Validation("formula name is required")
	}
	if !validJSON(in.Composition) {
		return nil, apperr.Validation("composition must be valid JSON")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}

	row := model.Formula{
		OrgID:       org,
		Name:        in.Name,
		Species:     in.Species,
		Composition: in.Composition,
		CostPerKg:   in.CostPerKg,
	}
	if result := s.db.WithContext(ctx).Create(&row); result.Error != nil {
		return nil, dbError(result.Error, "formula")
	}

	prometheus.RecordResourceOperation("formula", "create")
	s.feed.Publish(feed.Change{Table: "formulas", Op: feed.OpInsert, OrgID: org, RowID: row.ID})
	return &row, nil
}

// UpdateFormula mutates a formula in place.
func (s *CatalogStore) UpdateFormula(ctx context.Context, p authz.Principal, id uint, in FormulaInput) (*model.Formula, error) {
	if in.Name == "" {
		return nil, apperr.Validation("formula name is required")
	}
	if !validJSON(in.Composition) {
		return nil, apperr.Validation("composition must be valid JSON")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Formula
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return nil, dbError(result.Error, "formula")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindFormula, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return nil, err
	}

	row.Name = in.Name
	row.Species = in.Species
	row.Composition = in.Composition
	row.CostPerKg = in.CostPerKg
	if result := s.db.WithContext(ctx).Save(&row); result.Error != nil {
		return nil, dbError(result.Error, "formula")
	}

	prometheus.RecordResourceOperation("formula", "update")
	s.feed.Publish(feed.Change{Table: "formulas", Op: feed.OpUpdate, OrgID: row.OrgID, RowID: row.ID})
	return &row, nil
}

// DeleteFormula removes a formula.
func (s *CatalogStore) DeleteFormula(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Formula
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return dbError(result.Error, "formula")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindFormula, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return err
	}
	if result := s.db.WithContext(ctx).Delete(&row); result.Error != nil {
		return dbError(result.Error, "formula")
	}

	prometheus.RecordResourceOperation("formula", "delete")
	s.feed.Publish(feed.Change{Table: "formulas", Op: feed.OpDelete, OrgID: row.OrgID, RowID: row.ID})
	return nil
}

// IntegrationInput carries the writable integration fields. Config must be
// a JSON document.
type IntegrationInput struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Config   string `json:"config,omitempty"`
	Active   bool   `json:"active"`
}

// ListIntegrations returns the integrations visible to the principal.
func (s *CatalogStore) ListIntegrations(ctx context.Context, p authz.Principal, orgID uint) ([]model.Integration, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindIntegration, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var rows []model.Integration
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&rows); result.Error != nil {
		return nil, dbError(result.Error, "integration")
	}
	return rows, nil
}

// CreateIntegration adds an integration after validating its config payload.
func (s *CatalogStore) CreateIntegration(ctx context.Context, p authz.Principal, orgID uint, in IntegrationInput) (*model.Integration, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindIntegration, OrgID: org}); err != nil {
		return nil, err
	}
	if in.Name == "" || in.Provider == "" {
		return nil, apperr.Validation("integration name and provider are required")
	}
	if !validJSON(in.Config) {
		return nil, apperr.Validation("integration config must be valid JSON")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}

	row := model.Integration{
		OrgID:    org,
		Name:     in.Name,
		Provider: in.Provider,
		Config:   in.Config,
		Active:   in.Active,
	}
	if result := s.db.WithContext(ctx).Create(&row); result.Error != nil {
		return nil, dbError(result.Error, "integration")
	}

	prometheus.RecordResourceOperation("integration", "create")
	s.feed.Publish(feed.Change{Table: "integrations", Op: feed.OpInsert, OrgID: org, RowID: row.ID})
	return &row, nil
}

// UpdateIntegration mutates an integration in place.
func (s *CatalogStore) UpdateIntegration(ctx context.Context, p authz.Principal, id uint, in IntegrationInput) (*model.Integration, error) {
	if in.Name == "" || in.Provider == "" {
		return nil, apperr.Validation("integration name and provider are required")
	}
	if !validJSON(in.Config) {
		return nil, apperr.Validation("integration config must be valid JSON")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Integration
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return nil, dbError(result.Error, "integration")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindIntegration, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return nil, err
	}

	row.Name = in.Name
	row.Provider = in.Provider
	row.Config = in.Config
	row.Active = in.Active
	if result := s.db.WithContext(ctx).Save(&row); result.Error != nil {
		return nil, dbError(result.Error, "integration")
	}

	prometheus.RecordResourceOperation("integration", "update")
	s.feed.Publish(feed.Change{Table: "integrations", Op: feed.OpUpdate, OrgID: row.OrgID, RowID: row.ID})
	return &row, nil
}

// DeleteIntegration removes an integration.
func (s *CatalogStore) DeleteIntegration(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var row model.Integration
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&row, id); result.Error != nil {
		return dbError(result.Error, "integration")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindIntegration, OrgID: row.OrgID, ID: row.ID}); err != nil {
		return err
	}
	if result := s.db.WithContext(ctx).Delete(&row); result.Error != nil {
		return dbError(result.Error, "integration")
	}

	prometheus.RecordResourceOperation("integration", "delete")
	s.feed.Publish(feed.Change{Table: "integrations", Op: feed.OpDelete, OrgID: row.OrgID, RowID: row.ID})
	return nil
}
