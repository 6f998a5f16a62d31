package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/authz"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// AnimalStore owns the animals table. Creates count against the plan's
// animal limit.
type AnimalStore struct {
	base
	metrics *MetricsAggregator
}

// NewAnimalStore creates the store.
func NewAnimalStore(db *gorm.DB, timeout time.Duration, f *feed.Feed, metrics *MetricsAggregator) *AnimalStore {
	return &AnimalStore{base: newBase(db, timeout, f), metrics: metrics}
}

// AnimalInput carries the writable animal fields.
type AnimalInput struct {
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	WeightKg  float64    `json:"weight_kg,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func (in *AnimalInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("animal name is required")
	}
	if in.Species == "" {
		return apperr.Validation("animal species is required")
	}
	if in.WeightKg < 0 {
		return apperr.Validation("weight cannot be negative")
	}
	return nil
}

// List returns the animals visible to the principal. Superadmin may pass
// orgID 0 to list across every organization.
func (s *AnimalStore) List(ctx context.Context, p authz.Principal, orgID uint) ([]model.Animal, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindAnimal, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var animals []model.Animal
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&animals); result.Error != nil {
		return nil, dbError(result.Error, "animal")
	}
	return animals, nil
}

// Get returns one animal, fetched inside the tenancy scope.
func (s *AnimalStore) Get(ctx context.Context, p authz.Principal, id uint) (*model.Animal, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var animal model.Animal
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&animal, id); result.Error != nil {
		return nil, dbError(result.Error, "animal")
	}
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindAnimal, OrgID: animal.OrgID, ID: animal.ID}); err != nil {
		return nil, err
	}
	return &animal, nil
}

// Create adds an animal after the gate and the plan limit both allow it.
func (s *AnimalStore) Create(ctx context.Context, p authz.Principal, orgID uint, in AnimalInput) (*model.Animal, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindAnimal, OrgID: org}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.metrics.CheckLimit(ctx, org, CountedAnimals); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	animal := model.Animal{
		OrgID:     org,
		Name:      in.Name,
		Species:   in.Species,
		Breed:     in.Breed,
		BirthDate: in.BirthDate,
		WeightKg:  in.WeightKg,
		Notes:     in.Notes,
	}
	if result := s.db.WithContext(ctx).Create(&animal); result.Error != nil {
		return nil, dbError(result.Error, "animal")
	}

	prometheus.RecordResourceOperation("animal", "create")
	s.feed.Publish(feed.Change{Table: "animals", Op: feed.OpInsert, OrgID: org, RowID: animal.ID})
	s.metrics.RefreshAsync(org)
	return &animal, nil
}

// Update mutates an animal in place.
func (s *AnimalStore) Update(ctx context.Context, p authz.Principal, id uint, in AnimalInput) (*model.Animal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var animal model.Animal
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&animal, id); result.Error != nil {
		return nil, dbError(result.Error, "animal")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindAnimal, OrgID: animal.OrgID, ID: animal.ID}); err != nil {
		return nil, err
	}

	animal.Name = in.Name
	animal.Species = in.Species
	animal.Breed = in.Breed
	animal.BirthDate = in.BirthDate
	animal.WeightKg = in.WeightKg
	animal.Notes = in.Notes
	if result := s.db.WithContext(ctx).Save(&animal); result.Error != nil {
		return nil, dbError(result.Error, "animal")
	}

	prometheus.RecordResourceOperation("animal", "update")
	s.feed.Publish(feed.Change{Table: "animals", Op: feed.OpUpdate, OrgID: animal.OrgID, RowID: animal.ID})
	return &animal, nil
}

// Delete removes an animal.
func (s *AnimalStore) Delete(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var animal model.Animal
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&animal, id); result.Error != nil {
		return dbError(result.Error, "animal")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindAnimal, OrgID: animal.OrgID, ID: animal.ID}); err != nil {
		return err
	}

	if result := s.db.WithContext(ctx).Delete(&animal); result.Error != nil {
		return dbError(result.Error, "animal")
	}

	prometheus.RecordResourceOperation("animal", "delete")
	s.feed.Publish(feed.Change{Table: "animals", Op: feed.OpDelete, OrgID: animal.OrgID, RowID: animal.ID})
	s.metrics.RefreshAsync(animal.OrgID)
	return nil
}
