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

// ProductStore owns products and inventory items. Product creates count
// against the plan's product limit; inventory does not.
type ProductStore struct {
	base
	metrics *MetricsAggregator
}

// NewProductStore creates the store.
func NewProductStore(db *gorm.DB, timeout time.Duration, f *feed.Feed, metrics *MetricsAggregator) *ProductStore {
	return &ProductStore{base: newBase(db, timeout, f), metrics: metrics}
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Active      bool    `json:"active"`
	Description string  `json:"description,omitempty"`
}

func (in *ProductInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("product name is required")
	}
	if in.SKU == "" {
		return apperr.Validation("product sku is required")
	}
	if in.Price < 0 {
		return apperr.Validation("price cannot be negative")
	}
	return nil
}

// List returns the products visible to the principal.
func (s *ProductStore) List(ctx context.Context, p authz.Principal, orgID uint) ([]model.Product, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindProduct, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var products []model.Product
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&products); result.Error != nil {
		return nil, dbError(result.Error, "product")
	}
	return products, nil
}

// Get returns one product inside the tenancy scope.
func (s *ProductStore) Get(ctx context.Context, p authz.Principal, id uint) (*model.Product, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var product model.Product
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&product, id); result.Error != nil {
		return nil, dbError(result.Error, "product")
	}
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindProduct, OrgID: product.OrgID, ID: product.ID}); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create adds a product. SKU is unique within the organization.
func (s *ProductStore) Create(ctx context.Context, p authz.Principal, orgID uint, in ProductInput) (*model.Product, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindProduct, OrgID: org}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.metrics.CheckLimit(ctx, org, CountedProducts); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("org_id = ? AND sku = ?", org, in.SKU).Count(&count).Error; err != nil {
		return nil, dbError(err, "product")
	}
	if count > 0 {
		return nil, apperr.Conflict("product with sku %q already exists", in.SKU)
	}

	product := model.Product{
		OrgID:       org,
		Name:        in.Name,
		SKU:         in.SKU,
		Category:    in.Category,
		Price:       in.Price,
		Active:      in.Active,
		Description: in.Description,
	}
	if result := s.db.WithContext(ctx).Create(&product); result.Error != nil {
		return nil, dbError(result.Error, "product")
	}

	prometheus.RecordResourceOperation("product", "create")
	s.feed.Publish(feed.Change{Table: "products", Op: feed.OpInsert, OrgID: org, RowID: product.ID})
	s.metrics.RefreshAsync(org)
	return &product, nil
}

// Update mutates a product in place.
func (s *ProductStore) Update(ctx context.Context, p authz.Principal, id uint, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var product model.Product
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&product, id); result.Error != nil {
		return nil, dbError(result.Error, "product")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindProduct, OrgID: product.OrgID, ID: product.ID}); err != nil {
		return nil, err
	}

	if in.SKU != product.SKU {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Product{}).
			Where("org_id = ? AND sku = ? AND id != ?", product.OrgID, in.SKU, id).Count(&count).Error; err != nil {
			return nil, dbError(err, "product")
		}
		if count > 0 {
			return nil, apperr.Conflict("product with sku %q already exists", in.SKU)
		}
	}

	product.Name = in.Name
	product.SKU = in.SKU
	product.Category = in.Category
	product.Price = in.Price
	product.Active = in.Active
	product.Description = in.Description
	if result := s.db.WithContext(ctx).Save(&product); result.Error != nil {
		return nil, dbError(result.Error, "product")
	}

	prometheus.RecordResourceOperation("product", "update")
	s.feed.Publish(feed.Change{Table: "products", Op: feed.OpUpdate, OrgID: product.OrgID, RowID: product.ID})
	return &product, nil
}

// Delete removes a product.
func (s *ProductStore) Delete(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var product model.Product
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&product, id); result.Error != nil {
		return dbError(result.Error, "product")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindProduct, OrgID: product.OrgID, ID: product.ID}); err != nil {
		return err
	}

	if result := s.db.WithContext(ctx).Delete(&product); result.Error != nil {
		return dbError(result.Error, "product")
	}

	prometheus.RecordResourceOperation("product", "delete")
	s.feed.Publish(feed.Change{Table: "products", Op: feed.OpDelete, OrgID: product.OrgID, RowID: product.ID})
	s.metrics.RefreshAsync(product.OrgID)
	return nil
}

// InventoryInput carries the writable inventory fields.
type InventoryInput struct {
	ProductID   uint       `json:"product_id"`
	Quantity    int        `json:"quantity"`
	MinQuantity int        `json:"min_quantity"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func (in *InventoryInput) validate() error {
	if in.ProductID == 0 {
		return apperr.Validation("product_id is required")
	}
	if in.Quantity < 0 || in.MinQuantity < 0 {
		return apperr.Validation("quantities cannot be negative")
	}
	return nil
}

// ListInventory returns the inventory items visible to the principal.
func (s *ProductStore) ListInventory(ctx context.Context, p authz.Principal, orgID uint) ([]model.InventoryItem, error) {
	if err := authz.Authorize(p, authz.ActionRead, authz.Resource{Kind: authz.KindInventory, OrgID: targetOrg(p, orgID)}); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var items []model.InventoryItem
	if result := scopeOrg(s.db.WithContext(ctx), p, orgID).Order("id").Find(&items); result.Error != nil {
		return nil, dbError(result.Error, "inventory item")
	}
	return items, nil
}

// CreateInventory adds a stock row for a product of the same organization.
func (s *ProductStore) CreateInventory(ctx context.Context, p authz.Principal, orgID uint, in InventoryInput) (*model.InventoryItem, error) {
	org := targetOrg(p, orgID)
	if err := authz.Authorize(p, authz.ActionCreate, authz.Resource{Kind: authz.KindInventory, OrgID: org}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ensureOrg(ctx, org); err != nil {
		return nil, err
	}

	// the referenced product must live in the same organization
	var product model.Product
	if result := s.db.WithContext(ctx).Where("org_id = ?", org).First(&product, in.ProductID); result.Error != nil {
		return nil, dbError(result.Error, "product")
	}

	item := model.InventoryItem{
		OrgID:       org,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		ExpiresAt:   in.ExpiresAt,
	}
	if result := s.db.WithContext(ctx).Create(&item); result.Error != nil {
		return nil, dbError(result.Error, "inventory item")
	}

	prometheus.RecordResourceOperation("inventory", "create")
	s.feed.Publish(feed.Change{Table: "inventory_items", Op: feed.OpInsert, OrgID: org, RowID: item.ID})
	return &item, nil
}

// UpdateInventory mutates a stock row.
func (s *ProductStore) UpdateInventory(ctx context.Context, p authz.Principal, id uint, in InventoryInput) (*model.InventoryItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var item model.InventoryItem
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&item, id); result.Error != nil {
		return nil, dbError(result.Error, "inventory item")
	}
	if err := authz.Authorize(p, authz.ActionUpdate, authz.Resource{Kind: authz.KindInventory, OrgID: item.OrgID, ID: item.ID}); err != nil {
		return nil, err
	}

	item.ProductID = in.ProductID
	item.Quantity = in.Quantity
	item.MinQuantity = in.MinQuantity
	item.ExpiresAt = in.ExpiresAt
	if result := s.db.WithContext(ctx).Save(&item); result.Error != nil {
		return nil, dbError(result.Error, "inventory item")
	}

	prometheus.RecordResourceOperation("inventory", "update")
	s.feed.Publish(feed.Change{Table: "inventory_items", Op: feed.OpUpdate, OrgID: item.OrgID, RowID: item.ID})
	return &item, nil
}

// DeleteInventory removes a stock row.
func (s *ProductStore) DeleteInventory(ctx context.Context, p authz.Principal, id uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var item model.InventoryItem
	if result := scopeOrg(s.db.WithContext(ctx), p, 0).First(&item, id); result.Error != nil {
		return dbError(result.Error, "inventory item")
	}
	if err := authz.Authorize(p, authz.ActionDelete, authz.Resource{Kind: authz.KindInventory, OrgID: item.OrgID, ID: item.ID}); err != nil {
		return err
	}

	if result := s.db.WithContext(ctx).Delete(&item); result.Error != nil {
		return dbError(result.Error, "inventory item")
	}

	prometheus.RecordResourceOperation("inventory", "delete")
	s.feed.Publish(feed.Change{Table: "inventory_items", Op: feed.OpDelete, OrgID: item.OrgID, RowID: item.ID})
	return nil
}
