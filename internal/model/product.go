package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product sold or used by an organization (feed,
// medicine, supplies).
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	OrgID       uint           `json:"org_id" gorm:"index:idx_products_org_sku,unique;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	SKU         string         `json:"sku" gorm:"type:varchar(100);index:idx_products_org_sku,unique;not null"`
	Category    string         `json:"category,omitempty" gorm:"type:varchar(100)"`
	Price       float64        `json:"price" gorm:"not null;default:0"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
}

// InventoryItem tracks stock of a product within an organization.
type InventoryItem struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	OrgID       uint           `json:"org_id" gorm:"index;not null"`
	ProductID   uint           `json:"product_id" gorm:"index;not null"`
	Quantity    int            `json:"quantity" gorm:"not null;default:0"`
	MinQuantity int            `json:"min_quantity" gorm:"not null;default:0"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
