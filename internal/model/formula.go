package model

import (
	"time"

	"gorm.io/gorm"
)

// Formula is a feed composition recipe maintained by food companies.
// Composition is a JSON document of ingredient percentages.
type Formula struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	OrgID       uint           `json:"org_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Species     string         `json:"species,omitempty" gorm:"type:varchar(100)"`
	Composition string         `json:"composition" gorm:"type:jsonb"`
	CostPerKg   float64        `json:"cost_per_kg,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Integration is an external-system hookup owned by an organization. Config
// is an opaque JSON payload validated on write.
type Integration struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrgID     uint           `json:"org_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(200);not null"`
	Provider  string         `json:"provider" gorm:"type:varchar(100);not null"`
	Config    string         `json:"config" gorm:"type:jsonb"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
