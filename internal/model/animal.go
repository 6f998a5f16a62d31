package model

import (
	"time"

	"gorm.io/gorm"
)

// Animal represents an animal managed by an organization (patient of a
// clinic, livestock of a farm).
type Animal struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrgID     uint           `json:"org_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(200);not null"`
	Species   string         `json:"species" gorm:"type:varchar(100);not null"`
	Breed     string         `json:"breed,omitempty" gorm:"type:varchar(100)"`
	BirthDate *time.Time     `json:"birth_date,omitempty"`
	WeightKg  float64        `json:"weight_kg,omitempty"`
	Notes     string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
