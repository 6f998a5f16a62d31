package model

import (
	"time"

	"gorm.io/gorm"
)

// Prescription records a medication prescribed for an animal by a vet.
type Prescription struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	OrgID        uint           `json:"org_id" gorm:"index;not null"`
	AnimalID     uint           `json:"animal_id" gorm:"index;not null"`
	VetID        uint           `json:"vet_id" gorm:"index;not null"`
	Medication   string         `json:"medication" gorm:"type:varchar(255);not null"`
	Dosage       string         `json:"dosage" gorm:"type:varchar(100)"`
	Instructions string         `json:"instructions,omitempty" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Vaccination records an applied vaccine dose and the next due date.
type Vaccination struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	OrgID      uint           `json:"org_id" gorm:"index;not null"`
	AnimalID   uint           `json:"animal_id" gorm:"index;not null"`
	Vaccine    string         `json:"vaccine" gorm:"type:varchar(255);not null"`
	AppliedAt  time.Time      `json:"applied_at"`
	NextDoseAt *time.Time     `json:"next_dose_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// Diagnostic records a condition diagnosed for an animal.
type Diagnostic struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrgID     uint           `json:"org_id" gorm:"index;not null"`
	AnimalID  uint           `json:"animal_id" gorm:"index;not null"`
	VetID     uint           `json:"vet_id" gorm:"index;not null"`
	Condition string         `json:"condition" gorm:"type:varchar(255);not null"`
	Severity  string         `json:"severity,omitempty" gorm:"type:varchar(50)"`
	Notes     string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Event is a dated occurrence on the organization timeline, optionally tied
// to an animal (birth, weighing, sale, handling).
type Event struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	OrgID      uint           `json:"org_id" gorm:"index;not null"`
	AnimalID   *uint          `json:"animal_id,omitempty" gorm:"index"`
	Kind       string         `json:"kind" gorm:"type:varchar(100);not null"`
	OccurredAt time.Time      `json:"occurred_at"`
	Notes      string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
