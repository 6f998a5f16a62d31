package model

import "time"

// UsageMetric caches the per-organization counts compared against plan
// limits. The live cardinality of the backing tables is authoritative; this
// row is recomputed before every limit check and refreshed opportunistically
// after counted creates and deletes.
type UsageMetric struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrgID         uint      `json:"org_id" gorm:"uniqueIndex;not null"`
	TotalAnimals  int64     `json:"total_animals" gorm:"not null;default:0"`
	TotalStaff    int64     `json:"total_staff" gorm:"not null;default:0"`
	TotalProducts int64     `json:"total_products" gorm:"not null;default:0"`
	LastUpdated   time.Time `json:"last_updated"`
}
