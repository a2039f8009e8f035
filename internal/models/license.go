// internal/models/license.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LicenseAssignment grants one customer the right to run an artifact under its
// license key. Several assignments may share a key (multi-seat distribution).
type LicenseAssignment struct {
	BaseModel
	ArtifactID     uuid.UUID  `json:"artifact_id" gorm:"type:uuid;not null;index"`
	LicenseKey     string     `json:"license_key" gorm:"size:64;not null;index"`
	CustomerName   string     `json:"customer_name" gorm:"size:255;not null"`
	CustomerEmail  string     `json:"customer_email" gorm:"size:255;not null;index"`
	ExpiresAt      *time.Time `json:"expires_at"`
	PurchaseAmount *float64   `json:"purchase_amount,omitempty" gorm:"type:decimal(10,2)"`
	UsageCount     int64      `json:"usage_count" gorm:"not null;default:0"`
	LastUsedAt     *time.Time `json:"last_used_at"`

	// Relationships
	Artifact Artifact `json:"artifact,omitempty" gorm:"foreignKey:ArtifactID"`
}

// IsActiveAt reports whether the assignment is usable at the given instant.
// A missing expiration means perpetual; at exactly the expiration instant the
// assignment is already expired. Derived on read, never persisted.
func (a *LicenseAssignment) IsActiveAt(now time.Time) bool {
	return a.ExpiresAt == nil || now.Before(*a.ExpiresAt)
}

func (a *LicenseAssignment) IsActive() bool {
	return a.IsActiveAt(time.Now())
}

// AnalyticsSnapshot is the per-artifact license rollup, recomputed on demand.
type AnalyticsSnapshot struct {
	TotalLicenses   int64   `json:"total_licenses"`
	ActiveLicenses  int64   `json:"active_licenses"`
	ExpiredLicenses int64   `json:"expired_licenses"`
	TotalRevenue    float64 `json:"total_revenue"`
}
