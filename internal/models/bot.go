// internal/models/bot.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// BotControl is the per-artifact arm/disarm flag polled by trading terminals.
// One row per artifact, created disarmed when the artifact is generated.
type BotControl struct {
	BaseModel
	ArtifactID  uuid.UUID `json:"artifact_id" gorm:"type:uuid;not null;uniqueIndex"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:false"`
	LastUpdated time.Time `json:"last_updated"`

	// Relationships
	Artifact Artifact `json:"artifact,omitempty" gorm:"foreignKey:ArtifactID"`
}
