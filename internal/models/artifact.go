// internal/models/artifact.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Artifact is a generated trading script or indicator. Its license key is
// minted exactly once at creation and never changes afterwards.
type Artifact struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Type        ArtifactType   `json:"type" gorm:"type:varchar(20);not null"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Code        string         `json:"code" gorm:"type:text"`
	CodeURL     string         `json:"code_url,omitempty" gorm:"size:512"`
	LicenseKey  string         `json:"license_key" gorm:"size:64;uniqueIndex"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Metadata    JSONB          `json:"metadata" gorm:"type:jsonb"`

	// Relationships
	Owner       User                `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Assignments []LicenseAssignment `json:"assignments,omitempty" gorm:"foreignKey:ArtifactID"`
	BotControl  *BotControl         `json:"bot_control,omitempty" gorm:"foreignKey:ArtifactID"`
}

// TerminalAccount is a linked MetaTrader terminal account.
type TerminalAccount struct {
	BaseModel
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	AccountNumber string    `json:"account_number" gorm:"size:50;not null"`
	Server        string    `json:"server" gorm:"size:255;not null"`
	Password      string    `json:"-" gorm:"size:255"`
	Connected     bool      `json:"connected" gorm:"default:true"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
