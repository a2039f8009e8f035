// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	BaseModel
	BuyerEmail       string            `json:"buyer_email" gorm:"size:255;not null;index"`
	SellerID         uuid.UUID         `json:"seller_id" gorm:"type:uuid;not null;index"`
	ArtifactID       uuid.UUID         `json:"artifact_id" gorm:"type:uuid;not null;index"`
	AssignmentID     *uuid.UUID        `json:"assignment_id" gorm:"type:uuid;index"`
	Amount           float64           `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency         string            `json:"currency" gorm:"size:10;default:'usd'"`
	PaymentReference string            `json:"payment_reference" gorm:"size:255"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedAt      *time.Time        `json:"processed_at"`
	RefundedAt       *time.Time        `json:"refunded_at"`
	RefundReason     string            `json:"refund_reason,omitempty" gorm:"type:text"`

	// Relationships
	Seller     User               `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Artifact   Artifact           `json:"artifact,omitempty" gorm:"foreignKey:ArtifactID"`
	Assignment *LicenseAssignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
