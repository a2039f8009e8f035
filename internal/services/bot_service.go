// internal/services/bot_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradeforge/tradeforge-backend/internal/models"
)

type BotService struct {
	db *gorm.DB
}

type ToggleBotRequest struct {
	ArtifactID uuid.UUID `json:"artifact_id" validate:"required"`
	IsActive   *bool     `json:"is_active" validate:"required"`
}

type BotStatusResponse struct {
	ArtifactID  uuid.UUID `json:"artifact_id"`
	IsActive    bool      `json:"is_active"`
	LastUpdated time.Time `json:"last_updated"`
}

func NewBotService(db *gorm.DB) *BotService {
	return &BotService{db: db}
}

// Toggle sets the arm/disarm flag for an artifact owned by userID. The write
// is a single atomic upsert; concurrent toggles serialize at the row and the
// final state is always one of the submitted values.
func (s *BotService) Toggle(userID uuid.UUID, req *ToggleBotRequest) (*BotStatusResponse, error) {
	if req.IsActive == nil {
		return nil, fmt.Errorf("%w: is_active is required", ErrValidation)
	}

	var artifact models.Artifact
	if err := s.db.First(&artifact, req.ArtifactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if artifact.OwnerID != userID {
		return nil, fmt.Errorf("%w: not the artifact owner", ErrForbidden)
	}

	now := time.Now()
	control := models.BotControl{
		ArtifactID:  req.ArtifactID,
		IsActive:    *req.IsActive,
		LastUpdated: now,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artifact_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_active":    *req.IsActive,
			"last_updated": now,
		}),
	}).Create(&control).Error; err != nil {
		return nil, fmt.Errorf("failed to update bot status: %w", err)
	}

	return s.currentStatus(req.ArtifactID)
}

// StatusForOwner reads the flag on behalf of the dashboard user.
func (s *BotService) StatusForOwner(artifactID, userID uuid.UUID) (*BotStatusResponse, error) {
	var artifact models.Artifact
	if err := s.db.First(&artifact, artifactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if artifact.OwnerID != userID {
		return nil, fmt.Errorf("%w: not the artifact owner", ErrForbidden)
	}

	return s.currentStatus(artifactID)
}

// StatusForAgent is the polling gateway read. The trading terminal does not
// hold the owner's credentials; it authenticates with the artifact's license
// key, which is scoped to status reads only. The read never blocks on other
// writers and has no side effects beyond lazily creating the default row.
func (s *BotService) StatusForAgent(artifactID uuid.UUID, presentedKey string) (*BotStatusResponse, error) {
	if presentedKey == "" {
		return nil, fmt.Errorf("%w: missing license key", ErrForbidden)
	}

	var artifact models.Artifact
	if err := s.db.First(&artifact, artifactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if artifact.LicenseKey != presentedKey {
		return nil, fmt.Errorf("%w: license key does not match artifact", ErrForbidden)
	}

	return s.currentStatus(artifactID)
}

// InitControl creates the disarmed default row for a freshly generated
// artifact. Runs inside the artifact creation transaction.
func (s *BotService) InitControl(tx *gorm.DB, artifactID uuid.UUID) error {
	control := models.BotControl{
		ArtifactID:  artifactID,
		IsActive:    false,
		LastUpdated: time.Now(),
	}
	if err := tx.Create(&control).Error; err != nil {
		return fmt.Errorf("failed to initialize bot control: %w", err)
	}
	return nil
}

func (s *BotService) currentStatus(artifactID uuid.UUID) (*BotStatusResponse, error) {
	var control models.BotControl
	err := s.db.Where("artifact_id = ?", artifactID).First(&control).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Legacy artifacts created before bot control existed start disarmed.
		control = models.BotControl{
			ArtifactID:  artifactID,
			IsActive:    false,
			LastUpdated: time.Now(),
		}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artifact_id"}},
			DoNothing: true,
		}).Create(&control).Error; err != nil {
			return nil, fmt.Errorf("failed to initialize bot status: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &BotStatusResponse{
		ArtifactID:  control.ArtifactID,
		IsActive:    control.IsActive,
		LastUpdated: control.LastUpdated,
	}, nil
}
