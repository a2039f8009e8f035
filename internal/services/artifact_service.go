// internal/services/artifact_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/codegen"
	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type ArtifactService struct {
	db             *gorm.DB
	generator      codegen.Generator
	storageService *StorageService
}

type GenerateArtifactRequest struct {
	Type            models.ArtifactType `json:"type" validate:"required,oneof=script indicator"`
	Description     string              `json:"description" validate:"required,min=10"`
	StrategyDetails string              `json:"strategy_details,omitempty"`
	Tags            []string            `json:"tags,omitempty"`
}

func NewArtifactService(db *gorm.DB, generator codegen.Generator, storageService *StorageService) *ArtifactService {
	return &ArtifactService{
		db:             db,
		generator:      generator,
		storageService: storageService,
	}
}

// Generate produces a new artifact: code from the generator collaborator, a
// freshly minted license key, and a disarmed bot-control row, all persisted in
// one transaction.
func (s *ArtifactService) Generate(ownerID uuid.UUID, req *GenerateArtifactRequest) (*models.Artifact, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: owner", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if owner.Status != models.UserStatusActive {
		return nil, fmt.Errorf("%w: account is not active", ErrForbidden)
	}

	code, err := s.generator.Generate(codegen.GenerateRequest{
		Type:            req.Type,
		Description:     req.Description,
		StrategyDetails: req.StrategyDetails,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	licenseKey, err := utils.GenerateLicenseKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate license key: %w", err)
	}

	// Truncate on runes so a multi-byte character is never split.
	name := req.Description
	if runes := []rune(name); len(runes) > 50 {
		name = string(runes[:50])
	}

	artifact := &models.Artifact{
		OwnerID:     ownerID,
		Type:        req.Type,
		Name:        name,
		Description: req.Description,
		Code:        code,
		LicenseKey:  licenseKey,
		Tags:        req.Tags,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(artifact).Error; err != nil {
			return fmt.Errorf("failed to create artifact: %w", err)
		}
		control := &models.BotControl{
			ArtifactID:  artifact.ID,
			IsActive:    false,
			LastUpdated: time.Now(),
		}
		if err := tx.Create(control).Error; err != nil {
			return fmt.Errorf("failed to initialize bot control: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Archive the generated source asynchronously when S3 is configured.
	if s.storageService != nil {
		go s.archiveCode(artifact)
	}

	return artifact, nil
}

func (s *ArtifactService) GetArtifact(id, userID uuid.UUID) (*models.Artifact, error) {
	var artifact models.Artifact
	if err := s.db.Preload("BotControl").First(&artifact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if artifact.OwnerID != userID {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil || user.Role != models.UserRoleAdmin {
			return nil, fmt.Errorf("%w: not the artifact owner", ErrForbidden)
		}
	}

	return &artifact, nil
}

func (s *ArtifactService) ListArtifacts(ownerID uuid.UUID, params utils.PaginationParams) ([]models.Artifact, int64, error) {
	query := s.db.Model(&models.Artifact{}).Where("owner_id = ?", ownerID)

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count artifacts: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var artifacts []models.Artifact
	if err := query.Find(&artifacts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch artifacts: %w", err)
	}

	return artifacts, total, nil
}

// DeleteArtifact removes the artifact and cascades its assignments and bot
// control. Assignments are never deleted through any other path.
func (s *ArtifactService) DeleteArtifact(id, userID uuid.UUID) error {
	var artifact models.Artifact
	if err := s.db.First(&artifact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if artifact.OwnerID != userID {
		return fmt.Errorf("%w: not the artifact owner", ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artifact_id = ?", id).Delete(&models.LicenseAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete license assignments: %w", err)
		}
		if err := tx.Where("artifact_id = ?", id).Delete(&models.BotControl{}).Error; err != nil {
			return fmt.Errorf("failed to delete bot control: %w", err)
		}
		if err := tx.Delete(&artifact).Error; err != nil {
			return fmt.Errorf("failed to delete artifact: %w", err)
		}
		return nil
	})
}

func (s *ArtifactService) archiveCode(artifact *models.Artifact) {
	url, err := s.storageService.UploadArtifactCode(artifact)
	if err != nil {
		logrus.WithError(err).WithField("artifact_id", artifact.ID).Warn("Failed to archive artifact code")
		return
	}
	if url == "" {
		return
	}
	if err := s.db.Model(&models.Artifact{}).Where("id = ?", artifact.ID).
		Update("code_url", url).Error; err != nil {
		logrus.WithError(err).WithField("artifact_id", artifact.ID).Warn("Failed to store artifact code URL")
	}
}
