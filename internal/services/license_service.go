// internal/services/license_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type LicenseService struct {
	db *gorm.DB
}

type AssignLicenseRequest struct {
	LicenseKey     string `json:"license_key" validate:"required"`
	CustomerName   string `json:"customer_name" validate:"required"`
	CustomerEmail  string `json:"customer_email" validate:"required,email"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	PurchaseAmount string `json:"purchase_amount,omitempty"`
}

// AssignmentWithStatus decorates an assignment with its activity flag, which
// is derived from the expiration at read time and never persisted.
type AssignmentWithStatus struct {
	models.LicenseAssignment
	IsActive bool `json:"is_active"`
}

func NewLicenseService(db *gorm.DB) *LicenseService {
	return &LicenseService{db: db}
}

// IssueKey mints the license key for an artifact that does not have one yet.
// The key is generated fresh on every call; a failed issuance is retried with
// a new key, never by recovering an old one.
func (s *LicenseService) IssueKey(artifactID, userID uuid.UUID) (*models.Artifact, error) {
	var artifact models.Artifact
	if err := s.db.First(&artifact, artifactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.requireOwner(&artifact, userID); err != nil {
		return nil, err
	}

	if artifact.LicenseKey != "" {
		return nil, fmt.Errorf("%w: artifact already has a license key", ErrConflict)
	}

	key, err := utils.GenerateLicenseKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate license key: %w", err)
	}

	// Guard against concurrent issuance: the update only applies while the
	// key column is still empty.
	res := s.db.Model(&models.Artifact{}).
		Where("id = ? AND (license_key IS NULL OR license_key = '')", artifactID).
		Update("license_key", key)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to store license key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: artifact already has a license key", ErrConflict)
	}

	artifact.LicenseKey = key
	return &artifact, nil
}

// Assign binds a license key to a customer. Multiple assignments per key are
// allowed; each models one seat of the artifact's license.
func (s *LicenseService) Assign(userID uuid.UUID, req *AssignLicenseRequest) (*AssignmentWithStatus, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var artifact models.Artifact
	if err := s.db.Where("license_key = ?", req.LicenseKey).First(&artifact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license key", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.requireOwner(&artifact, userID); err != nil {
		return nil, err
	}

	expiresAt, err := parseExpiration(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	amount, err := parsePurchaseAmount(req.PurchaseAmount)
	if err != nil {
		return nil, err
	}

	assignment := &models.LicenseAssignment{
		ArtifactID:     artifact.ID,
		LicenseKey:     artifact.LicenseKey,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		ExpiresAt:      expiresAt,
		PurchaseAmount: amount,
	}

	if err := s.db.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create license assignment: %w", err)
	}

	return &AssignmentWithStatus{LicenseAssignment: *assignment, IsActive: assignment.IsActive()}, nil
}

// RecordUsage bumps the usage counter by exactly one. The increment runs as a
// single SQL update so concurrent calls never lose counts. When presentedKey
// is non-empty it must match the assignment's key (terminal-scoped access).
func (s *LicenseService) RecordUsage(assignmentID uuid.UUID, presentedKey string) (*AssignmentWithStatus, error) {
	var assignment models.LicenseAssignment
	if err := s.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license assignment", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if presentedKey != "" && presentedKey != assignment.LicenseKey {
		return nil, fmt.Errorf("%w: license key does not match assignment", ErrForbidden)
	}

	now := time.Now()
	if err := s.db.Model(&models.LicenseAssignment{}).
		Where("id = ?", assignmentID).
		UpdateColumns(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	if err := s.db.First(&assignment, assignmentID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &AssignmentWithStatus{LicenseAssignment: assignment, IsActive: assignment.IsActive()}, nil
}

// RecordUsageForOwner is the dashboard variant: the caller must own the
// assignment's artifact (or be an admin).
func (s *LicenseService) RecordUsageForOwner(assignmentID, userID uuid.UUID) (*AssignmentWithStatus, error) {
	var assignment models.LicenseAssignment
	if err := s.db.Preload("Artifact").First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license assignment", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.requireOwner(&assignment.Artifact, userID); err != nil {
		return nil, err
	}

	return s.RecordUsage(assignmentID, "")
}

// Analyze recomputes the artifact's license rollup from the current set of
// assignments. Nothing is cached; the snapshot always reflects the store.
func (s *LicenseService) Analyze(artifactID, userID uuid.UUID) (*models.AnalyticsSnapshot, []AssignmentWithStatus, error) {
	var artifact models.Artifact
	if err := s.db.First(&artifact, artifactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: artifact", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.requireOwner(&artifact, userID); err != nil {
		return nil, nil, err
	}

	var assignments []models.LicenseAssignment
	if err := s.db.Where("artifact_id = ?", artifactID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch license assignments: %w", err)
	}

	now := time.Now()
	snapshot := &models.AnalyticsSnapshot{}
	decorated := make([]AssignmentWithStatus, 0, len(assignments))

	for _, a := range assignments {
		active := a.IsActiveAt(now)
		snapshot.TotalLicenses++
		if active {
			snapshot.ActiveLicenses++
		} else {
			snapshot.ExpiredLicenses++
		}
		if a.PurchaseAmount != nil {
			snapshot.TotalRevenue += *a.PurchaseAmount
		}
		decorated = append(decorated, AssignmentWithStatus{LicenseAssignment: a, IsActive: active})
	}

	return snapshot, decorated, nil
}

func (s *LicenseService) GetAssignment(assignmentID, userID uuid.UUID) (*AssignmentWithStatus, error) {
	var assignment models.LicenseAssignment
	if err := s.db.Preload("Artifact").First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license assignment", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.requireOwner(&assignment.Artifact, userID); err != nil {
		return nil, err
	}

	return &AssignmentWithStatus{LicenseAssignment: assignment, IsActive: assignment.IsActive()}, nil
}

func (s *LicenseService) requireOwner(artifact *models.Artifact, userID uuid.UUID) error {
	if artifact.OwnerID == userID {
		return nil
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("%w: not the artifact owner", ErrForbidden)
	}
	if user.Role != models.UserRoleAdmin {
		return fmt.Errorf("%w: not the artifact owner", ErrForbidden)
	}
	return nil
}

func parseExpiration(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	// Accept full instants and bare dates; a past instant is legal and simply
	// yields an already-expired assignment.
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: expires_at must be an ISO-8601 instant or date", ErrValidation)
}

func parsePurchaseAmount(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}

	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase_amount must be a decimal number", ErrValidation)
	}
	// ParseFloat accepts "NaN" and "Inf"; neither is a price.
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: purchase_amount must be a finite number", ErrValidation)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: purchase_amount must be non-negative", ErrValidation)
	}
	return &amount, nil
}
