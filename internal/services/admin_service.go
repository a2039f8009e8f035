// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=pending active suspended"`
	Reason string            `json:"reason,omitempty"`
}

type DashboardStats struct {
	TotalUsers        int64   `json:"total_users"`
	TotalArtifacts    int64   `json:"total_artifacts"`
	TotalAssignments  int64   `json:"total_assignments"`
	ArmedBots         int64   `json:"armed_bots"`
	TotalRevenue      float64 `json:"total_revenue"`
	PendingUsers      int64   `json:"pending_users"`
	TerminalsLinked   int64   `json:"terminals_linked"`
	TransactionsMonth int64   `json:"transactions_month"`
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService) *AdminService {
	return &AdminService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusPending).Count(&stats.PendingUsers)
	s.db.Model(&models.Artifact{}).Count(&stats.TotalArtifacts)
	s.db.Model(&models.LicenseAssignment{}).Count(&stats.TotalAssignments)
	s.db.Model(&models.BotControl{}).Where("is_active = ?", true).Count(&stats.ArmedBots)
	s.db.Model(&models.TerminalAccount{}).Count(&stats.TerminalsLinked)
	s.db.Model(&models.Transaction{}).
		Where("status = ? AND created_at >= date_trunc('month', now())", models.TransactionStatusCompleted).
		Count(&stats.TransactionsMonth)

	var revenue struct{ Total float64 }
	if err := s.db.Model(&models.LicenseAssignment{}).
		Select("COALESCE(SUM(purchase_amount), 0) AS total").
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	stats.TotalRevenue = revenue.Total

	return stats, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// UpdateUserStatus moves an account between pending, active, and suspended.
// Suspended users cannot generate artifacts or toggle bots.
func (s *AdminService) UpdateUserStatus(userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.Status = req.Status
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	if s.notificationService != nil {
		go func() {
			if err := s.notificationService.SendAccountStatusEmail(&user); err != nil {
				logrus.WithError(err).Warn("Failed to send account status email")
			}
		}()
	}

	return &user, nil
}
