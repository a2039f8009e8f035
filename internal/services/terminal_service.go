// internal/services/terminal_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type TerminalService struct {
	db *gorm.DB
}

type ConnectTerminalRequest struct {
	AccountNumber string `json:"account_number" validate:"required"`
	Server        string `json:"server" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

func NewTerminalService(db *gorm.DB) *TerminalService {
	return &TerminalService{db: db}
}

// Connect links a MetaTrader account to the user. The same account number may
// only be linked once per user.
func (s *TerminalService) Connect(userID uuid.UUID, req *ConnectTerminalRequest) (*models.TerminalAccount, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var existing models.TerminalAccount
	if err := s.db.Where("user_id = ? AND account_number = ?", userID, req.AccountNumber).
		First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: terminal account already connected", ErrConflict)
	}

	account := &models.TerminalAccount{
		UserID:        userID,
		AccountNumber: req.AccountNumber,
		Server:        req.Server,
		Password:      utils.HashString(req.Password),
		Connected:     true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to connect terminal account: %w", err)
	}

	return account, nil
}

func (s *TerminalService) ListAccounts(userID uuid.UUID) ([]models.TerminalAccount, error) {
	var accounts []models.TerminalAccount
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch terminal accounts: %w", err)
	}
	return accounts, nil
}

func (s *TerminalService) Disconnect(userID, accountID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", accountID, userID).
		Delete(&models.TerminalAccount{})
	if res.Error != nil {
		return fmt.Errorf("failed to disconnect terminal account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: terminal account", ErrNotFound)
	}
	return nil
}
