// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/config"
	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type CreatePaymentIntentRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" validate:"required"`
	Currency     string    `json:"currency,omitempty"`
}

type PaymentIntentResponse struct {
	ClientSecret  string    `json:"client_secret"`
	PaymentID     string    `json:"payment_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Status        string    `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
	TransactionID   uuid.UUID `json:"transaction_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: config,
	}
}

// CreateLicensePaymentIntent opens a Stripe payment for a priced license
// assignment and records the pending transaction.
func (s *PaymentService) CreateLicensePaymentIntent(userID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var assignment models.LicenseAssignment
	if err := s.db.Preload("Artifact").First(&assignment, req.AssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license assignment", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if assignment.Artifact.OwnerID != userID {
		return nil, fmt.Errorf("%w: not the artifact owner", ErrForbidden)
	}

	if assignment.PurchaseAmount == nil || *assignment.PurchaseAmount <= 0 {
		return nil, fmt.Errorf("%w: assignment has no purchase amount", ErrValidation)
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	// Stripe amounts are in cents.
	amountInCents := int64(*assignment.PurchaseAmount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("assignment_id", assignment.ID.String())
	params.AddMetadata("artifact_id", assignment.ArtifactID.String())
	params.AddMetadata("customer_email", assignment.CustomerEmail)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	transaction := &models.Transaction{
		BuyerEmail:       assignment.CustomerEmail,
		SellerID:         assignment.Artifact.OwnerID,
		ArtifactID:       assignment.ArtifactID,
		AssignmentID:     &assignment.ID,
		Amount:           *assignment.PurchaseAmount,
		Currency:         currency,
		PaymentReference: pi.ID,
		Status:           models.TransactionStatusPending,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret:  pi.ClientSecret,
		PaymentID:     pi.ID,
		TransactionID: transaction.ID,
		Status:        string(pi.Status),
	}, nil
}

func (s *PaymentService) ConfirmPayment(userID uuid.UUID, req *ConfirmPaymentRequest) (*models.Transaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	var transaction models.Transaction
	if err := s.db.First(&transaction, req.TransactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if transaction.SellerID != userID {
		return nil, fmt.Errorf("%w: not the transaction owner", ErrForbidden)
	}

	if transaction.PaymentReference != pi.ID {
		return nil, fmt.Errorf("%w: payment intent does not match transaction", ErrValidation)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment has not succeeded (status %s)", ErrValidation, pi.Status)
	}

	now := time.Now()
	transaction.Status = models.TransactionStatusCompleted
	transaction.ProcessedAt = &now

	if err := s.db.Save(&transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &transaction, nil
}

func (s *PaymentService) GetPaymentHistory(userID uuid.UUID, params utils.PaginationParams) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Where("seller_id = ?", userID).
		Preload("Artifact")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}
