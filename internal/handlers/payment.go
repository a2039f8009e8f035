// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	response, err := h.paymentService.CreateLicensePaymentIntent(userID, &req)
	if err != nil {
		handleServiceError(c, err, "License assignment")
		return
	}

	utils.CreatedResponse(c, response)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	transaction, err := h.paymentService.ConfirmPayment(userID, &req)
	if err != nil {
		handleServiceError(c, err, "Transaction")
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction": transaction})
}

// GET /payments/history
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.paymentService.GetPaymentHistory(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(transactions, total, params)
	utils.PaginatedResponse(c, result)
}
