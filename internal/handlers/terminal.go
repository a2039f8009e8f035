// internal/handlers/terminal.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type TerminalHandler struct {
	terminalService *services.TerminalService
}

func NewTerminalHandler(terminalService *services.TerminalService) *TerminalHandler {
	return &TerminalHandler{
		terminalService: terminalService,
	}
}

// POST /terminal/connect
func (h *TerminalHandler) ConnectAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ConnectTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	account, err := h.terminalService.Connect(userID, &req)
	if err != nil {
		handleServiceError(c, err, "Terminal account")
		return
	}

	utils.CreatedResponse(c, gin.H{"account": account})
}

// GET /terminal/accounts
func (h *TerminalHandler) ListAccounts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	accounts, err := h.terminalService.ListAccounts(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"accounts": accounts})
}

// DELETE /terminal/accounts/:id
func (h *TerminalHandler) DisconnectAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid account ID", nil)
		return
	}

	if err := h.terminalService.Disconnect(userID, accountID); err != nil {
		handleServiceError(c, err, "Terminal account")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Terminal account disconnected"})
}
