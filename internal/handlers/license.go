// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradeforge/tradeforge-backend/internal/middleware"
	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /licenses/assign
func (h *LicenseHandler) AssignLicense(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AssignLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	assignment, err := h.licenseService.Assign(userID, &req)
	if err != nil {
		handleServiceError(c, err, "License key")
		return
	}

	utils.CreatedResponse(c, gin.H{"assignment": assignment})
}

// GET /licenses/assignments/:id
func (h *LicenseHandler) GetAssignment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID", nil)
		return
	}

	assignment, err := h.licenseService.GetAssignment(id, userID)
	if err != nil {
		handleServiceError(c, err, "License assignment")
		return
	}

	utils.SuccessResponse(c, gin.H{"assignment": assignment})
}

// POST /licenses/assignments/:id/usage (owner context)
func (h *LicenseHandler) RecordUsage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID", nil)
		return
	}

	assignment, err := h.licenseService.RecordUsageForOwner(id, userID)
	if err != nil {
		handleServiceError(c, err, "License assignment")
		return
	}

	utils.SuccessResponse(c, gin.H{"assignment": assignment})
}

// POST /terminal/assignments/:id/usage (execution-agent context; the terminal
// reports a run under its license key, no bearer token involved)
func (h *LicenseHandler) RecordUsageForAgent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID", nil)
		return
	}

	assignment, err := h.licenseService.RecordUsage(id, middleware.GetLicenseKeyFromContext(c))
	if err != nil {
		handleServiceError(c, err, "License assignment")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"assignment_id": assignment.ID,
		"usage_count":   assignment.UsageCount,
		"is_active":     assignment.IsActive,
	})
}
