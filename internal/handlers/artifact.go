// internal/handlers/artifact.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type ArtifactHandler struct {
	artifactService *services.ArtifactService
	licenseService  *services.LicenseService
}

func NewArtifactHandler(artifactService *services.ArtifactService, licenseService *services.LicenseService) *ArtifactHandler {
	return &ArtifactHandler{
		artifactService: artifactService,
		licenseService:  licenseService,
	}
}

// POST /artifacts/generate
func (h *ArtifactHandler) GenerateArtifact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.GenerateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	artifact, err := h.artifactService.Generate(userID, &req)
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.CreatedResponse(c, gin.H{"artifact": artifact})
}

// GET /artifacts
func (h *ArtifactHandler) ListArtifacts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	artifacts, total, err := h.artifactService.ListArtifacts(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(artifacts, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /artifacts/:id
func (h *ArtifactHandler) GetArtifact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid artifact ID", nil)
		return
	}

	artifact, err := h.artifactService.GetArtifact(id, userID)
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.SuccessResponse(c, gin.H{"artifact": artifact})
}

// DELETE /artifacts/:id
func (h *ArtifactHandler) DeleteArtifact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid artifact ID", nil)
		return
	}

	if err := h.artifactService.DeleteArtifact(id, userID); err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Artifact deleted"})
}

// GET /artifacts/:id/analytics
func (h *ArtifactHandler) GetArtifactAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid artifact ID", nil)
		return
	}

	snapshot, assignments, err := h.licenseService.Analyze(id, userID)
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"analytics":   snapshot,
		"assignments": assignments,
	})
}

// POST /artifacts/:id/license-key
func (h *ArtifactHandler) IssueLicenseKey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid artifact ID", nil)
		return
	}

	artifact, err := h.licenseService.IssueKey(id, userID)
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"artifact_id": artifact.ID,
		"license_key": artifact.LicenseKey,
	})
}
