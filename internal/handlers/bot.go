// internal/handlers/bot.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradeforge/tradeforge-backend/internal/middleware"
	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

type BotHandler struct {
	botService *services.BotService
}

func NewBotHandler(botService *services.BotService) *BotHandler {
	return &BotHandler{
		botService: botService,
	}
}

// POST /bot/toggle
func (h *BotHandler) ToggleBot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ToggleBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	status, err := h.botService.Toggle(userID, &req)
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.SuccessResponse(c, status)
}

// GET /bot/status/:artifact_id (owner/dashboard view)
func (h *BotHandler) GetBotStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	artifactID, err := uuid.Parse(c.Param("artifact_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid artifact ID", nil)
		return
	}

	status, err := h.botService.StatusForOwner(artifactID, userID)
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.SuccessResponse(c, status)
}

// GET /terminal/bot/status/:artifact_id (polling gateway). Called at high
// frequency by trading terminals with the artifact's license key; no bearer
// token, no side effects, level-triggered semantics. On a storage failure the
// agent gets an error and stays in its last commanded state.
func (h *BotHandler) PollBotStatus(c *gin.Context) {
	artifactID, err := uuid.Parse(c.Param("artifact_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid artifact ID", nil)
		return
	}

	status, err := h.botService.StatusForAgent(artifactID, middleware.GetLicenseKeyFromContext(c))
	if err != nil {
		handleServiceError(c, err, "Artifact")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"artifact_id":  status.ArtifactID,
		"is_active":    status.IsActive,
		"last_updated": status.LastUpdated,
	})
}
