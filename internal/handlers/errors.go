// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

// handleServiceError maps the service-layer error kinds onto the response
// envelope. Anything unrecognized is a storage or downstream failure and is
// surfaced as INTERNAL_ERROR for the caller to retry explicitly.
func handleServiceError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
