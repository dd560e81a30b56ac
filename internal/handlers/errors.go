package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/logging"
	"github.com/yukikurage/earth-fighter-api/internal/middleware"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

// respondError maps service errors that carry no authz category, then falls
// back to the category mapping.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.Respond(c, logging.FromContext(c), err)
	}
}

// currentUserID returns the authenticated user, answering 401 when absent.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return userID, exists
}

// invalidBody answers 400 with the binding error as details.
func invalidBody(c *gin.Context, err error) {
	apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
}
