package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/logging"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

// RequireOrganizationMember loads the organization named by :id and requires
// the caller to be a member of it.
func RequireOrganizationMember(orgs *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := ParseID(c, "id")
		if !ok {
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		org, err := orgs.Get(c.Request.Context(), userID, orgID)
		if err != nil {
			apierrors.Respond(c, logging.FromContext(c), err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyOrganization, org)
		c.Next()
	}
}

// GetOrganization returns the organization loaded by RequireOrganizationMember.
func GetOrganization(c *gin.Context) (*models.Organization, bool) {
	v, exists := c.Get(constants.ContextKeyOrganization)
	if !exists {
		return nil, false
	}
	org, ok := v.(*models.Organization)
	return org, ok
}
