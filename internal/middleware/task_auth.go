package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/logging"
	"github.com/yukikurage/earth-fighter-api/internal/models"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

// RequireTaskAccess loads the task named by :id and requires the caller to be
// a member of the task's organization.
func RequireTaskAccess(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := ParseID(c, "id")
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

		task, err := tasks.Get(c.Request.Context(), taskID, userID)
		if err != nil {
			apierrors.Respond(c, logging.FromContext(c), err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask returns the task loaded by RequireTaskAccess.
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}
