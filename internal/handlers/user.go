package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/dto"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/middleware"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

// UserHandler serves account management endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// FindUser looks a user up by ?username= and returns the public fields.
func (h *UserHandler) FindUser(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		apierrors.BadRequest(c, "username query parameter is required")
		return
	}

	user, err := h.userService.FindByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GetUser returns the full record to the user themself and the public fields otherwise.
func (h *UserHandler) GetUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	user, full, err := h.userService.GetInfo(c.Request.Context(), callerID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	if full {
		c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RenameUser changes the caller's username.
func (h *UserHandler) RenameUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	user, err := h.userService.Rename(c.Request.Context(), callerID, targetID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ChangePassword replaces the caller's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), callerID, targetID, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// DeleteUser soft deletes the caller's account and ends the session.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), callerID, targetID); err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
