package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/earth-fighter-api/internal/authz"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	apierrors "github.com/yukikurage/earth-fighter-api/internal/errors"
	"github.com/yukikurage/earth-fighter-api/internal/logging"
	"github.com/yukikurage/earth-fighter-api/internal/models"
)

// TokenValidator resolves a bearer token to a user ID.
type TokenValidator interface {
	Validate(token string) (uint64, error)
}

// UserResolver loads a live user. A deleted or unknown user must come back
// as an error matching authz.ErrNotFound.
type UserResolver interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth accepts a bearer token or, without an Authorization header,
// the session cookie. Either way the user must still exist.
func RequireAuth(tokens TokenValidator, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokens == nil {
				apierrors.Unauthorized(c, "Unsupported authorization scheme")
				c.Abort()
				return
			}
			userID, err := tokens.Validate(strings.TrimSpace(raw))
			if err != nil {
				apierrors.Unauthorized(c, "Invalid or expired token")
				c.Abort()
				return
			}
			if !requireLiveUser(c, users, userID) {
				return
			}
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		id, ok := GetUserID(c)
		if !ok {
			session.Clear()
			_ = session.Save()
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !requireLiveUser(c, users, id) {
			session.Clear()
			_ = session.Save()
			return
		}
		c.Next()
	}
}

// requireLiveUser aborts with 401 when the user is gone. On false the
// response has been written.
func requireLiveUser(c *gin.Context, users UserResolver, userID uint64) bool {
	if users == nil {
		return true
	}
	if _, err := users.GetUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			apierrors.Unauthorized(c, "Account no longer exists")
		} else {
			apierrors.Respond(c, logging.FromContext(c), err)
		}
		c.Abort()
		return false
	}
	return true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// ParseID reads a positive numeric path parameter. On failure it has already
// written a 400 response.
func ParseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
