package constants

const (
	// Session and context keys
	SessionCookieName      = "earth_fighter_session"
	ContextKeyUserID       = "user_id"
	ContextKeyRequestID    = "request_id"
	ContextKeyOrganization = "organization"
	ContextKeyTask         = "task"

	HeaderRequestID = "X-Request-ID"

	// Validation
	MinPasswordLength = 6
	MaxUsernameLength = 50
	InviteCodeLength  = 6

	// AI drafting
	MaxAIGeneratedTasks = 20
)
