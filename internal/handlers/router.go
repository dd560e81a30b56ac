package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/earth-fighter-api/internal/auth"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
	"github.com/yukikurage/earth-fighter-api/internal/logging"
	"github.com/yukikurage/earth-fighter-api/internal/metrics"
	"github.com/yukikurage/earth-fighter-api/internal/middleware"
	"github.com/yukikurage/earth-fighter-api/internal/services"
)

// RouterDeps holds everything the HTTP layer needs.
type RouterDeps struct {
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
	SessionStore sessions.Store
	Tokens       *auth.TokenIssuer

	AuthService         *services.AuthService
	UserService         *services.UserService
	OrganizationService *services.OrganizationService
	TaskService         *services.TaskService
}

// NewRouter builds the gin engine with all API routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(deps.Logger))
	r.Use(deps.Metrics.Middleware())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	authHandler := NewAuthHandler(deps.AuthService, deps.Tokens)
	userHandler := NewUserHandler(deps.UserService)
	orgHandler := NewOrganizationHandler(deps.OrganizationService)
	taskHandler := NewTaskHandler(deps.TaskService)

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.AuthService)
	requireMember := middleware.RequireOrganizationMember(deps.OrganizationService)
	requireTask := middleware.RequireTaskAccess(deps.TaskService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Earth Fighter API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.FindUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id/username", userHandler.RenameUser)
			users.PUT("/:id/password", userHandler.ChangePassword)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		orgs := api.Group("/organizations")
		orgs.Use(requireAuth)
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/:id", requireMember, orgHandler.GetOrganization)
			orgs.DELETE("/:id", orgHandler.DeleteOrganization)
			orgs.POST("/:id/join", orgHandler.JoinOrganization)
			orgs.POST("/:id/leave", orgHandler.LeaveOrganization)
			orgs.GET("/:id/members", requireMember, orgHandler.ListMembers)
			orgs.GET("/:id/tasks", requireMember, taskHandler.ListOrganizationTasks)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/drafts", taskHandler.GenerateDrafts)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/accept", taskHandler.AcceptTask)
			tasks.POST("/:id/abandon", taskHandler.AbandonTask)
			tasks.POST("/:id/submit", taskHandler.SubmitTask)
			tasks.POST("/:id/confirm", taskHandler.ConfirmTask)
		}
	}

	return r
}
