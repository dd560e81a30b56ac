package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yukikurage/earth-fighter-api/internal/auth"
	"github.com/yukikurage/earth-fighter-api/internal/config"
	"github.com/yukikurage/earth-fighter-api/internal/database"
	"github.com/yukikurage/earth-fighter-api/internal/handlers"
	"github.com/yukikurage/earth-fighter-api/internal/lifecycle"
	"github.com/yukikurage/earth-fighter-api/internal/logging"
	"github.com/yukikurage/earth-fighter-api/internal/metrics"
	"github.com/yukikurage/earth-fighter-api/internal/repository"
	"github.com/yukikurage/earth-fighter-api/internal/services"
	"github.com/yukikurage/earth-fighter-api/internal/telemetry"
	"github.com/yukikurage/earth-fighter-api/internal/utils"
)

const serviceName = "earth-fighter-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(false)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	gin.SetMode(cfg.GinMode)
	log := logging.New(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	}()

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.MigrateDatabase(db, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Setup session store with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	domain := cfg.Domain()
	m := metrics.New()

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// The drafter stays a nil interface when no key is configured.
	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Logger:              log,
		Metrics:             m,
		SessionStore:        store,
		Tokens:              auth.NewTokenIssuer([]byte(cfg.JWTSecret), serviceName, time.Duration(cfg.JWTExpiryMins)*time.Minute),
		AuthService:         services.NewAuthService(userRepo, m),
		UserService:         services.NewUserService(userRepo),
		OrganizationService: services.NewOrganizationService(orgRepo, domain, utils.NewInviteCodeGenerator(), m),
		TaskService:         services.NewTaskService(taskRepo, orgRepo, lifecycle.NewEngine(domain, time.Now), drafter, m),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Strs("organization_types", domain.OrganizationTypes()).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	shutdown(srv, log)
}

func shutdown(srv *http.Server, log zerolog.Logger) {
	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
