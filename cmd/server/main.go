package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/config"
	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/database"
	"github.com/yukikurage/project-todo-api/internal/handlers"
	"github.com/yukikurage/project-todo-api/internal/logger"
	"github.com/yukikurage/project-todo-api/internal/media"
	"github.com/yukikurage/project-todo-api/internal/middleware"
	"github.com/yukikurage/project-todo-api/internal/notification"
	"github.com/yukikurage/project-todo-api/internal/ratelimit"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"github.com/yukikurage/project-todo-api/internal/services"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.IsRelease())
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, logger.Gorm(cfg.IsRelease()))
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run migrations and seed reference data
	if err := database.MigrateDatabase(db, log); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.Seed(db); err != nil {
		log.Error("Failed to seed database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, mediaRoot, err := newMediaStore(ctx, cfg)
	if err != nil {
		log.Error("Failed to set up media storage", "error", err)
		os.Exit(1)
	}

	limiter, err := newLimiter(cfg)
	if err != nil {
		log.Error("Failed to set up rate limiter", "error", err)
		os.Exit(1)
	}

	r := newRouter(cfg, log, db, newGateway(cfg, log), store, mediaRoot, limiter)
	startServerWithGracefulShutdown(log, cfg.Addr, r)
}

func newGateway(cfg *config.Config, log *slog.Logger) notification.Gateway {
	if cfg.EmailHost == "" {
		log.Warn("EMAIL_HOST is not set, outgoing mail is only logged")
		return notification.NewLogGateway(log)
	}

	return notification.NewSMTPGateway(notification.SMTPConfig{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPassword,
		From:     cfg.EmailFrom,
	})
}

// newMediaStore returns the store and, for the local backend, the directory to serve.
func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, string, error) {
	if cfg.MediaBackend == config.MediaBackendS3 {
		store, err := media.NewS3Store(ctx, media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		return store, "", err
	}

	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		return nil, "", err
	}
	return media.NewLocalStore(cfg.MediaRoot), cfg.MediaRoot, nil
}

func newLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.ValkeyAddr == "" {
		return ratelimit.NewMemoryLimiter(cfg.OTPRatePerMin), nil
	}

	client, err := ratelimit.NewValkeyClient(cfg.ValkeyAddr, cfg.ValkeyPassword)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewValkeyLimiter(client, cfg.OTPRatePerMin), nil
}

func newRouter(
	cfg *config.Config,
	log *slog.Logger,
	db *gorm.DB,
	gateway notification.Gateway,
	store media.Store,
	mediaRoot string,
	limiter ratelimit.Limiter,
) *gin.Engine {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Services
	tokenService := services.NewTokenService(cfg.JWTSecretKey, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	userService := services.NewUserService(userRepo, roleRepo)
	roleService := services.NewRoleService(roleRepo)
	otpService := services.NewOTPService(repository.NewOTPRepository(db), cfg.OTPTTL)
	referenceService := services.NewReferenceService(repository.NewReferenceRepository(db))
	projectService := services.NewProjectService(projectRepo, userRepo)
	invitationService := services.NewInvitationService(repository.NewInvitationRepository(db), projectRepo, userRepo, gateway, log)
	aiService := services.NewAIService(cfg.OpenAIAPIKey)
	if !aiService.Enabled() {
		log.Warn("OPENAI_API_KEY is not set, task suggestions are disabled")
	}
	taskService := services.NewTaskService(repository.NewTaskRepository(db), projectRepo, projectService, referenceService, aiService)
	authService := services.NewAuthService(userService, tokenService, otpService, gateway, log)

	if cfg.AdminEmail != "" {
		if err := userService.EnsureRole(cfg.AdminEmail, constants.RoleAdmin); err != nil {
			log.Warn("Failed to grant admin role", "email", cfg.AdminEmail, "error", err)
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService, store, cfg.PublicBaseURL)
	userHandler := handlers.NewUserHandler(userService, cfg.PublicBaseURL)
	roleHandler := handlers.NewRoleHandler(roleService)
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	projectHandler := handlers.NewProjectHandler(projectService, cfg.PublicBaseURL)
	invitationHandler := handlers.NewInvitationHandler(invitationService, cfg.PublicBaseURL)
	taskHandler := handlers.NewTaskHandler(taskService, cfg.PublicBaseURL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
	}))
	r.Use(gzip.Gzip(
		gzip.DefaultCompression,
		// Don't compress already compressed files
		gzip.WithExcludedExtensions([]string{".png", ".gif", ".jpeg", ".jpg", ".webp", ".ico", ".svg"}),
	))

	if mediaRoot != "" {
		r.Static(media.URLPrefix, mediaRoot)
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"message": "Project To-Do API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokenService, userService)
	requireAdmin := middleware.RequireRole(constants.RoleAdmin)
	requireMember := middleware.RequireProjectMember(projectService)
	requireTask := middleware.RequireTaskAccess(taskService)
	throttle := ratelimit.Middleware(limiter, log)

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/otp", throttle, authHandler.SendOTP)
		auth.POST("/otp/check", authHandler.CheckOTP)
		auth.POST("/forgot-password", throttle, authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/token/refresh", authHandler.RefreshToken)
		auth.POST("/logout", requireAuth, authHandler.Logout)
		auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
		auth.POST("/upload", requireAuth, authHandler.UploadFile)
		auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		auth.PATCH("/me", requireAuth, authHandler.UpdateCurrentUser)
	}

	// User routes
	users := r.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.POST("", requireAdmin, userHandler.CreateUser)
		users.PUT("/:id", requireAdmin, userHandler.ReplaceUser)
		users.PATCH("/:id", requireAdmin, userHandler.PatchUser)
		users.DELETE("/:id", requireAdmin, userHandler.DeleteUser)
	}

	// Role routes
	roles := r.Group("/roles")
	roles.Use(requireAuth)
	{
		roles.GET("", roleHandler.ListRoles)
		roles.GET("/:id", roleHandler.GetRole)
		roles.POST("", requireAdmin, roleHandler.CreateRole)
		roles.PATCH("/:id", requireAdmin, roleHandler.UpdateRole)
		roles.DELETE("/:id", requireAdmin, roleHandler.DeleteRole)
	}

	// Reference data
	statuses := r.Group("/task-statuses")
	statuses.Use(requireAuth)
	{
		statuses.GET("", referenceHandler.ListStatuses)
		statuses.POST("", requireAdmin, referenceHandler.CreateStatus)
	}
	priorities := r.Group("/priorities")
	priorities.Use(requireAuth)
	{
		priorities.GET("", referenceHandler.ListPriorities)
		priorities.POST("", requireAdmin, referenceHandler.CreatePriority)
	}

	// Project routes
	projects := r.Group("/projects")
	projects.Use(requireAuth)
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("/:id", requireMember, projectHandler.GetProject)
		projects.PATCH("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
		projects.DELETE("/:id/participants/:user_id", projectHandler.RemoveParticipant)
		projects.GET("/:id/tasks", requireMember, taskHandler.ListProjectTasks)
		projects.POST("/:id/tasks", requireMember, taskHandler.CreateTask)
		projects.POST("/:id/tasks/suggest", requireMember, taskHandler.SuggestTasks)

		invitations := projects.Group("/invitations")
		{
			invitations.POST("", invitationHandler.CreateInvitation)
			invitations.GET("/received", invitationHandler.ListReceived)
			invitations.GET("/sent", invitationHandler.ListSent)
			invitations.POST("/:id/accept", invitationHandler.Accept)
			invitations.POST("/:id/decline", invitationHandler.Decline)
		}
	}

	// Task routes
	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", requireTask, taskHandler.GetTask)
		tasks.PATCH("/:id", requireTask, taskHandler.UpdateTask)
		tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
	}

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func startServerWithGracefulShutdown(log *slog.Logger, addr string, handler http.Handler) {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Info("Server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server gracefully stopped")
}
