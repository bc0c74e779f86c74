// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"snapgram/internal/auth"
	"snapgram/internal/bootstrap"
	"snapgram/internal/cache"
	"snapgram/internal/config"
	"snapgram/internal/middleware"
	"snapgram/internal/observability"
	"snapgram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	runtime        *bootstrap.Runtime
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *auth.SessionIssuer
	revocations    *cache.RevocationList
	userService    *service.UserService
	postService    *service.PostService
}

// NewServer connects every store named by cfg and builds the server on top.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithRuntime(cfg, rt), nil
}

// NewServerWithRuntime creates a Server using already-initialized
// dependencies. Tests use it with in-memory stores.
func NewServerWithRuntime(cfg *config.Config, rt *bootstrap.Runtime) *Server {
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	return &Server{
		config:         cfg,
		runtime:        rt,
		redis:          rt.Redis,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		sessions:       auth.NewSessionIssuer(cfg.JWTSecret),
		revocations:    cache.NewRevocationList(rt.Redis),
		userService:    service.NewUserService(rt.Users, rt.Posts, hasher, rt.Uploader),
		postService:    service.NewPostService(rt.Posts, rt.Users, rt.Uploader),
	}
}

// App builds the Fiber application once and returns it.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	bodyLimit := s.config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}
	s.app = fiber.New(fiber.Config{
		AppName:      "Snapgram API",
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing runs before the context middleware so the trace id is available
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Media is served cross-origin to the web client.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Snapgram Backend Metrics Dashboard",
	}))

	if s.config.MediaDriver == config.MediaLocal || s.config.MediaDriver == "" {
		app.Static("/media", s.config.MediaLocalDir)
	}

	requireAuth := middleware.AuthRequired(s.sessions, s.revocations)

	// Auth routes
	authRoutes := app.Group("/auth")
	authRoutes.Post("/signup", s.Signup)
	authRoutes.Post("/login", s.Login)
	authRoutes.Get("/logout", s.Logout)

	// User routes. /search before the generic /:id route
	users := app.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/search", s.SearchUsers)
	users.Get("/:id", s.GetUser)
	users.Patch("/:id", requireAuth, s.UpdateUser)
	users.Delete("/:id", requireAuth, s.DeleteUser)

	// Post routes. Fixed segments before the generic /:id route
	posts := app.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/add", requireAuth, s.CreatePost)
	posts.Patch("/like", requireAuth, s.ToggleLike)
	posts.Get("/userPost/:userId", s.GetUserPosts)
	posts.Patch("/patch/:id", requireAuth, s.UpdatePost)
	posts.Delete("/delete/:id", requireAuth, s.DeletePost)
	posts.Get("/:id", s.GetPost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it sessions simply cannot be revoked.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.runtime.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start serves the API on the configured port until Shutdown is called.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Run serves until ctx is cancelled, then shuts the server down. It returns
// only after the runtime has been closed.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() { listenErr <- s.Start() }()

	select {
	case err := <-listenErr:
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(err, s.runtime.Close(closeCtx))
	case <-ctx.Done():
	}

	middleware.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.Shutdown(shutdownCtx)
	return errors.Join(err, <-listenErr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.runtime.Close(ctx); err != nil {
		return fmt.Errorf("close runtime: %w", err)
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
