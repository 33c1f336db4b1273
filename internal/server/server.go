// Package server contains the HTTP handlers and routing for the blog API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "ajayblog/docs" // swagger docs
	"ajayblog/internal/auth"
	"ajayblog/internal/config"
	"ajayblog/internal/database"
	"ajayblog/internal/featureflags"
	"ajayblog/internal/middleware"
	"ajayblog/internal/models"
	"ajayblog/internal/observability"
	"ajayblog/internal/repository"
	"ajayblog/internal/service"
	"ajayblog/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

const (
	uploadsPath = "/uploads"
	imageField  = "image"

	// multipart framing and text fields on top of the image itself
	formOverheadBytes = 1 << 20
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	files       afero.Fs
	store       *storage.LocalStore
	app         *fiber.App
	prom        *fiberprometheus.FiberPrometheus
	tokens      *auth.TokenService
	flags       *featureflags.Manager
	uploads     *service.UploadService
	postService *service.PostService
	authService *service.AuthService
}

// NewServerWithDeps creates a Server from already-initialized dependencies.
// redisClient may be nil, which disables the Redis-backed rate limits.
// Uploaded images are written to cfg.UploadDir on files.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, files afero.Fs) (*Server, error) {
	store, err := storage.NewLocalStore(files, cfg.UploadDir, uploadsPath)
	if err != nil {
		return nil, fmt.Errorf("upload area unavailable: %w", err)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	uploads := service.NewUploadService(store, cfg.UploadMaxBytes())

	serviceName := cfg.TracingServiceName
	if serviceName == "" {
		serviceName = "blog-api"
	}

	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		files:       files,
		store:       store,
		prom:        observability.HTTPMetrics(serviceName),
		tokens:      tokens,
		flags:       flags,
		uploads:     uploads,
		postService: service.NewPostService(repository.NewPostRepository(db), uploads, flags, cfg.DefaultAuthor),
		authService: service.NewAuthService(repository.NewAdminRepository(db), tokens),
	}, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Ajay Blog API",
		BodyLimit:    int(s.uploads.MaxBytes()) + formOverheadBytes,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Copies request, trace and admin IDs into the user context for logging
	app.Use(middleware.ContextMiddleware())

	if s.prom != nil {
		app.Use(s.prom.Middleware)
	}

	// Images are embedded by the public site, which may live on another origin.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests, &models.AppError{
				Code:    models.CodeRateLimited,
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
	}

	app.Use(s.store.Prefix(), filesystem.New(filesystem.Config{
		Root:   afero.NewHttpFs(s.files).Dir(s.store.Dir()),
		MaxAge: 3600,
	}))

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Blog API Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	requireAdmin := middleware.AdminRequired(s.tokens)
	// Logins fail closed in production when the limiter's store is down.
	loginPolicy := middleware.FailOpen
	if s.config.IsProduction() {
		loginPolicy = middleware.FailClosed
	}
	loginLimit := middleware.RateLimitWithPolicy(s.redis, 10, 5*time.Minute, loginPolicy, "login")
	writeLimit := middleware.RateLimit(s.redis, 30, time.Minute, "post_write")

	// The admin panel has used both login paths.
	api.Post("/auth/login", loginLimit, s.Login)
	api.Post("/admin/login", loginLimit, s.Login)
	api.Get("/auth/me", requireAdmin, s.GetCurrentAdmin)

	admin := api.Group("/admin")
	admin.Post("/admins", requireAdmin, writeLimit, s.CreateAdmin)
	admin.Get("/features", requireAdmin, s.GetFeatureFlags)

	blogs := api.Group("/blogs")
	blogs.Get("/", s.ListPosts)
	blogs.Get("/:id", s.GetPost)
	blogs.Post("/", requireAdmin, writeLimit, s.CreatePost)
	blogs.Put("/:id", requireAdmin, writeLimit, s.UpdatePost)
	blogs.Delete("/:id", requireAdmin, writeLimit, s.DeletePost)

	api.Get("/categories", s.GetCategories)

	api.All("/*", func(c *fiber.Ctx) error {
		return s.respondError(c, errRouteNotFound)
	})
}

// errorHandler converts errors that escape handlers and middleware, including
// Fiber's own (unknown route, oversized body), into the JSON error envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return s.respondError(c, errRouteNotFound)
		case fiber.StatusRequestEntityTooLarge:
			return s.respondError(c, models.NewPayloadTooLargeError(
				fmt.Sprintf("File too large (max %dMB)", s.uploads.MaxBytes()/(1024*1024))))
		case fiber.StatusBadRequest:
			return s.respondError(c, models.NewValidationError(fe.Message))
		}
		if fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message, Error: fe.Message})
		}
	}
	return s.respondError(c, err)
}

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
