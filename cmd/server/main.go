package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/cache"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/database"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/identity"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/logging"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/routes"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	logging.Setup(false)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.IsProduction())

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.GoogleClientID == "" {
		slog.Warn("GOOGLE_CLIENT_ID not set, google sign-in will reject every token")
	}

	ctx := context.Background()

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(cfg.IsProduction()),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanup, err := logging.StartCleanup(database.DB, logging.LogRetention)
	if err != nil {
		slog.Error("failed to schedule log cleanup", "error", err)
		os.Exit(1)
	}

	// Object storage
	var uploader storage.Uploader = storage.Disabled{}
	var bucket *storage.GCS
	if cfg.GCSBucket != "" {
		bucket, err = storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSPublicBaseURL)
		if err != nil {
			slog.Error("object storage unavailable", "bucket", cfg.GCSBucket, "error", err)
			os.Exit(1)
		}
		uploader = bucket
		slog.Info("object storage ready", "bucket", cfg.GCSBucket)
	} else {
		slog.Warn("GCS_BUCKET not set, uploads are disabled")
	}

	// Rate limit counters
	var limiterStorage fiber.Storage
	var redisStorage *cache.RedisStorage
	if cfg.RedisAddr != "" {
		redisStorage = cache.NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisStorage.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		limiterStorage = redisStorage
		slog.Info("rate limits stored in redis", "addr", cfg.RedisAddr)
	}

	verifier, err := identity.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		slog.Error("google verifier init failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	reportRepo := repository.NewReportRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)

	// Services
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	passwords := services.NewPasswordHasher(cfg.BcryptCost)
	authService := services.NewAuthService(userRepo, tokenService, passwords, verifier, cfg)
	userService := services.NewUserService(userRepo, passwords, uploader)
	reportService := services.NewReportService(reportRepo, voteRepo, uploader)
	voteService := services.NewVoteService(reportRepo, voteRepo)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadBytes + 1024*1024,
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction()),
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, tokenService, userRepo, limiterStorage, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService, userService),
		Report: handlers.NewReportHandler(reportService, voteService),
		User:   handlers.NewUserHandler(userService),
		Upload: handlers.NewUploadHandler(uploader, userService, cfg.MaxUploadBytes),
		Health: handlers.NewHealthHandler(cfg.Env, database.Ping),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	<-cleanup.Stop().Done()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisStorage != nil {
		if err := redisStorage.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if bucket != nil {
		if err := bucket.Close(); err != nil {
			slog.Error("storage client close error", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
