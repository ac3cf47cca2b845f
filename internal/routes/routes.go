package routes

import (
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Report *handlers.ReportHandler
	User   *handlers.UserHandler
	Upload *handlers.UploadHandler
	Health *handlers.HealthHandler
}

// Setup mounts every route. limiterStorage may be nil, in which case rate
// limit counters stay in memory.
func Setup(app *fiber.App, cfg *config.Config, tokens *services.TokenService, users repository.UserRepository, limiterStorage fiber.Storage, h Handlers) {
	protected := middleware.JWTProtected(tokens, users)
	optional := middleware.OptionalAuth(tokens, users)
	admin := middleware.AdminRequired()

	limit := func(name string, max int, message string) fiber.Handler {
		return middleware.RateLimit(name, max, cfg.RateLimitWindow, limiterStorage, message)
	}

	app.Get("/health", h.Health.Check)

	api := app.Group("/api")
	api.Get("/health", h.Health.Check)
	api.Use(limit("general", cfg.RateLimitGeneral, "Too many requests, please try again later"))

	// Auth: stricter limit on credential endpoints
	auth := api.Group("/auth")
	authLimit := limit("auth", cfg.RateLimitAuth, "Too many authentication attempts, please try again later")
	auth.Post("/register", authLimit, h.Auth.Register)
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Post("/google", authLimit, h.Auth.Google)
	auth.Post("/refresh", authLimit, h.Auth.Refresh)
	auth.Get("/me", protected, h.Auth.Me)
	auth.Post("/logout", protected, h.Auth.Logout)
	auth.Post("/verify", protected, h.Auth.Verify)

	// Reports: static paths before /:id
	reports := api.Group("/reports")
	reports.Get("/", optional, h.Report.List)
	reports.Get("/stats", h.Report.Stats)
	reports.Get("/my", protected, h.Report.Mine)
	reports.Get("/admin/pending", protected, admin, h.Report.Pending)
	reports.Get("/:id", optional, h.Report.Get)
	reports.Post("/", protected, limit("reports", cfg.RateLimitReports, "Too many reports submitted, please try again later"), h.Report.Create)
	reports.Put("/:id", protected, h.Report.Update)
	reports.Delete("/:id", protected, h.Report.Delete)
	reports.Post("/:id/vote", protected, limit("votes", cfg.RateLimitVotes, "Too many votes, please slow down"), h.Report.Vote)
	reports.Post("/:id/admin-action", protected, admin, h.Report.AdminAction)
	reports.Put("/:id/status", protected, admin, h.Report.UpdateStatus)

	userRoutes := api.Group("/users")
	userRoutes.Get("/profile", protected, h.User.Profile)
	userRoutes.Put("/profile", protected, h.User.UpdateProfile)
	userRoutes.Put("/password", protected, h.User.ChangePassword)
	userRoutes.Get("/", protected, admin, h.User.List)
	userRoutes.Get("/:id", h.User.Get)
	userRoutes.Put("/:id", protected, admin, h.User.AdminUpdate)
	userRoutes.Delete("/:id", protected, admin, h.User.Delete)
	userRoutes.Post("/:id/promote", protected, admin, h.User.Promote)
	userRoutes.Post("/:id/demote", protected, admin, h.User.Demote)

	upload := api.Group("/upload", protected)
	upload.Post("/image", h.Upload.Image)
	upload.Post("/avatar", h.Upload.Avatar)
}
