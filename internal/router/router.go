package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/institute-api/internal/config"
	"github.com/noah-isme/institute-api/internal/handler"
	"github.com/noah-isme/institute-api/internal/middleware"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/observability"
	"github.com/noah-isme/institute-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EventHandler       *handler.EventHandler
	AchievementHandler *handler.AchievementHandler
	TestimonialHandler *handler.TestimonialHandler
	SponsorHandler     *handler.SponsorHandler
	CategoryHandler    *handler.CategoryHandler
	SettingsHandler    *handler.SettingsHandler

	AdminEventHandler       *handler.AdminEventHandler
	AdminAchievementHandler *handler.AdminAchievementHandler
	AdminTestimonialHandler *handler.AdminTestimonialHandler
	AdminSponsorHandler     *handler.AdminSponsorHandler
	AdminCategoryHandler    *handler.AdminCategoryHandler
	AdminSettingsHandler    *handler.AdminSettingsHandler
	AdminActivityHandler    *handler.AdminActivityHandler
	AdminAnalyticsHandler   *handler.AdminAnalyticsHandler
	UploadHandler           *handler.UploadHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	events := api.Group("/events")
	if deps.EventHandler != nil {
		deps.EventHandler.Register(events)
	}
	if deps.AchievementHandler != nil {
		deps.AchievementHandler.Register(api.Group("/achievements"))
	}
	if deps.TestimonialHandler != nil {
		// Submission is open to the public, so the whole group is rate limited.
		deps.TestimonialHandler.Register(api.Group("/testimonials",
			middleware.RateLimit("testimonials", 30, time.Minute)))
	}
	if deps.SponsorHandler != nil {
		deps.SponsorHandler.Register(api.Group("/sponsors"), events)
	}
	if deps.CategoryHandler != nil {
		deps.CategoryHandler.Register(api.Group("/categories"))
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.Register(api.Group("/settings"))
	}

	registerAdmin(api, cfg, deps)
}

// registerAdmin wires the protected admin surface. When no admin secret is
// configured the routes answer 503 instead of silently accepting traffic.
func registerAdmin(api fiber.Router, cfg config.Config, deps Dependencies) {
	if !cfg.AdminEnabled() {
		api.Use("/admin", func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "admin interface is disabled")
		})
		return
	}

	admin := api.Group("/admin",
		middleware.JWTProtected(cfg.AdminJWTSecret),
		middleware.RequireRole(models.AdminRoleAdmin, models.AdminRoleSuperAdmin),
	)

	adminEvents := admin.Group("/events")
	if deps.AdminEventHandler != nil {
		deps.AdminEventHandler.Register(adminEvents)
	}
	if deps.AdminAchievementHandler != nil {
		deps.AdminAchievementHandler.Register(admin.Group("/achievements"))
	}
	if deps.AdminTestimonialHandler != nil {
		deps.AdminTestimonialHandler.Register(admin.Group("/testimonials"))
	}
	if deps.AdminSponsorHandler != nil {
		deps.AdminSponsorHandler.Register(admin.Group("/sponsors"))
		deps.AdminSponsorHandler.RegisterEventLinks(adminEvents)
	}
	if deps.AdminCategoryHandler != nil {
		deps.AdminCategoryHandler.Register(admin.Group("/categories"))
	}
	if deps.AdminSettingsHandler != nil {
		deps.AdminSettingsHandler.Register(admin.Group("/settings"))
	}
	if deps.AdminActivityHandler != nil {
		activity := admin.Group("/activity")
		// Bulk deletion of the audit trail is reserved for super admins.
		activity.Use("/cleanup", middleware.RequireRole(models.AdminRoleSuperAdmin))
		deps.AdminActivityHandler.Register(activity)
	}
	if deps.AdminAnalyticsHandler != nil {
		deps.AdminAnalyticsHandler.Register(admin.Group("/analytics"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(admin.Group("/uploads"))
	}
}
