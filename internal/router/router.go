package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/config"
	"github.com/noah-isme/dsbe-portal-api/internal/handler"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB    *gorm.DB
	Cache *redis.Client

	ContentHandler    *handler.ContentHandler
	AuthHandler       *handler.AuthHandler
	SubmissionHandler *handler.SubmissionHandler
	LookupHandler     *handler.LookupHandler
	AdminHandler      *handler.AdminHandler
	DatasetHandler    *handler.DatasetHandler
	FeedHandler       *handler.FeedHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Public v1 group
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Cache))

	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(api)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api)
	}
	if deps.LookupHandler != nil {
		deps.LookupHandler.Register(api)
	}

	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// The feed authenticates from a query token, so it is mounted before the
	// header-only admin group claims the prefix.
	if deps.FeedHandler != nil {
		feed := app.Group("/api/admin/feed", middleware.JWTProtectedQuery(cfg.JWTSecret, "token"), adminOnly)
		deps.FeedHandler.Register(feed)
	}

	admin := app.Group("/api/admin", middleware.JWTProtected(cfg.JWTSecret), adminOnly)
	if deps.AdminHandler != nil {
		deps.AdminHandler.Register(admin)
	}
	if deps.DatasetHandler != nil {
		deps.DatasetHandler.Register(admin)
	}
}
