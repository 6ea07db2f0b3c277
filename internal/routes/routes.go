package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/procardhq/procard-backend/internal/config"
	"github.com/procardhq/procard-backend/internal/handlers"
	"github.com/procardhq/procard-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	cardHandler *handlers.CardHandler,
	publicHandler *handlers.PublicCardHandler,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Auth — public
	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Public card surface (no JWT). Registered before the protected card
	// routes so the JWT middleware never touches them.
	cards := api.Group("/cards")
	cards.Get("/public/v/:slug", publicHandler.ViewBySlug)
	cards.Get("/public/v/:slug/qr", publicHandler.GenerateQR)
	cards.Get("/public/v/:slug/vcf", publicHandler.GenerateVcf)
	cards.Get("/public/v/:slug/vcf/advanced", publicHandler.GenerateVcfAdvanced)
	cards.Post("/public/v/:slug/track", publicHandler.Track)

	// Protected card management (JWT required) - apply middleware to
	// individual routes so it cannot leak onto the public surface.
	cards.Post("/", middleware.JWTProtected(cfg), cardHandler.CreateCard)
	cards.Get("/", middleware.JWTProtected(cfg), cardHandler.ListCards)
	cards.Get("/trending", middleware.JWTProtected(cfg), cardHandler.Trending)
	cards.Get("/slug-availability", middleware.JWTProtected(cfg), cardHandler.SlugAvailability)
	cards.Post("/bulk/enabled", middleware.JWTProtected(cfg), cardHandler.BulkEnabled)
	cards.Get("/:id", middleware.JWTProtected(cfg), cardHandler.GetCard)
	cards.Patch("/:id", middleware.JWTProtected(cfg), cardHandler.UpdateCard)
	cards.Delete("/:id", middleware.JWTProtected(cfg), cardHandler.DeleteCard)
	cards.Get("/:id/qr/dataurl", middleware.JWTProtected(cfg), cardHandler.QRDataURL)

	// Webhooks — shared-secret auth (no JWT)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/revenuecat", webhookHandler.HandleRevenueCat)
}
