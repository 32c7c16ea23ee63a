package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/neverbeen/internal/pkg/metrics"
)

// RouteOptions tunes the router. The zero value is usable.
type RouteOptions struct {
	// RateLimit is the number of requests per minute per IP. Zero disables limiting.
	RateLimit   int
	OpenAPIPath string
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts RouteOptions) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Request ID onto the context used for logging
	app.Use(RequestContextMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Post("/sessions", timeout.NewWithContext(CreateSessionHandler(deps), 15*time.Second))
	v1.Get("/sessions/:id", timeout.NewWithContext(GetSessionHandler(deps), 15*time.Second))
	v1.Put("/sessions/:id/origin", timeout.NewWithContext(SetOriginHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/origin/geolocation", timeout.NewWithContext(GeolocationOriginHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/origin/place", timeout.NewWithContext(PlaceOriginHandler(deps), 15*time.Second))
	v1.Put("/sessions/:id/radius", timeout.NewWithContext(SetRadiusHandler(deps), 15*time.Second))
	v1.Put("/sessions/:id/unit", timeout.NewWithContext(SetUnitHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/samples", timeout.NewWithContext(SampleHandler(deps), 15*time.Second))
	v1.Get("/places/search", timeout.NewWithContext(SearchPlacesHandler(deps), 15*time.Second))

	// Stateless tools
	v1.Get("/distance", DistanceHandler())
	v1.Get("/dms", DMSHandler())
	v1.Post("/dms/decimal", DMSToDecimalHandler())

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, opts.OpenAPIPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Feed)))
}
