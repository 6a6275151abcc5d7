package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/wellpath/internal/pkg/metrics"
)

// requestTimeout bounds every REST handler. Imports get longer.
const (
	requestTimeout = 15 * time.Second
	importTimeout  = 60 * time.Second
)

// plotSunset is when the legacy /plot alias goes away.
var plotSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/wells/:id/plot", SunsetDate: plotSunset, Alternative: "/v1/wells/:id/geometry"},
	}))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	get := func(path string, h fiber.Handler) {
		v1.Get(path, timeout.NewWithContext(h, requestTimeout))
	}

	get("/wells", ListWellsHandler(deps))
	v1.Post("/wells", timeout.NewWithContext(CreateWellHandler(deps), requestTimeout))
	get("/wells/nearby", NearbyWellsHandler(deps))
	get("/wells/:id", GetWellHandler(deps))
	get("/wells/:id/imports", WellImportsHandler(deps))
	v1.Post("/wells/:id/imports", timeout.NewWithContext(CreateImportHandler(deps), importTimeout))
	get("/wells/:id/trajectories", WellTrajectoriesHandler(deps))
	get("/wells/:id/geometry", WellGeometryHandler(deps))
	get("/wells/:id/plot", WellGeometryHandler(deps))

	get("/imports/:id", GetImportHandler(deps))

	get("/trajectories/:id", GetTrajectoryHandler(deps))
	v1.Delete("/trajectories/:id", timeout.NewWithContext(DeleteTrajectoryHandler(deps), requestTimeout))
	v1.Post("/trajectories/:id/activate", timeout.NewWithContext(ActivateTrajectoryHandler(deps), requestTimeout))
	get("/trajectories/:id/stations", TrajectoryStationsHandler(deps))
	get("/trajectories/:id/geometry", TrajectoryGeometryHandler(deps))
	get("/trajectories/:id/summary", TrajectorySummaryHandler(deps))
	get("/trajectories/:id/segment", TrajectorySegmentHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
