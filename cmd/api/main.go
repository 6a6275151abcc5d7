package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/wellpath/internal/adapters/http"
	natsadapter "github.com/samirrijal/wellpath/internal/adapters/nats"
	"github.com/samirrijal/wellpath/internal/adapters/postgres"
	"github.com/samirrijal/wellpath/internal/adapters/valkey"
	"github.com/samirrijal/wellpath/internal/core/ports"
	"github.com/samirrijal/wellpath/internal/core/usecases"
	"github.com/samirrijal/wellpath/internal/pkg/config"
	"github.com/samirrijal/wellpath/internal/pkg/logging"
	"github.com/samirrijal/wellpath/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("wellpath-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "wellpath-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		cache = vc
		defer vc.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	wellRepo := postgres.NewWellRepo(db)
	importRepo := postgres.NewImportRepo(db)
	trajRepo := postgres.NewTrajectoryRepo(db)

	// Use cases
	wellSvc := usecases.NewWellService(wellRepo, cache).WithNearbyTTL(cfg.Cache.NearbyTTL)
	importSvc := usecases.NewImportService(wellRepo, importRepo, trajRepo, publisher, cfg.Geometry.Sanitizer())
	trajSvc := usecases.NewTrajectoryService(wellRepo, trajRepo, cache, cfg.Geometry.Compositor()).
		WithDescriptorTTL(cfg.Cache.DescriptorTTL)

	deps := &http.Dependencies{
		Wells:        wellSvc,
		Imports:      importSvc,
		Trajectories: trajSvc,
		NATS:         natsConn,
		DB:           db,
		Cache:        vc,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    8 * 1024 * 1024, // surveys with mechanical sheets
		AppName:      "WellPath API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Link, Location, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
