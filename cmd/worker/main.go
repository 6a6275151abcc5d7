package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/wellpath/internal/adapters/nats"
	"github.com/samirrijal/wellpath/internal/adapters/postgres"
	"github.com/samirrijal/wellpath/internal/adapters/valkey"
	"github.com/samirrijal/wellpath/internal/core/ports"
	"github.com/samirrijal/wellpath/internal/core/usecases"
	"github.com/samirrijal/wellpath/internal/pkg/config"
	"github.com/samirrijal/wellpath/internal/pkg/logging"
	"github.com/samirrijal/wellpath/internal/pkg/telemetry"
	"github.com/samirrijal/wellpath/internal/workflows"
)

func main() {
	cfg, err := config.Load("wellpath-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, "wellpath-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, warm-up disabled", "error", err)
	} else {
		cache = vc
		defer vc.Close()
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	wellRepo := postgres.NewWellRepo(db)
	trajRepo := postgres.NewTrajectoryRepo(db)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.SurveyImportWorkflow)
	w.RegisterActivity(&workflows.SurveyImportActivities{
		Imports: usecases.NewImportService(wellRepo, postgres.NewImportRepo(db), trajRepo, publisher, cfg.Geometry.Sanitizer()),
		Trajectories: usecases.NewTrajectoryService(wellRepo, trajRepo, cache, cfg.Geometry.Compositor()).
			WithDescriptorTTL(cfg.Cache.DescriptorTTL),
	})

	slog.Info("survey import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
