package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/wellpath/internal/adapters/nats"
	"github.com/samirrijal/wellpath/internal/adapters/postgres"
	"github.com/samirrijal/wellpath/internal/adapters/valkey"
	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/usecases"
	"github.com/samirrijal/wellpath/internal/pkg/config"
	"github.com/samirrijal/wellpath/internal/pkg/logging"
)

const durableName = "wellpath-warmer"

type geometryWarmer interface {
	Warm(ctx context.Context, trajectoryID string) error
}

// warmHandler precomputes the geometry of each new trajectory. Trajectories
// deleted before the event arrives are acknowledged and skipped.
func warmHandler(svc geometryWarmer) func(ctx context.Context, event *domain.TrajectoryComputed) error {
	return func(ctx context.Context, event *domain.TrajectoryComputed) error {
		err := svc.Warm(ctx, event.TrajectoryID)
		switch {
		case err == nil:
			slog.Info("geometry warmed", "well_id", event.WellID, "trajectory_id", event.TrajectoryID)
			return nil
		case errors.Is(err, domain.ErrNotFound):
			slog.Info("trajectory gone, skipping", "trajectory_id", event.TrajectoryID)
			return nil
		default:
			slog.Error("geometry warm-up failed", "trajectory_id", event.TrajectoryID, "error", err)
			return err
		}
	}
}

func main() {
	cfg, err := config.Load("wellpath-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "wellpath-warmer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Without a cache there is nothing to warm.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	trajSvc := usecases.NewTrajectoryService(postgres.NewWellRepo(db), postgres.NewTrajectoryRepo(db), cache, cfg.Geometry.Compositor()).
		WithDescriptorTTL(cfg.Cache.DescriptorTTL)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, durableName)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	if err := sub.SubscribeTrajectoryComputed(ctx, warmHandler(trajSvc)); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("geometry warmer started", "durable", durableName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("geometry warmer stopping")
}
