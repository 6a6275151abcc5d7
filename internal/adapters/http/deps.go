package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/wellpath/internal/adapters/postgres"
	"github.com/samirrijal/wellpath/internal/adapters/valkey"
	"github.com/samirrijal/wellpath/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Wells        *usecases.WellService
	Imports      *usecases.ImportService
	Trajectories *usecases.TrajectoryService
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
