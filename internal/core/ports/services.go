package ports

import (
	"context"

	"github.com/samirrijal/wellpath/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTrajectoryComputed(ctx context.Context, event *domain.TrajectoryComputed) error
	PublishImportFailed(ctx context.Context, event *domain.ImportFailed) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeTrajectoryComputed(ctx context.Context, handler func(ctx context.Context, event *domain.TrajectoryComputed) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
