package ports

import (
	"context"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSample(ctx context.Context, event *domain.SampleEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PlaceSearcher resolves free text to an ordered list of place candidates.
type PlaceSearcher interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]domain.Place, error)
}

// SampleFeed streams published sample events to live listeners.
type SampleFeed interface {
	SubscribeSamples(sessionID string, fn func(data []byte)) (func(), error)
}
