package ports

import (
	"context"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// SessionStore persists explorer sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// PlaceRepository is a local gazetteer of named places.
type PlaceRepository interface {
	Upsert(ctx context.Context, name string, p domain.GeoPoint, countryCode string) error
	Search(ctx context.Context, query string, limit int) ([]domain.Place, error)
}
