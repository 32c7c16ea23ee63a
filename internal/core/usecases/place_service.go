package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/pkg/metrics"
)

// MaxPlaceLimit caps how many candidates one search may ask for.
const MaxPlaceLimit = 50

var (
	// ErrEmptyQuery is returned for a blank search string.
	ErrEmptyQuery = errors.New("search query must not be empty")
	// ErrInvalidLimit is returned for a limit outside 1..MaxPlaceLimit.
	ErrInvalidLimit = errors.New("invalid limit")
)

// PlaceMatch is a search candidate whose coordinates parsed and validated.
type PlaceMatch struct {
	domain.Place
	Point domain.GeoPoint `json:"point"`
}

// PlaceService resolves place names through an ordered list of searchers.
type PlaceService struct {
	searchers []ports.PlaceSearcher
	cache     ports.CacheService
	cacheTTL  int
}

// NewPlaceService creates a new PlaceService. cache may be nil.
func NewPlaceService(cache ports.CacheService, searchers ...ports.PlaceSearcher) *PlaceService {
	return &PlaceService{searchers: searchers, cache: cache, cacheTTL: 3600}
}

// Search returns valid candidates from the first searcher that yields any.
// Candidates with non-numeric or out-of-range coordinates are dropped. When
// every searcher fails, or none is configured, the error wraps
// domain.ErrLocationUnavailable.
func (s *PlaceService) Search(ctx context.Context, query string, limit int) ([]PlaceMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 || limit > MaxPlaceLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidLimit, MaxPlaceLimit, limit)
	}
	if len(s.searchers) == 0 {
		return nil, fmt.Errorf("%w: no place search configured", domain.ErrLocationUnavailable)
	}

	ctx, span := tracer.Start(ctx, "PlaceService.Search")
	defer span.End()
	span.SetAttributes(attribute.String("place.query", query), attribute.Int("place.limit", limit))

	// Try cache
	cacheKey := fmt.Sprintf("places:search:%s:%d", strings.ToLower(query), limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var matches []PlaceMatch
			if err := json.Unmarshal(data, &matches); err == nil {
				metrics.CacheHits.WithLabelValues("place_search").Inc()
				return matches, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("place_search").Inc()
	}

	var lastErr error
	failed := 0
	for _, searcher := range s.searchers {
		start := time.Now()
		places, err := searcher.Search(ctx, query, limit)
		metrics.PlaceSearchDuration.WithLabelValues(searcher.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.PlaceSearchErrors.WithLabelValues(searcher.Name()).Inc()
			slog.WarnContext(ctx, "place search failed", "source", searcher.Name(), "error", err)
			lastErr = err
			failed++
			continue
		}

		matches := acceptPlaces(places, searcher.Name(), limit)
		if len(matches) == 0 {
			continue
		}

		if s.cache != nil {
			if data, err := json.Marshal(matches); err == nil {
				_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
			}
		}
		return matches, nil
	}

	if failed == len(s.searchers) {
		err := fmt.Errorf("%w: place search: %v", domain.ErrLocationUnavailable, lastErr)
		span.RecordError(err)
		span.SetStatus(codes.Error, "all searchers failed")
		return nil, err
	}
	return []PlaceMatch{}, nil
}

func acceptPlaces(places []domain.Place, source string, limit int) []PlaceMatch {
	matches := make([]PlaceMatch, 0, len(places))
	for _, p := range places {
		pt, err := p.Point()
		if err != nil {
			continue
		}
		if p.Source == "" {
			p.Source = source
		}
		matches = append(matches, PlaceMatch{Place: p, Point: pt})
		if len(matches) == limit {
			break
		}
	}
	return matches
}
