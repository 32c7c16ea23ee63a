package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
	"github.com/samirrijal/neverbeen/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/neverbeen/internal/core/usecases")

// ExplorerDefaults seeds new sessions.
type ExplorerDefaults struct {
	Origin      domain.GeoPoint
	OriginLabel string
	RadiusMiles float64
	Unit        domain.Unit
}

// DefaultExplorerDefaults starts sessions 100 miles around 55°46'27"N 3°55'6"W.
func DefaultExplorerDefaults() ExplorerDefaults {
	return ExplorerDefaults{
		Origin:      domain.GeoPoint{Lat: 55.774167, Lon: -3.918333},
		RadiusMiles: 100,
		Unit:        domain.Miles,
	}
}

// ExplorerService owns session state: origin, radius, unit and the current destination.
type ExplorerService struct {
	sessions ports.SessionStore
	events   ports.EventPublisher
	defaults ExplorerDefaults
	locks    *sessionLocks

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExplorerService creates a new ExplorerService. events may be nil.
func NewExplorerService(sessions ports.SessionStore, events ports.EventPublisher, defaults ExplorerDefaults) *ExplorerService {
	return &ExplorerService{
		sessions: sessions,
		events:   events,
		defaults: defaults,
		locks:    newSessionLocks(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewSession creates a session at the default origin.
func (s *ExplorerService) NewSession(ctx context.Context) (*domain.Session, error) {
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:          uuid.NewString(),
		Origin:      s.defaults.Origin,
		OriginLabel: s.defaults.OriginLabel,
		RadiusMiles: s.defaults.RadiusMiles,
		Unit:        s.defaults.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// GetSession returns a session by ID.
func (s *ExplorerService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, id)
}

// SetOriginManual validates typed coordinates and only then replaces the origin.
func (s *ExplorerService) SetOriginManual(ctx context.Context, id, lat, lon string) (*domain.Session, error) {
	p, err := domain.ParseGeoPoint(lat, lon)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sess *domain.Session) error {
		setOrigin(sess, p, "")
		return nil
	})
}

// SetOriginFromPlace accepts a place-search candidate as the new origin.
func (s *ExplorerService) SetOriginFromPlace(ctx context.Context, id string, place domain.Place) (*domain.Session, error) {
	p, err := place.Point()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sess *domain.Session) error {
		setOrigin(sess, p, place.DisplayName)
		return nil
	})
}

// SetOriginFromGeolocation applies a device geolocation reading. A failed or
// unusable reading leaves the origin untouched; the unchanged session is
// returned together with an error wrapping domain.ErrLocationUnavailable.
func (s *ExplorerService) SetOriginFromGeolocation(ctx context.Context, id string, r domain.GeolocationReading) (*domain.Session, error) {
	p, reason := readingPoint(r)
	if reason != "" {
		sess, err := s.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		metrics.GeolocationFallbacks.Inc()
		slog.InfoContext(ctx, "geolocation unavailable, keeping previous origin",
			"session_id", id, "reason", reason)
		return sess, fmt.Errorf("%w: %s", domain.ErrLocationUnavailable, reason)
	}
	return s.update(ctx, id, func(sess *domain.Session) error {
		setOrigin(sess, p, "")
		return nil
	})
}

func readingPoint(r domain.GeolocationReading) (domain.GeoPoint, string) {
	if r.Error != "" {
		return domain.GeoPoint{}, r.Error
	}
	if r.Latitude == nil || r.Longitude == nil {
		return domain.GeoPoint{}, "reading has no coordinates"
	}
	p := domain.GeoPoint{Lat: *r.Latitude, Lon: *r.Longitude}
	if err := p.Validate(); err != nil {
		return domain.GeoPoint{}, err.Error()
	}
	return p, ""
}

func setOrigin(sess *domain.Session, p domain.GeoPoint, label string) {
	sess.Origin = p
	sess.OriginLabel = label
	// A destination only makes sense relative to the origin it was drawn from.
	sess.Destination = nil
}

// SetRadius sets the radius from a value shown in unit. An empty unit means
// the session's current display unit.
func (s *ExplorerService) SetRadius(ctx context.Context, id string, value float64, unit domain.Unit) (*domain.Session, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return nil, fmt.Errorf("%w: radius must be a positive number", domain.ErrInvalidRadius)
	}
	return s.update(ctx, id, func(sess *domain.Session) error {
		u := unit
		if u == "" {
			u = sess.Unit
		}
		if err := checkRadius(value, u); err != nil {
			return err
		}
		sess.RadiusMiles = geospatial.ToCanonical(value, u)
		return nil
	})
}

func checkRadius(value float64, unit domain.Unit) error {
	b := domain.RadiusBounds(unit)
	if value < float64(b.Min) || value > float64(b.Max) {
		return fmt.Errorf("%w: radius must be between %d and %d %s", domain.ErrInvalidRadius, b.Min, b.Max, unit.Label())
	}
	return nil
}

// SetUnit switches the display unit, rebuilding the canonical radius from the
// rounded value now on screen.
func (s *ExplorerService) SetUnit(ctx context.Context, id string, unit domain.Unit) (*domain.Session, error) {
	return s.update(ctx, id, func(sess *domain.Session) error {
		if sess.Unit == unit {
			return nil
		}
		sess.RadiusMiles = geospatial.ToggleRadius(sess.RadiusMiles, unit)
		sess.Unit = unit
		return nil
	})
}

// Sample draws a fresh destination for the session, replacing any previous
// one. A non-nil seed makes the draw reproducible.
func (s *ExplorerService) Sample(ctx context.Context, id string, seed *uint64) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "ExplorerService.Sample")
	defer span.End()

	sess, err := s.update(ctx, id, func(sess *domain.Session) error {
		radiusKm := geospatial.MilesToKm(sess.RadiusMiles)
		span.SetAttributes(
			attribute.String("session.id", sess.ID),
			attribute.Float64("sample.radius_km", radiusKm),
		)

		draw, err := s.draw(sess.Origin, radiusKm, seed)
		if err != nil {
			return err
		}

		sess.Destination = &domain.SampleResult{
			Point:       draw.Point,
			DistanceKm:  geospatial.Distance(sess.Origin, draw.Point),
			BearingDeg:  draw.Bearing * 180 / math.Pi,
			RadiusKm:    radiusKm,
			Seed:        seed,
			GeneratedAt: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	dest := sess.Destination
	metrics.SamplesGenerated.WithLabelValues(string(sess.Unit)).Inc()
	metrics.SampleDistance.Observe(dest.DistanceKm)

	if s.events != nil {
		event := &domain.SampleEvent{
			SessionID:   sess.ID,
			Origin:      sess.Origin,
			Destination: dest.Point,
			DistanceKm:  dest.DistanceKm,
			GeneratedAt: dest.GeneratedAt,
		}
		if err := s.events.PublishSample(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish sample event failed", "session_id", sess.ID, "error", err)
		}
	}

	return sess, nil
}

func (s *ExplorerService) draw(origin domain.GeoPoint, radiusKm float64, seed *uint64) (geospatial.Draw, error) {
	if seed != nil {
		r := rand.New(rand.NewPCG(*seed, *seed))
		return geospatial.SampleDraw(origin, radiusKm, r.Float64)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return geospatial.SampleDraw(origin, radiusKm, s.rng.Float64)
}

// update loads a session, applies fn and saves it while holding the session's
// lock, so concurrent updates to one session apply in turn. Nothing is saved
// when fn fails.
func (s *ExplorerService) update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}
