package usecases_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/neverbeen/internal/adapters/memory"
	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/core/usecases"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(ctx context.Context, event *domain.SampleEvent) error
	events    []*domain.SampleEvent
}

func (m *mockPublisher) PublishSample(ctx context.Context, event *domain.SampleEvent) error {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

// --- Mock SessionStore ---

type mockSessionStore struct {
	getFn  func(ctx context.Context, id string) (*domain.Session, error)
	saveFn func(ctx context.Context, s *domain.Session) error
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *mockSessionStore) Save(ctx context.Context, s *domain.Session) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, s)
	}
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error { return nil }

// slowStore delays reads to widen the window between load and save, the way
// a network round-trip to Valkey would.
type slowStore struct {
	*memory.SessionStore
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(s.delay)
	return s.SessionStore.Get(ctx, id)
}

func newExplorer(pub *mockPublisher) *usecases.ExplorerService {
	var events ports.EventPublisher
	if pub != nil {
		events = pub
	}
	return usecases.NewExplorerService(memory.NewSessionStore(time.Hour), events, usecases.DefaultExplorerDefaults())
}

func mustSession(t *testing.T, svc *usecases.ExplorerService) *domain.Session {
	t.Helper()
	sess, err := svc.NewSession(context.Background())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return sess
}

func seedPtr(v uint64) *uint64 { return &v }

// --- Tests ---

func TestExplorer_NewSessionDefaults(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)

	if sess.ID == "" {
		t.Fatal("expected session id")
	}
	if sess.Origin.Lat != 55.774167 || sess.Origin.Lon != -3.918333 {
		t.Errorf("unexpected default origin %+v", sess.Origin)
	}
	if sess.RadiusMiles != 100 || sess.Unit != domain.Miles {
		t.Errorf("unexpected default radius %v %s", sess.RadiusMiles, sess.Unit)
	}
	if sess.Destination != nil {
		t.Error("new session must not have a destination")
	}
}

func TestExplorer_GetSession_NotFound(t *testing.T) {
	svc := newExplorer(nil)
	_, err := svc.GetSession(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExplorer_SetOriginManual(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)

	updated, err := svc.SetOriginManual(context.Background(), sess.ID, " 43.263 ", "-2.935")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Origin.Lat != 43.263 || updated.Origin.Lon != -2.935 {
		t.Errorf("unexpected origin %+v", updated.Origin)
	}
}

func TestExplorer_SetOriginManual_InvalidKeepsOrigin(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	cases := [][2]string{
		{"91", "0"},
		{"0", "181"},
		{"abc", "0"},
		{"", "10"},
		{"NaN", "10"},
	}
	for _, c := range cases {
		_, err := svc.SetOriginManual(ctx, sess.ID, c[0], c[1])
		if !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("%v: expected ErrInvalidCoordinate, got %v", c, err)
		}
	}

	got, _ := svc.GetSession(ctx, sess.ID)
	if got.Origin != sess.Origin {
		t.Errorf("origin changed after invalid entry: %+v", got.Origin)
	}
}

func TestExplorer_SetOriginManual_DoesNotSaveOnValidationError(t *testing.T) {
	saved := false
	store := &mockSessionStore{
		saveFn: func(ctx context.Context, s *domain.Session) error {
			saved = true
			return nil
		},
	}
	svc := usecases.NewExplorerService(store, nil, usecases.DefaultExplorerDefaults())

	_, err := svc.SetOriginManual(context.Background(), "any", "100", "0")
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if saved {
		t.Error("store was written despite invalid input")
	}
}

func TestExplorer_Geolocation_Success(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)

	lat, lon := 40.4169, -3.7035
	updated, err := svc.SetOriginFromGeolocation(context.Background(), sess.ID,
		domain.GeolocationReading{Latitude: &lat, Longitude: &lon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Origin.Lat != lat || updated.Origin.Lon != lon {
		t.Errorf("unexpected origin %+v", updated.Origin)
	}
}

func TestExplorer_Geolocation_FailureKeepsOrigin(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	badLat := 120.0
	readings := []domain.GeolocationReading{
		{Error: "User denied Geolocation"},
		{},
		{Latitude: &badLat, Longitude: &badLat},
	}
	for _, r := range readings {
		got, err := svc.SetOriginFromGeolocation(ctx, sess.ID, r)
		if !errors.Is(err, domain.ErrLocationUnavailable) {
			t.Fatalf("expected ErrLocationUnavailable, got %v", err)
		}
		if got == nil || got.Origin != sess.Origin {
			t.Errorf("expected previous origin to be kept, got %+v", got)
		}
	}
}

func TestExplorer_SetOriginFromPlace(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	updated, err := svc.SetOriginFromPlace(ctx, sess.ID, domain.Place{DisplayName: "Bilbao", Lat: "43.2630", Lon: "-2.9350"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.OriginLabel != "Bilbao" {
		t.Errorf("expected label Bilbao, got %q", updated.OriginLabel)
	}

	_, err = svc.SetOriginFromPlace(ctx, sess.ID, domain.Place{DisplayName: "Nowhere", Lat: "north", Lon: "0"})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestExplorer_SetRadius(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	updated, err := svc.SetRadius(ctx, sess.ID, 250, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RadiusMiles != 250 {
		t.Errorf("expected 250 miles, got %v", updated.RadiusMiles)
	}

	updated, err = svc.SetRadius(ctx, sess.ID, 644, domain.Kilometers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(updated.RadiusMiles-644/geospatial.KmPerMile) > 1e-9 {
		t.Errorf("unexpected canonical radius %v", updated.RadiusMiles)
	}
}

func TestExplorer_SetRadius_Invalid(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	for _, v := range []float64{0, -5, 401, math.NaN(), math.Inf(1)} {
		_, err := svc.SetRadius(ctx, sess.ID, v, domain.Miles)
		if !errors.Is(err, domain.ErrInvalidRadius) {
			t.Errorf("radius %v: expected ErrInvalidRadius, got %v", v, err)
		}
	}
	// 500 km is fine, 500 mi is not.
	if _, err := svc.SetRadius(ctx, sess.ID, 500, domain.Kilometers); err != nil {
		t.Errorf("500 km should be accepted: %v", err)
	}

	got, _ := svc.GetSession(ctx, sess.ID)
	if math.Abs(got.RadiusMiles-500/geospatial.KmPerMile) > 1e-9 {
		t.Errorf("radius changed by rejected input: %v", got.RadiusMiles)
	}
}

func TestExplorer_SetUnit_Toggle(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	km, err := svc.SetUnit(ctx, sess.ID, domain.Kilometers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view := usecases.BuildView(km)
	if view.Radius.Value != 161 || view.Radius.Unit != domain.Kilometers || view.Radius.Max != 644 {
		t.Errorf("unexpected km radius view %+v", view.Radius)
	}

	mi, err := svc.SetUnit(ctx, sess.ID, domain.Miles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view = usecases.BuildView(mi)
	if view.Radius.Value != 100 || view.Radius.Max != 400 {
		t.Errorf("unexpected miles radius view %+v", view.Radius)
	}
}

func TestExplorer_Sample_ScenarioWithSeed(t *testing.T) {
	pub := &mockPublisher{}
	svc := newExplorer(pub)
	sess := mustSession(t, svc)
	ctx := context.Background()

	a, err := svc.Sample(ctx, sess.ID, seedPtr(2024))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Destination == nil {
		t.Fatal("expected destination")
	}
	d := a.Destination
	if d.DistanceKm > geospatial.MilesToKm(100)+1e-6 {
		t.Errorf("destination outside radius: %v km", d.DistanceKm)
	}
	if d.Seed == nil || *d.Seed != 2024 {
		t.Errorf("expected seed to be recorded, got %v", d.Seed)
	}

	b, err := svc.Sample(ctx, sess.ID, seedPtr(2024))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Destination.Point != d.Point {
		t.Errorf("same seed produced different points: %+v vs %+v", b.Destination.Point, d.Point)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.events))
	}
	if pub.events[0].SessionID != sess.ID || pub.events[0].Destination != d.Point {
		t.Errorf("unexpected event %+v", pub.events[0])
	}
}

func TestExplorer_Sample_TryAgainReplaces(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	first, _ := svc.Sample(ctx, sess.ID, seedPtr(1))
	second, _ := svc.Sample(ctx, sess.ID, seedPtr(2))
	if first.Destination.Point == second.Destination.Point {
		t.Error("expected a different destination for a different seed")
	}

	got, _ := svc.GetSession(ctx, sess.ID)
	if got.Destination.Point != second.Destination.Point {
		t.Error("stored destination is not the latest sample")
	}
}

func TestExplorer_Sample_UnseededWithinRadius(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		got, err := svc.Sample(ctx, sess.ID, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Destination.DistanceKm > got.Destination.RadiusKm+1e-6 {
			t.Fatalf("sample %d outside radius: %v > %v", i, got.Destination.DistanceKm, got.Destination.RadiusKm)
		}
	}
}

func TestExplorer_Sample_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{
		publishFn: func(ctx context.Context, event *domain.SampleEvent) error {
			return errors.New("nats down")
		},
	}
	svc := newExplorer(pub)
	sess := mustSession(t, svc)

	if _, err := svc.Sample(context.Background(), sess.ID, nil); err != nil {
		t.Fatalf("publish failure should not fail sampling: %v", err)
	}
}

func TestExplorer_OriginChangeClearsDestination(t *testing.T) {
	svc := newExplorer(nil)
	sess := mustSession(t, svc)
	ctx := context.Background()

	_, _ = svc.Sample(ctx, sess.ID, seedPtr(3))
	updated, err := svc.SetOriginManual(ctx, sess.ID, "10", "10")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Destination != nil {
		t.Error("expected destination to be cleared after the origin moved")
	}
}

func TestBuildView_Destination(t *testing.T) {
	sess := &domain.Session{
		ID:          "s1",
		Origin:      domain.GeoPoint{Lat: 55.774167, Lon: -3.918333},
		RadiusMiles: 100,
		Unit:        domain.Kilometers,
		Destination: &domain.SampleResult{
			Point:      domain.GeoPoint{Lat: 56.497824, Lon: -3.918333},
			DistanceKm: 80.467,
		},
	}

	v := usecases.BuildView(sess)
	if v.Origin.LatText != `55°46'27.00"N` || v.Origin.LonText != `3°55'6.00"W` {
		t.Errorf("unexpected origin text %s %s", v.Origin.LatText, v.Origin.LonText)
	}
	if v.Destination == nil {
		t.Fatal("expected destination view")
	}
	if v.Destination.DistanceText != "80.5 km" {
		t.Errorf("unexpected distance text %q", v.Destination.DistanceText)
	}
	if math.Abs(v.Destination.Distance-80.467) > 1e-9 {
		t.Errorf("unexpected display distance %v", v.Destination.Distance)
	}
	if v.Radius.Value != 161 {
		t.Errorf("expected 161 km radius, got %d", v.Radius.Value)
	}
	if v.SearchArea.MaxLat <= sess.Origin.Lat {
		t.Errorf("unexpected search area %+v", v.SearchArea)
	}
}

func TestExplorer_ConcurrentUpdatesAreNotLost(t *testing.T) {
	store := &slowStore{SessionStore: memory.NewSessionStore(time.Hour), delay: 2 * time.Millisecond}
	svc := usecases.NewExplorerService(store, nil, usecases.DefaultExplorerDefaults())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		sess := mustSession(t, svc)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.SetOriginManual(ctx, sess.ID, "10", "20"); err != nil {
				t.Errorf("set origin: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.SetRadius(ctx, sess.ID, 7, ""); err != nil {
				t.Errorf("set radius: %v", err)
			}
		}()
		wg.Wait()

		got, err := svc.GetSession(ctx, sess.ID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if got.Origin != (domain.GeoPoint{Lat: 10, Lon: 20}) {
			t.Fatalf("run %d: origin update lost, got %+v", i, got.Origin)
		}
		if got.RadiusMiles != 7 {
			t.Fatalf("run %d: radius update lost, got %v", i, got.RadiusMiles)
		}
	}
}

func TestExplorer_ConcurrentSampleAndOriginChange(t *testing.T) {
	store := &slowStore{SessionStore: memory.NewSessionStore(time.Hour), delay: 2 * time.Millisecond}
	svc := usecases.NewExplorerService(store, nil, usecases.DefaultExplorerDefaults())
	ctx := context.Background()
	sess := mustSession(t, svc)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = svc.Sample(ctx, sess.ID, seedPtr(3))
	}()
	go func() {
		defer wg.Done()
		_, _ = svc.SetOriginManual(ctx, sess.ID, "-33.3330", "-70.5000")
	}()
	wg.Wait()

	got, _ := svc.GetSession(ctx, sess.ID)
	if got.Origin != (domain.GeoPoint{Lat: -33.333, Lon: -70.5}) {
		t.Fatalf("origin change lost, got %+v", got.Origin)
	}
	// Whichever ran last, a kept destination must have been drawn around the new origin.
	if got.Destination != nil {
		if d := geospatial.Distance(got.Origin, got.Destination.Point); d > got.Destination.RadiusKm+1e-6 {
			t.Errorf("destination %.1f km from the current origin, radius %.1f km", d, got.Destination.RadiusKm)
		}
	}
}
