package geospatial_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
)

// sequence returns a RandFunc that replays vals in order.
func sequence(vals ...float64) geospatial.RandFunc {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func seeded(seed uint64) geospatial.RandFunc {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Float64
}

// ---- Distance ----

func TestDistance_Identity(t *testing.T) {
	p := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	assert.Equal(t, 0.0, geospatial.Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		a := domain.GeoPoint{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		b := domain.GeoPoint{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		assert.InDelta(t, geospatial.Distance(a, b), geospatial.Distance(b, a), 1e-9)
	}
}

func TestDistance_KnownPair(t *testing.T) {
	// Bilbao Abando to Madrid Puerta del Sol, roughly 320 km.
	bilbao := domain.GeoPoint{Lat: 43.2609, Lon: -2.9256}
	madrid := domain.GeoPoint{Lat: 40.4169, Lon: -3.7035}
	d := geospatial.Distance(bilbao, madrid)
	assert.InDelta(t, 322, d, 5)
}

func TestDistance_Antipodes(t *testing.T) {
	d := geospatial.Distance(domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 180})
	assert.InDelta(t, math.Pi*geospatial.EarthRadiusKm, d, 1e-6)
}

// ---- Sampler ----

func TestSampleDraw_DueNorthScenario(t *testing.T) {
	origin := domain.GeoPoint{Lat: 55.774167, Lon: -3.918333}
	radiusKm := geospatial.MilesToKm(100)

	d, err := geospatial.SampleDraw(origin, radiusKm, sequence(0.5, 0))
	require.NoError(t, err)

	assert.InDelta(t, 80.467, d.DistanceKm, 1e-9)
	assert.Equal(t, 0.0, d.Bearing)
	assert.InDelta(t, 56.497824, d.Point.Lat, 1e-6)
	assert.InDelta(t, -3.918333, d.Point.Lon, 1e-6)

	km := geospatial.Distance(origin, d.Point)
	assert.InDelta(t, 80.467, km, 1e-6)
	assert.InDelta(t, 50.0, geospatial.KmToMiles(km), 1e-6)
	assert.Equal(t, "50.0 miles", geospatial.FormatDistance(km, domain.Miles))
	assert.Equal(t, "80.5 km", geospatial.FormatDistance(km, domain.Kilometers))
}

func TestSample_ZeroRadiusReturnsOrigin(t *testing.T) {
	origin := domain.GeoPoint{Lat: 10.5, Lon: -20.25}
	p, err := geospatial.Sample(origin, 0, sequence(0.9, 0.9))
	require.NoError(t, err)
	assert.Equal(t, origin, p)
}

func TestSample_Rejections(t *testing.T) {
	origin := domain.GeoPoint{Lat: 10, Lon: 10}

	_, err := geospatial.Sample(origin, -1, sequence(0.1))
	assert.True(t, errors.Is(err, domain.ErrInvalidRadius))

	_, err = geospatial.Sample(origin, math.NaN(), sequence(0.1))
	assert.True(t, errors.Is(err, domain.ErrInvalidRadius))

	_, err = geospatial.Sample(domain.GeoPoint{Lat: 91, Lon: 0}, 10, sequence(0.1))
	assert.True(t, errors.Is(err, domain.ErrInvalidCoordinate))

	_, err = geospatial.Sample(domain.GeoPoint{Lat: -90.5, Lon: 0}, 10, sequence(0.1))
	assert.True(t, errors.Is(err, domain.ErrInvalidCoordinate))

	_, err = geospatial.Sample(origin, 10, sequence(1.0, 0.5))
	assert.True(t, errors.Is(err, domain.ErrSamplingFailure))

	_, err = geospatial.Sample(origin, 10, nil)
	assert.True(t, errors.Is(err, domain.ErrSamplingFailure))
}

func TestSample_StaysWithinRadius(t *testing.T) {
	origins := []domain.GeoPoint{
		{Lat: 55.774167, Lon: -3.918333},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 0, Lon: 0},
		{Lat: 89.9, Lon: 45},
	}
	radii := []float64{1, 160.934, 643.736, 5000}

	rng := seeded(42)
	for _, o := range origins {
		for _, r := range radii {
			for i := 0; i < 1000; i++ {
				p, err := geospatial.Sample(o, r, rng)
				require.NoError(t, err)
				d := geospatial.Distance(o, p)
				if d > r+1e-6 {
					t.Fatalf("origin %+v radius %.3f: sample %+v is %.9f km away", o, r, p, d)
				}
			}
		}
	}
}

func TestSample_NormalizedAcrossAntimeridian(t *testing.T) {
	origin := domain.GeoPoint{Lat: 0, Lon: 179}
	rng := seeded(3)
	crossed := false
	for i := 0; i < 1000; i++ {
		p, err := geospatial.Sample(origin, 500, rng)
		require.NoError(t, err)
		require.GreaterOrEqual(t, p.Lon, -180.0)
		require.LessOrEqual(t, p.Lon, 180.0)
		require.GreaterOrEqual(t, p.Lat, -90.0)
		require.LessOrEqual(t, p.Lat, 90.0)
		if p.Lon < 0 {
			crossed = true
		}
	}
	assert.True(t, crossed, "expected some samples east of the antimeridian")
}

func TestSample_NearPole(t *testing.T) {
	origin := domain.GeoPoint{Lat: 89.9, Lon: -120}
	rng := seeded(5)
	for i := 0; i < 1000; i++ {
		p, err := geospatial.Sample(origin, 200, rng)
		require.NoError(t, err)
		require.LessOrEqual(t, p.Lat, 90.0)
		require.GreaterOrEqual(t, p.Lat, -90.0)
		require.GreaterOrEqual(t, p.Lon, -180.0)
		require.LessOrEqual(t, p.Lon, 180.0)
	}
}

func TestSample_SeedIsReproducible(t *testing.T) {
	origin := domain.GeoPoint{Lat: 43.26, Lon: -2.93}
	a, err := geospatial.Sample(origin, 100, seeded(99))
	require.NoError(t, err)
	b, err := geospatial.Sample(origin, 100, seeded(99))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProject_MatchesDistance(t *testing.T) {
	origin := domain.GeoPoint{Lat: -12.5, Lon: 130.8}
	for _, bearing := range []float64{0, math.Pi / 4, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		p := geospatial.Project(origin, 250, bearing)
		assert.InDelta(t, 250, geospatial.Distance(origin, p), 1e-6)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		179:  179,
		190:  -170,
		-190: 170,
		360:  0,
		180:  -180,
		-180: -180,
		725:  5,
	}
	for in, want := range cases {
		assert.InDelta(t, want, geospatial.NormalizeLongitude(in), 1e-9, "input %v", in)
	}
}

// ---- BoundingBox ----

func TestBoundingBox_CrossesAntimeridian(t *testing.T) {
	b := geospatial.BoundingBox(domain.GeoPoint{Lat: 0, Lon: 179.5}, 200)
	assert.Greater(t, b.MinLon, b.MaxLon)
	assert.InDelta(t, 1.7986, b.MaxLat, 1e-3)
}

func TestBoundingBox_Pole(t *testing.T) {
	b := geospatial.BoundingBox(domain.GeoPoint{Lat: 89.9, Lon: 10}, 100)
	assert.Equal(t, 90.0, b.MaxLat)
	assert.Equal(t, -180.0, b.MinLon)
	assert.Equal(t, 180.0, b.MaxLon)
}

// ---- DMS ----

func TestDMS_RoundTrip(t *testing.T) {
	values := []float64{0, 45.5, -33.333, 89.9999, -179.9999}
	for _, axis := range []domain.Axis{domain.AxisLatitude, domain.AxisLongitude} {
		for _, v := range values {
			if axis == domain.AxisLatitude && math.Abs(v) > 90 {
				continue
			}
			got := geospatial.ToDecimal(geospatial.ToDMS(v, axis))
			assert.InDelta(t, v, got, 1e-4, "axis %s value %v", axis, v)
		}
	}
}

func TestDMS_Components(t *testing.T) {
	d := geospatial.ToDMS(-33.333, domain.AxisLatitude)
	assert.Equal(t, 33, d.Degrees)
	assert.Equal(t, 19, d.Minutes)
	assert.InDelta(t, 58.8, d.Seconds, 1e-6)
	assert.Equal(t, domain.South, d.Hemisphere)
}

func TestDMS_HemisphereIsAxisAware(t *testing.T) {
	assert.Equal(t, domain.North, geospatial.ToDMS(12, domain.AxisLatitude).Hemisphere)
	assert.Equal(t, domain.South, geospatial.ToDMS(-12, domain.AxisLatitude).Hemisphere)
	assert.Equal(t, domain.East, geospatial.ToDMS(12, domain.AxisLongitude).Hemisphere)
	assert.Equal(t, domain.West, geospatial.ToDMS(-12, domain.AxisLongitude).Hemisphere)
	assert.Equal(t, domain.North, geospatial.ToDMS(0, domain.AxisLatitude).Hemisphere)
	assert.Equal(t, domain.East, geospatial.ToDMS(0, domain.AxisLongitude).Hemisphere)
}

func TestFormatDMS(t *testing.T) {
	lat, lon := geospatial.FormatPoint(domain.GeoPoint{Lat: 55.774167, Lon: -3.918333})
	assert.Equal(t, `55°46'27.00"N`, lat)
	assert.Equal(t, `3°55'6.00"W`, lon)

	carried := geospatial.FormatDMS(domain.DMS{Degrees: 10, Minutes: 59, Seconds: 59.999, Hemisphere: domain.East})
	assert.Equal(t, `11°0'0.00"E`, carried)
}

// ---- Units ----

func TestUnits_Conversion(t *testing.T) {
	assert.InDelta(t, 160.934, geospatial.ToDisplay(100, domain.Kilometers), 1e-9)
	assert.Equal(t, 100.0, geospatial.ToDisplay(100, domain.Miles))
	assert.InDelta(t, 100, geospatial.ToCanonical(160.934, domain.Kilometers), 1e-9)
	assert.Equal(t, 42.0, geospatial.ToCanonical(42, domain.Miles))
}

func TestUnits_SliderBoundsRoundTrip(t *testing.T) {
	for _, u := range []domain.Unit{domain.Kilometers, domain.Miles} {
		b := domain.RadiusBounds(u)
		for _, v := range []int{b.Min, b.Max} {
			canonical := geospatial.ToCanonical(float64(v), u)
			assert.Equal(t, v, geospatial.DisplayRadius(canonical, u), "unit %s value %d", u, v)
		}
	}
}

func TestToggleRadius_ShowsRoundedValue(t *testing.T) {
	// 100 mi shows as 161 km; the canonical radius follows the shown value.
	km := geospatial.ToggleRadius(100, domain.Kilometers)
	assert.Equal(t, 161, geospatial.DisplayRadius(km, domain.Kilometers))
	assert.InDelta(t, 161/geospatial.KmPerMile, km, 1e-9)

	back := geospatial.ToggleRadius(km, domain.Miles)
	assert.Equal(t, 100, geospatial.DisplayRadius(back, domain.Miles))
	assert.Equal(t, 100.0, back)
}

func TestToggleRadius_ClampsToSlider(t *testing.T) {
	mi := geospatial.ToggleRadius(0.2, domain.Miles)
	assert.Equal(t, 1.0, mi)
}
