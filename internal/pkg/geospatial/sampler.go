package geospatial

import (
	"fmt"
	"math"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// RandFunc returns a pseudo-random value in [0, 1). (*rand.Rand).Float64
// satisfies it, so a seeded generator makes sampling reproducible.
type RandFunc func() float64

// Draw is one sampled destination together with the parameters that produced it.
type Draw struct {
	Point      domain.GeoPoint
	DistanceKm float64
	Bearing    float64 // radians clockwise from true north
}

// Sample returns a random point within radiusKm of origin.
func Sample(origin domain.GeoPoint, radiusKm float64, rng RandFunc) (domain.GeoPoint, error) {
	d, err := SampleDraw(origin, radiusKm, rng)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return d.Point, nil
}

// SampleDraw picks a distance uniformly in [0, radiusKm) and a bearing
// uniformly in [0, 2π), then projects origin along the great circle.
// Distance is uniform, not area: draws cluster toward the origin.
func SampleDraw(origin domain.GeoPoint, radiusKm float64, rng RandFunc) (Draw, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return Draw{}, fmt.Errorf("%w: radius must be a non-negative number of kilometers, got %v", domain.ErrInvalidRadius, radiusKm)
	}
	if math.IsNaN(origin.Lat) || origin.Lat < -90 || origin.Lat > 90 {
		return Draw{}, fmt.Errorf("%w: origin latitude must be between -90 and 90, got %v", domain.ErrInvalidCoordinate, origin.Lat)
	}
	if math.IsNaN(origin.Lon) || math.IsInf(origin.Lon, 0) {
		return Draw{}, fmt.Errorf("%w: origin longitude must be finite, got %v", domain.ErrInvalidCoordinate, origin.Lon)
	}
	if radiusKm == 0 {
		return Draw{Point: origin}, nil
	}
	if rng == nil {
		return Draw{}, fmt.Errorf("%w: no random source", domain.ErrSamplingFailure)
	}

	u1, u2 := rng(), rng()
	if !unit(u1) || !unit(u2) {
		return Draw{}, fmt.Errorf("%w: random source returned values outside [0, 1): %v, %v", domain.ErrSamplingFailure, u1, u2)
	}

	d := Draw{
		DistanceKm: u1 * radiusKm,
		Bearing:    u2 * 2 * math.Pi,
	}
	d.Point = Project(origin, d.DistanceKm, d.Bearing)
	if math.IsNaN(d.Point.Lat) || math.IsNaN(d.Point.Lon) {
		return Draw{}, fmt.Errorf("%w: projection produced a non-finite point", domain.ErrSamplingFailure)
	}
	return d, nil
}

// Project solves the forward geodesic problem on the sphere: the point
// reached from origin after distanceKm along the initial bearing (radians).
func Project(origin domain.GeoPoint, distanceKm, bearing float64) domain.GeoPoint {
	phi1 := toRad(origin.Lat)
	lambda1 := toRad(origin.Lon)
	delta := distanceKm / EarthRadiusKm

	sinPhi1, cosPhi1 := math.Sincos(phi1)
	sinDelta, cosDelta := math.Sincos(delta)

	// Rounding can push the argument a hair past ±1 near the poles.
	arg := clamp(sinPhi1*cosDelta+cosPhi1*sinDelta*math.Cos(bearing), -1, 1)
	phi2 := math.Asin(arg)

	lambda2 := lambda1 + math.Atan2(
		math.Sin(bearing)*sinDelta*cosPhi1,
		cosDelta-sinPhi1*math.Sin(phi2),
	)

	return domain.GeoPoint{
		Lat: toDeg(phi2),
		Lon: NormalizeLongitude(toDeg(lambda2)),
	}
}

// NormalizeLongitude wraps any finite longitude into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	n := math.Mod(lon+540, 360)
	if n < 0 {
		n += 360
	}
	return n - 180
}

func unit(u float64) bool {
	return u >= 0 && u < 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
