package geospatial

import (
	"math"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// EarthRadiusKm is the mean radius of the sphere every calculation in this
// package runs on.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between a and b.
func Distance(a, b domain.GeoPoint) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Haversine calculates the great-circle distance in kilometers between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BoundingBox returns a box around center enclosing a circle of radiusKm.
// Latitudes are clipped at the poles; near them the box spans every longitude.
func BoundingBox(center domain.GeoPoint, radiusKm float64) domain.Bounds {
	latDelta := toDeg(radiusKm / EarthRadiusKm)

	b := domain.Bounds{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
	}

	cosLat := math.Cos(toRad(center.Lat))
	if b.MinLat == -90 || b.MaxLat == 90 || cosLat < 1e-9 {
		b.MinLon, b.MaxLon = -180, 180
		return b
	}

	lonDelta := latDelta / cosLat
	if lonDelta >= 180 {
		b.MinLon, b.MaxLon = -180, 180
		return b
	}
	// MinLon > MaxLon means the box crosses the antimeridian.
	b.MinLon = NormalizeLongitude(center.Lon - lonDelta)
	b.MaxLon = NormalizeLongitude(center.Lon + lonDelta)
	return b
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
