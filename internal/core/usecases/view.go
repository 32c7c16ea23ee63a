package usecases

import (
	"time"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
)

// PointView is a point with both axes rendered for display.
type PointView struct {
	domain.GeoPoint
	LatDMS  domain.DMS `json:"lat_dms"`
	LonDMS  domain.DMS `json:"lon_dms"`
	LatText string     `json:"lat_text"`
	LonText string     `json:"lon_text"`
}

// RadiusView is what a radius slider needs to render itself.
type RadiusView struct {
	Value int         `json:"value"`
	Unit  domain.Unit `json:"unit"`
	Label string      `json:"label"`
	Min   int         `json:"min"`
	Max   int         `json:"max"`
	Km    float64     `json:"km"`
	Miles float64     `json:"miles"`
}

// DestinationView is the display form of a SampleResult.
type DestinationView struct {
	PointView
	DistanceKm   float64   `json:"distance_km"`
	Distance     float64   `json:"distance"`
	DistanceText string    `json:"distance_text"`
	BearingDeg   float64   `json:"bearing_deg"`
	Seed         *uint64   `json:"seed,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// SessionView is the full display projection of a session.
type SessionView struct {
	ID          string           `json:"id"`
	Origin      PointView        `json:"origin"`
	OriginLabel string           `json:"origin_label,omitempty"`
	Radius      RadiusView       `json:"radius"`
	SearchArea  domain.Bounds    `json:"search_area"`
	Destination *DestinationView `json:"destination"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewPointView renders p in DMS.
func NewPointView(p domain.GeoPoint) PointView {
	lat := geospatial.ToDMS(p.Lat, domain.AxisLatitude)
	lon := geospatial.ToDMS(p.Lon, domain.AxisLongitude)
	return PointView{
		GeoPoint: p,
		LatDMS:   lat,
		LonDMS:   lon,
		LatText:  geospatial.FormatDMS(lat),
		LonText:  geospatial.FormatDMS(lon),
	}
}

// BuildView projects a session into display values for its current unit.
func BuildView(s *domain.Session) SessionView {
	b := domain.RadiusBounds(s.Unit)
	radiusKm := geospatial.MilesToKm(s.RadiusMiles)

	v := SessionView{
		ID:          s.ID,
		Origin:      NewPointView(s.Origin),
		OriginLabel: s.OriginLabel,
		Radius: RadiusView{
			Value: geospatial.DisplayRadius(s.RadiusMiles, s.Unit),
			Unit:  s.Unit,
			Label: s.Unit.Label(),
			Min:   b.Min,
			Max:   b.Max,
			Km:    radiusKm,
			Miles: s.RadiusMiles,
		},
		SearchArea: geospatial.BoundingBox(s.Origin, radiusKm),
		UpdatedAt:  s.UpdatedAt,
	}

	if d := s.Destination; d != nil {
		v.Destination = &DestinationView{
			PointView:    NewPointView(d.Point),
			DistanceKm:   d.DistanceKm,
			Distance:     geospatial.ToDisplay(geospatial.KmToMiles(d.DistanceKm), s.Unit),
			DistanceText: geospatial.FormatDistance(d.DistanceKm, s.Unit),
			BearingDeg:   d.BearingDeg,
			Seed:         d.Seed,
			GeneratedAt:  d.GeneratedAt,
		}
	}
	return v
}
