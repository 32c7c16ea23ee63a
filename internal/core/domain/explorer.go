package domain

import "time"

// SampleResult is one generated destination. A new sample replaces the old
// one wholesale; fields are never filled in piecemeal.
type SampleResult struct {
	Point       GeoPoint  `json:"point"`
	DistanceKm  float64   `json:"distance_km"`
	BearingDeg  float64   `json:"bearing_deg"`
	RadiusKm    float64   `json:"radius_km"`
	Seed        *uint64   `json:"seed,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Session is the explorer state behind one UI.
type Session struct {
	ID          string        `json:"id"`
	Origin      GeoPoint      `json:"origin"`
	OriginLabel string        `json:"origin_label,omitempty"`
	RadiusMiles float64       `json:"radius_miles"`
	Unit        Unit          `json:"unit"`
	Destination *SampleResult `json:"destination,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Place is a candidate returned by a place-search collaborator. Lat and Lon
// stay strings until the core has parsed and validated them.
type Place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Source      string `json:"source,omitempty"`
}

// Point parses and validates the candidate coordinates.
func (p Place) Point() (GeoPoint, error) {
	return ParseGeoPoint(p.Lat, p.Lon)
}

// GeolocationReading is what a device geolocation provider hands back:
// either a fix or an error message.
type GeolocationReading struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// SampleEvent is published whenever a session draws a new destination.
type SampleEvent struct {
	SessionID   string    `json:"session_id"`
	Origin      GeoPoint  `json:"origin"`
	Destination GeoPoint  `json:"destination"`
	DistanceKm  float64   `json:"distance_km"`
	GeneratedAt time.Time `json:"generated_at"`
}
