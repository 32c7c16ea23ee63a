package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoPoint represents a geographic coordinate (WGS 84) in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks latitude and longitude ranges without modifying the point.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// ParseGeoPoint parses two numeric strings as typed by a user or returned by
// a search collaborator. Out-of-range values are rejected.
func ParseGeoPoint(lat, lon string) (GeoPoint, error) {
	la, err := parseDegrees("latitude", lat)
	if err != nil {
		return GeoPoint{}, err
	}
	lo, err := parseDegrees("longitude", lon)
	if err != nil {
		return GeoPoint{}, err
	}
	p := GeoPoint{Lat: la, Lon: lo}
	if err := p.Validate(); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

func parseDegrees(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidCoordinate, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidCoordinate, name, s)
	}
	return v, nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Axis tells a coordinate formatter which hemisphere letters apply.
type Axis string

const (
	AxisLatitude  Axis = "latitude"
	AxisLongitude Axis = "longitude"
)

// ParseAxis accepts "lat"/"latitude" and "lon"/"lng"/"longitude".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lat", "latitude":
		return AxisLatitude, nil
	case "lon", "lng", "longitude":
		return AxisLongitude, nil
	}
	return "", fmt.Errorf("%w: unknown axis %q", ErrInvalidCoordinate, s)
}

// Hemisphere is the compass letter attached to a DMS value.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
	East  Hemisphere = "E"
	West  Hemisphere = "W"
)

// Negative reports whether the hemisphere denotes a negative decimal value.
func (h Hemisphere) Negative() bool {
	return h == South || h == West
}

// Axis returns the axis the hemisphere belongs to.
func (h Hemisphere) Axis() (Axis, bool) {
	switch h {
	case North, South:
		return AxisLatitude, true
	case East, West:
		return AxisLongitude, true
	}
	return "", false
}

// DMS is a degrees-minutes-seconds angle with an axis-aware hemisphere.
type DMS struct {
	Degrees    int        `json:"degrees"`
	Minutes    int        `json:"minutes"`
	Seconds    float64    `json:"seconds"`
	Hemisphere Hemisphere `json:"hemisphere"`
}

// Validate checks component ranges and the hemisphere letter.
func (d DMS) Validate() error {
	axis, ok := d.Hemisphere.Axis()
	if !ok {
		return fmt.Errorf("%w: hemisphere must be one of N, S, E, W", ErrInvalidCoordinate)
	}
	limit := 180
	if axis == AxisLatitude {
		limit = 90
	}
	if d.Degrees < 0 || d.Degrees > limit {
		return fmt.Errorf("%w: degrees must be between 0 and %d", ErrInvalidCoordinate, limit)
	}
	if d.Minutes < 0 || d.Minutes >= 60 {
		return fmt.Errorf("%w: minutes must be in [0, 60)", ErrInvalidCoordinate)
	}
	if math.IsNaN(d.Seconds) || d.Seconds < 0 || d.Seconds >= 60 {
		return fmt.Errorf("%w: seconds must be in [0, 60)", ErrInvalidCoordinate)
	}
	if d.Degrees == limit && (d.Minutes > 0 || d.Seconds > 0) {
		return fmt.Errorf("%w: %s exceeds %d degrees", ErrInvalidCoordinate, axis, limit)
	}
	return nil
}
