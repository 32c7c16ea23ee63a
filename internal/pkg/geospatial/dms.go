package geospatial

import (
	"fmt"
	"math"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// ToDMS converts decimal degrees to degrees-minutes-seconds. The axis picks
// N/S or E/W; the sign alone cannot tell a latitude from a longitude.
func ToDMS(decimal float64, axis domain.Axis) domain.DMS {
	abs := math.Abs(decimal)
	deg := math.Floor(abs)
	mins := math.Floor((abs - deg) * 60)
	if mins >= 60 {
		deg++
		mins = 0
	}
	sec := (abs - deg - mins/60) * 3600
	if sec < 0 {
		sec = 0
	}

	return domain.DMS{
		Degrees:    int(deg),
		Minutes:    int(mins),
		Seconds:    sec,
		Hemisphere: hemisphere(decimal, axis),
	}
}

func hemisphere(decimal float64, axis domain.Axis) domain.Hemisphere {
	if axis == domain.AxisLongitude {
		if decimal >= 0 {
			return domain.East
		}
		return domain.West
	}
	if decimal >= 0 {
		return domain.North
	}
	return domain.South
}

// ToDecimal converts a DMS value back to signed decimal degrees.
func ToDecimal(d domain.DMS) float64 {
	v := float64(d.Degrees) + float64(d.Minutes)/60 + d.Seconds/3600
	if d.Hemisphere.Negative() {
		return -v
	}
	return v
}

// FormatDMS renders d as 55°46'27.00"N. Seconds are rounded to two decimals
// and carried into minutes and degrees so 60.00 never shows up.
func FormatDMS(d domain.DMS) string {
	deg, mins := d.Degrees, d.Minutes
	sec := math.Round(d.Seconds*100) / 100
	if sec >= 60 {
		sec -= 60
		mins++
	}
	if mins >= 60 {
		mins -= 60
		deg++
	}
	return fmt.Sprintf("%d°%d'%.2f\"%s", deg, mins, sec, d.Hemisphere)
}

// FormatPoint renders both axes of p as DMS strings.
func FormatPoint(p domain.GeoPoint) (lat, lon string) {
	return FormatDMS(ToDMS(p.Lat, domain.AxisLatitude)), FormatDMS(ToDMS(p.Lon, domain.AxisLongitude))
}
