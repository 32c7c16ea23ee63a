package geospatial

import (
	"fmt"
	"math"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// KmPerMile is applied in both directions: km = mi*f, mi = km/f.
const KmPerMile = 1.60934

// ToDisplay converts a canonical miles value to unit.
func ToDisplay(canonicalMiles float64, unit domain.Unit) float64 {
	if unit == domain.Kilometers {
		return canonicalMiles * KmPerMile
	}
	return canonicalMiles
}

// ToCanonical converts a value shown in unit back to miles.
func ToCanonical(display float64, unit domain.Unit) float64 {
	if unit == domain.Kilometers {
		return display / KmPerMile
	}
	return display
}

// MilesToKm converts miles to kilometers.
func MilesToKm(mi float64) float64 { return mi * KmPerMile }

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 { return km / KmPerMile }

// DisplayRadius is the integer a radius slider shows for canonicalMiles in unit.
func DisplayRadius(canonicalMiles float64, unit domain.Unit) int {
	return int(math.Round(ToDisplay(canonicalMiles, unit)))
}

// ToggleRadius re-expresses a canonical radius after the display unit
// changes. The value shown in the new unit is rounded and the canonical
// radius is rebuilt from it, so repeated toggles may drift slightly.
func ToggleRadius(canonicalMiles float64, to domain.Unit) float64 {
	b := domain.RadiusBounds(to)
	shown := DisplayRadius(canonicalMiles, to)
	if shown < b.Min {
		shown = b.Min
	}
	if shown > b.Max {
		shown = b.Max
	}
	return ToCanonical(float64(shown), to)
}

// FormatDistance renders a kilometer distance in unit with one decimal.
func FormatDistance(km float64, unit domain.Unit) string {
	if unit == domain.Kilometers {
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%.1f miles", KmToMiles(km))
}
