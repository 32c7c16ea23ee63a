package domain

import (
	"fmt"
	"strings"
)

// Unit is a user-facing distance unit.
type Unit string

const (
	Miles      Unit = "mi"
	Kilometers Unit = "km"
)

// ParseUnit accepts the short tags and common spellings.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mi", "mile", "miles", "imperial":
		return Miles, nil
	case "km", "kilometer", "kilometers", "kilometre", "kilometres", "metric":
		return Kilometers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// Label is the word shown next to a value in this unit.
func (u Unit) Label() string {
	if u == Kilometers {
		return "km"
	}
	return "miles"
}

// SliderBounds are the inclusive integer limits the radius control offers per unit.
type SliderBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RadiusBounds returns the slider limits for u.
func RadiusBounds(u Unit) SliderBounds {
	if u == Kilometers {
		return SliderBounds{Min: 1, Max: 644}
	}
	return SliderBounds{Min: 1, Max: 400}
}
