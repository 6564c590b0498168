package utils

import (
	"fmt"
	"strconv"
	"strings"
)

type DistanceUnit string

const (
	UnitMiles      DistanceUnit = "mi"
	UnitKilometers DistanceUnit = "km"

	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch DistanceUnit(s) {
	case UnitMiles, UnitKilometers:
		return DistanceUnit(s), nil
	}
	return "", NewBadRequestError("Please provide the unit as mi or km.")
}

// RadiusInRadians converts a distance to the angle $centerSphere expects.
func (u DistanceUnit) RadiusInRadians(distance float64) float64 {
	if u == UnitMiles {
		return distance / earthRadiusMiles
	}
	return distance / earthRadiusKm
}

// MetersMultiplier converts $geoNear meters into the unit.
func (u DistanceUnit) MetersMultiplier() float64 {
	if u == UnitMiles {
		return 0.000621371
	}
	return 0.001
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, NewBadRequestError("Please provide latitude and longitude in the format lat,lng.")
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil || !IsValidCoordinates(lat, lng) {
		return 0, 0, NewBadRequestError(fmt.Sprintf("Invalid coordinates: %s", s))
	}
	return lat, lng, nil
}

func IsValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
