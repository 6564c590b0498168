package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"The Forest Hiker":     "the-forest-hiker",
		"  The Sea Explorer  ": "the-sea-explorer",
		"Café Crème Tour":      "cafe-creme-tour",
		"Northern--Lights!!":   "northern-lights",
		"":                     "",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestHashTokenMatchesResetToken(t *testing.T) {
	plain, hashed, err := NewPasswordResetToken()
	assert.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.Len(t, hashed, 64)
	assert.Equal(t, hashed, HashToken(plain))
	assert.NotEqual(t, plain, hashed)
}

func TestParseLatLngAndUnits(t *testing.T) {
	lat, lng, err := ParseLatLng("34.111745,-118.113491")
	assert.NoError(t, err)
	assert.Equal(t, 34.111745, lat)
	assert.Equal(t, -118.113491, lng)

	_, _, err = ParseLatLng("34.1")
	assert.Error(t, err)

	_, _, err = ParseLatLng("120,10")
	assert.Error(t, err)

	unit, err := ParseDistanceUnit("mi")
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, unit.RadiusInRadians(3963.2), 1e-9)

	_, err = ParseDistanceUnit("ft")
	assert.Error(t, err)
}
