package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	// Nairobi to Mombasa is roughly 440 km great-circle.
	d := Haversine(-1.2864, 36.8172, -4.0435, 39.6682)
	assert.InDelta(t, 440, d, 5)

	// Same point is zero.
	assert.Equal(t, 0.0, Haversine(-1.2864, 36.8172, -1.2864, 36.8172))

	// Symmetric in its arguments.
	assert.InDelta(t,
		Haversine(-1.2864, 36.8172, -1.1466, 36.9585),
		Haversine(-1.1466, 36.9585, -1.2864, 36.8172), 1e-9)

	// One degree of latitude is about 111 km anywhere on the globe.
	assert.InDelta(t, 111.2, Haversine(0, 36, 1, 36), 0.3)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 12.35, RoundTo(12.346, 2))
	assert.Equal(t, 12.3, RoundTo(12.34, 1))
	assert.Equal(t, 12.0, RoundTo(12.4999, 0))
	assert.Equal(t, -3.14, RoundTo(-3.14159, 2))
}
