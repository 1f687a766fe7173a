package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	jakarta := Point{Latitude: -6.2088, Longitude: 106.8456}
	bandung := Point{Latitude: -6.9175, Longitude: 107.6191}

	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{"same point is zero", jakarta, jakarta, 0, 1e-9},
		{"jakarta to bandung", jakarta, bandung, 115.8, 2.0},
		{"equator quarter circle", Point{0, 0}, Point{0, 90}, math.Pi / 2 * EarthRadiusKm, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.tol)
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Point{Latitude: 10.5, Longitude: -20.3}
	b := Point{Latitude: -33.2, Longitude: 151.0}

	assert.Equal(t, DistanceKm(a, b), DistanceKm(b, a))
}

func TestDistanceKm_NonNegative(t *testing.T) {
	points := []Point{
		{0, 0}, {89.9, 179.9}, {-89.9, -179.9}, {45, -45}, {-45, 45},
	}
	for _, a := range points {
		for _, b := range points {
			assert.GreaterOrEqual(t, DistanceKm(a, b), 0.0)
		}
	}
}
