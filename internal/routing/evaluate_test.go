package routing

import (
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/stretchr/testify/assert"
)

func testVehicle() Vehicle {
	return Vehicle{ID: "v1", CapacityKg: 100, Origin: geo.Point{Latitude: -6.2088, Longitude: 106.8456}}
}

func TestEvaluate_EmptyRouteIsFeasible(t *testing.T) {
	metrics := Evaluate(testVehicle(), nil, DefaultOptions())

	assert.True(t, metrics.Feasible)
	assert.Zero(t, metrics.DistanceKm)
	assert.Zero(t, metrics.WaitMinutes)
	assert.Zero(t, metrics.LoadKg)
	assert.Zero(t, metrics.OvertimeHours)
}

func TestEvaluate_CapacityExceeded(t *testing.T) {
	vehicle := testVehicle()
	stops := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 60, WindowOpenMin: 0, WindowCloseMin: 1439},
		{ID: "o2", Destination: geo.Point{Latitude: -6.22, Longitude: 106.86}, WeightKg: 60, WindowOpenMin: 0, WindowCloseMin: 1439},
	}

	metrics := Evaluate(vehicle, stops, DefaultOptions())

	assert.False(t, metrics.Feasible)
	assert.Equal(t, reasonCapacityExceeded, metrics.RejectionReason)
	assert.Equal(t, 120.0, metrics.LoadKg)
	assert.Zero(t, metrics.DistanceKm, "capacity pre-check short-circuits before any time simulation")
}

func TestEvaluate_LateArrival(t *testing.T) {
	vehicle := testVehicle()
	stops := []Order{
		{ID: "faraway", Destination: geo.Point{Latitude: 10, Longitude: 50}, WeightKg: 5, WindowOpenMin: 481, WindowCloseMin: 482},
	}

	metrics := Evaluate(vehicle, stops, DefaultOptions())

	assert.False(t, metrics.Feasible)
	assert.Equal(t, "late arrival at faraway", metrics.RejectionReason)
	assert.Equal(t, 1, metrics.LatenessCount)
}

func TestEvaluate_WaitsForEarlyArrival(t *testing.T) {
	vehicle := testVehicle()
	opts := DefaultOptions()
	stops := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.209, Longitude: 106.846}, WeightKg: 5, WindowOpenMin: 600, WindowCloseMin: 700},
	}

	metrics := Evaluate(vehicle, stops, opts)

	assert.True(t, metrics.Feasible)
	assert.Greater(t, metrics.WaitMinutes, 0.0)
}

func TestEvaluate_WorkdayExceeded(t *testing.T) {
	vehicle := testVehicle()
	opts := DefaultOptions()
	stops := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.9667, Longitude: 110.4167}, WeightKg: 5, WindowOpenMin: 0, WindowCloseMin: 1439},
	}

	metrics := Evaluate(vehicle, stops, opts)

	assert.False(t, metrics.Feasible)
	assert.Equal(t, reasonWorkdayExceeded, metrics.RejectionReason)
	assert.Greater(t, metrics.OvertimeHours, 0.0)
}

func TestEvaluate_SingleOrderWithinWindow(t *testing.T) {
	vehicle := testVehicle()
	opts := DefaultOptions()
	stops := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 5, WindowOpenMin: 0, WindowCloseMin: 1439},
	}

	metrics := Evaluate(vehicle, stops, opts)

	assert.True(t, metrics.Feasible)
	expectedDistance := geo.DistanceKm(vehicle.Origin, stops[0].Destination)
	assert.InDelta(t, expectedDistance, metrics.DistanceKm, 1e-9, "single leg from origin to destination only, no return modeled")
}
