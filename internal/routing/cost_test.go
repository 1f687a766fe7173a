package routing

import (
	"math"
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/stretchr/testify/assert"
)

func TestCostRoute_InfeasibleIsInfinite(t *testing.T) {
	vehicle := testVehicle()
	stops := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 200, WindowOpenMin: 0, WindowCloseMin: 1439},
	}

	cost := CostRoute(vehicle, stops, DefaultOptions())

	assert.True(t, math.IsInf(cost, 1))
}

func TestCostRoute_EmptyIsZero(t *testing.T) {
	cost := CostRoute(testVehicle(), nil, DefaultOptions())
	assert.Zero(t, cost)
}

func TestCostUnassigned_PriorityIsSquared(t *testing.T) {
	opts := DefaultOptions()
	low := CostUnassigned(Order{Priority: 1}, opts)
	high := CostUnassigned(Order{Priority: 5}, opts)

	assert.Equal(t, opts.WeightUnassigned, low)
	assert.Equal(t, opts.WeightUnassigned*25, high)
	assert.Greater(t, high, low*5, "priority-squared penalty must dominate a merely-linear scaling")
}

func TestCost_SumsRoutesAndUnassigned(t *testing.T) {
	opts := DefaultOptions()
	vehicle := testVehicle()
	order := Order{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 5, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 3}

	solution := NewSolution([]Vehicle{vehicle})
	solution.Routes[vehicle.ID].Stops = []Order{order}
	solution.Unassigned = []UnassignedOrder{{Order: Order{Priority: 2}, RejectionReason: "test"}}

	got := Cost(solution, opts)
	want := CostRoute(vehicle, []Order{order}, opts) + CostUnassigned(Order{Priority: 2}, opts)

	assert.InDelta(t, want, got, 1e-9)
}

func TestCost_AnyInfeasibleRouteMakesSolutionInfeasible(t *testing.T) {
	opts := DefaultOptions()
	vehicle := testVehicle()
	overweight := Order{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 500}

	solution := NewSolution([]Vehicle{vehicle})
	solution.Routes[vehicle.ID].Stops = []Order{overweight}

	assert.True(t, math.IsInf(Cost(solution, opts), 1))
}
