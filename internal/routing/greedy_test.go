package routing

import (
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/stretchr/testify/assert"
)

func TestGreedy_EmptyOrderList(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	solution := Greedy(vehicles, nil, DefaultOptions())

	assert.Empty(t, solution.Unassigned)
	for _, r := range solution.Routes {
		assert.Empty(t, r.Stops)
	}
	assert.Zero(t, Cost(solution, DefaultOptions()))
}

func TestGreedy_SingleOrderPlaced(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	orders := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 5, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 3},
	}

	solution := Greedy(vehicles, orders, DefaultOptions())

	assert.Empty(t, solution.Unassigned)
	assert.Equal(t, []Order{orders[0]}, solution.Routes["v1"].Stops)
}

func TestGreedy_WeightExceedsFleetMax(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	orders := []Order{
		{ID: "toobig", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 1000, Priority: 1},
	}

	solution := Greedy(vehicles, orders, DefaultOptions())

	assert.Len(t, solution.Unassigned, 1)
	assert.Equal(t, reasonWeightExceedsFleetMax, solution.Unassigned[0].RejectionReason)
}

func TestGreedy_UnreachableWithinWindow(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	orders := []Order{
		{ID: "faraway", Destination: geo.Point{Latitude: 10, Longitude: 50}, WeightKg: 5, WindowOpenMin: 0, WindowCloseMin: 10, Priority: 1},
	}

	solution := Greedy(vehicles, orders, DefaultOptions())

	assert.Len(t, solution.Unassigned, 1)
	assert.Empty(t, solution.Routes["v1"].Stops)
}

func TestGreedy_PriorityOrderingAmongEquallyFeasibleOrders(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	low := Order{ID: "low", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 60, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 1}
	high := Order{ID: "high", Destination: geo.Point{Latitude: -6.22, Longitude: 106.86}, WeightKg: 60, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 5}

	solution := Greedy(vehicles, []Order{low, high}, DefaultOptions())

	stops := solution.Routes["v1"].Stops
	assert.Equal(t, "high", stops[0].ID, "higher-priority order is placed first when only one of the two fits")
}

func TestGreedy_ProducesOnlyFeasibleRoutes(t *testing.T) {
	vehicles := []Vehicle{{ID: "v1", CapacityKg: 20, Origin: geo.Point{Latitude: -6.2088, Longitude: 106.8456}}}
	orders := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 15, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 3},
		{ID: "o2", Destination: geo.Point{Latitude: -6.22, Longitude: 106.86}, WeightKg: 15, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 3},
	}

	solution := Greedy(vehicles, orders, DefaultOptions())

	for _, r := range solution.Routes {
		cost := CostRoute(r.Vehicle, r.Stops, DefaultOptions())
		assert.NotEqual(t, InfeasibleCost, cost)
	}
	assert.Len(t, solution.Unassigned, 1, "second 15kg order cannot fit alongside the first in a 20kg vehicle")
}
