package routing

import (
	"context"
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_EmptyOrderList(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	solution, err := Solve(context.Background(), vehicles, nil, DefaultOptions(), nil)

	require.NoError(t, err)
	assert.Empty(t, solution.Unassigned)
	assert.Zero(t, Cost(solution, DefaultOptions()))
}

func TestSolve_RejectsNonPositiveCapacity(t *testing.T) {
	vehicles := []Vehicle{{ID: "v1", CapacityKg: 0}}
	_, err := Solve(context.Background(), vehicles, nil, DefaultOptions(), nil)

	assert.Error(t, err)
}

func TestSolve_RejectsDuplicateVehicleID(t *testing.T) {
	vehicles := []Vehicle{{ID: "v1", CapacityKg: 10}, {ID: "v1", CapacityKg: 20}}
	_, err := Solve(context.Background(), vehicles, nil, DefaultOptions(), nil)

	assert.Error(t, err)
}

func TestSolve_RejectsDuplicateOrderID(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	orders := []Order{
		{ID: "dup", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 5, Priority: 1, WindowOpenMin: 0, WindowCloseMin: 1439},
		{ID: "dup", Destination: geo.Point{Latitude: -6.22, Longitude: 106.86}, WeightKg: 5, Priority: 1, WindowOpenMin: 0, WindowCloseMin: 1439},
	}
	_, err := Solve(context.Background(), vehicles, orders, DefaultOptions(), nil)

	assert.Error(t, err)
}

// TestSolve_UniversalInvariants exercises the engine against the universal
// invariants that must hold for every solve output, using a mixed
// multi-vehicle, multi-order scenario.
func TestSolve_UniversalInvariants(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 500
	opts.Seed = 7

	vehicles := []Vehicle{
		{ID: "v1", CapacityKg: 40, Origin: geo.Point{Latitude: -6.2088, Longitude: 106.8456}},
		{ID: "v2", CapacityKg: 30, Origin: geo.Point{Latitude: -6.3, Longitude: 106.9}},
	}
	orders := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 10, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 3},
		{ID: "o2", Destination: geo.Point{Latitude: -6.25, Longitude: 106.87}, WeightKg: 15, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 2},
		{ID: "o3", Destination: geo.Point{Latitude: -6.28, Longitude: 106.88}, WeightKg: 12, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 4},
		{ID: "o4", Destination: geo.Point{Latitude: -6.31, Longitude: 106.92}, WeightKg: 8, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 1},
	}

	greedy := Greedy(vehicles, orders, opts)
	greedyCost := Cost(greedy, opts)

	solution, err := Solve(context.Background(), vehicles, orders, opts, nil)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, r := range solution.Routes {
		for _, o := range r.Stops {
			seen[o.ID]++
		}
	}
	for _, u := range solution.Unassigned {
		seen[u.Order.ID]++
	}
	assert.Len(t, seen, len(orders), "invariant 1: every input order appears exactly once")
	for id, count := range seen {
		assert.Equal(t, 1, count, "order %s must appear exactly once", id)
	}

	for _, r := range solution.Routes {
		assert.LessOrEqual(t, r.TotalWeightKg(), r.Vehicle.CapacityKg, "invariant 2: route weight within capacity")
		metrics := Evaluate(r.Vehicle, r.Stops, opts)
		assert.True(t, metrics.Feasible, "invariant 3/4: every returned route is feasible")
	}

	assert.LessOrEqual(t, Cost(solution, opts), greedyCost, "invariant 5: SA never returns a solution worse than greedy")
}

func TestSolve_DeterministicReproducibility(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 300
	opts.Seed = 99

	vehicles, orders := benchmarkVehiclesOrders()

	first, err := Solve(context.Background(), vehicles, orders, opts, nil)
	require.NoError(t, err)
	second, err := Solve(context.Background(), vehicles, orders, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, Cost(first, opts), Cost(second, opts))
	for id := range first.Routes {
		assert.Equal(t, first.Routes[id].Stops, second.Routes[id].Stops)
	}
}

func TestSolve_WeightExceedsFleetMax(t *testing.T) {
	vehicles := []Vehicle{testVehicle()}
	orders := []Order{
		{ID: "heavy", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 1000, Priority: 1, WindowOpenMin: 0, WindowCloseMin: 1439},
	}

	solution, err := Solve(context.Background(), vehicles, orders, DefaultOptions(), nil)

	require.NoError(t, err)
	require.Len(t, solution.Unassigned, 1)
	assert.Equal(t, reasonWeightExceedsFleetMax, solution.Unassigned[0].RejectionReason)
}
