package routing

import (
	"context"
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func benchmarkVehiclesOrders() ([]Vehicle, []Order) {
	vehicles := []Vehicle{
		{ID: "v1", CapacityKg: 50, Origin: geo.Point{Latitude: -6.2088, Longitude: 106.8456}},
		{ID: "v2", CapacityKg: 50, Origin: geo.Point{Latitude: -6.3, Longitude: 106.9}},
	}
	orders := []Order{
		{ID: "o1", Destination: geo.Point{Latitude: -6.21, Longitude: 106.85}, WeightKg: 10, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 3},
		{ID: "o2", Destination: geo.Point{Latitude: -6.25, Longitude: 106.87}, WeightKg: 10, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 2},
		{ID: "o3", Destination: geo.Point{Latitude: -6.28, Longitude: 106.88}, WeightKg: 10, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 4},
		{ID: "o4", Destination: geo.Point{Latitude: -6.31, Longitude: 106.92}, WeightKg: 10, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 1},
		{ID: "o5", Destination: geo.Point{Latitude: -6.33, Longitude: 106.95}, WeightKg: 10, WindowOpenMin: 0, WindowCloseMin: 1439, Priority: 5},
	}
	return vehicles, orders
}

func TestAnneal_NeverWorsensGreedy(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 500
	vehicles, orders := benchmarkVehiclesOrders()

	greedy := Greedy(vehicles, orders, opts)
	greedyCost := Cost(greedy, opts)

	best, err := Anneal(context.Background(), vehicles, greedy, opts, nil)
	require.NoError(t, err)

	assert.LessOrEqual(t, Cost(best, opts), greedyCost)
}

func TestAnneal_DeterministicForSameSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 300
	opts.Seed = 42
	vehicles, orders := benchmarkVehiclesOrders()
	greedy := Greedy(vehicles, orders, opts)

	firstRun, err := Anneal(context.Background(), vehicles, greedy, opts, nil)
	require.NoError(t, err)
	secondRun, err := Anneal(context.Background(), vehicles, greedy, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, Cost(firstRun, opts), Cost(secondRun, opts))
	for id := range firstRun.Routes {
		assert.Equal(t, firstRun.Routes[id].Stops, secondRun.Routes[id].Stops)
	}
}

func TestAnneal_ProgressEventsAreMonotonic(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 500
	opts.ProgressInterval = 50
	vehicles, orders := benchmarkVehiclesOrders()
	greedy := Greedy(vehicles, orders, opts)

	recorder := &recordingSink{}
	_, err := Anneal(context.Background(), vehicles, greedy, opts, recorder)
	require.NoError(t, err)

	require.NotEmpty(t, recorder.events)
	for i := 1; i < len(recorder.events); i++ {
		assert.GreaterOrEqual(t, recorder.events[i].Iteration, recorder.events[i-1].Iteration)
		assert.LessOrEqual(t, recorder.events[i].BestCost, recorder.events[i-1].BestCost)
	}
}

func TestAnneal_HonorsCancellation(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 1000000
	vehicles, orders := benchmarkVehiclesOrders()
	greedy := Greedy(vehicles, orders, opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best, err := Anneal(ctx, vehicles, greedy, opts, nil)

	assert.Error(t, err)
	assert.NotNil(t, best)
}

type recordingSink struct {
	events []ProgressEvent
}

func (s *recordingSink) Publish(e ProgressEvent) {
	s.events = append(s.events, e)
}
