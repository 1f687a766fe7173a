package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/rakasetyo/cvrptw-planner/internal/routing"
	"github.com/rakasetyo/cvrptw-planner/pkg/models"
)

// NewTestVehicle creates a test vehicle with default values. A depot in
// central Jakarta is used as the default origin.
func NewTestVehicle() routing.Vehicle {
	return routing.Vehicle{
		ID:         uuid.New().String(),
		CapacityKg: 1000.0,
		Origin: geo.Point{
			Latitude:  -6.2088,
			Longitude: 106.8456,
		},
	}
}

// NewTestOrder creates a test order with default values. The window spans
// the whole workday so it rarely drives a test's rejection path by accident.
func NewTestOrder() routing.Order {
	return routing.Order{
		ID: uuid.New().String(),
		Destination: geo.Point{
			Latitude:  -6.1751,
			Longitude: 106.8650,
		},
		WeightKg:       50.0,
		WindowOpenMin:  0,
		WindowCloseMin: 1439,
		Priority:       0,
	}
}

// NewTestVehicles creates n test vehicles with distinct IDs.
func NewTestVehicles(n int) []routing.Vehicle {
	vehicles := make([]routing.Vehicle, 0, n)
	for i := 0; i < n; i++ {
		vehicles = append(vehicles, NewTestVehicle())
	}
	return vehicles
}

// NewTestOrders creates n test orders with distinct IDs and destinations
// scattered in a small grid around Jakarta so routes have something to solve.
func NewTestOrders(n int) []routing.Order {
	orders := make([]routing.Order, 0, n)
	for i := 0; i < n; i++ {
		order := NewTestOrder()
		offset := float64(i) * 0.01
		order.Destination.Latitude += offset
		order.Destination.Longitude += offset
		orders = append(orders, order)
	}
	return orders
}

// NewTestSolveRun creates a queued SolveRun fixture for a scenario with the
// given vehicle and order counts.
func NewTestSolveRun(vehicleCount, orderCount int) *models.SolveRun {
	return models.NewSolveRun(
		"test-scenario",
		1,
		"test-fingerprint-"+uuid.New().String()[:8],
		models.JSON{},
		vehicleCount,
		orderCount,
		time.Now(),
	)
}
