package jobs

import (
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/rakasetyo/cvrptw-planner/internal/routing"
)

func TestEncodeSolutionOmitsEmptyRoutesAndReportsUnassigned(t *testing.T) {
	opts := routing.DefaultOptions()

	served := routing.Vehicle{ID: "v1", CapacityKg: 1000, Origin: geo.Point{Latitude: -6.2, Longitude: 106.8}}
	idle := routing.Vehicle{ID: "v2", CapacityKg: 1000, Origin: geo.Point{Latitude: -6.2, Longitude: 106.8}}
	order := routing.Order{
		ID:             "o1",
		Destination:    geo.Point{Latitude: -6.21, Longitude: 106.81},
		WeightKg:       50,
		WindowOpenMin:  0,
		WindowCloseMin: 1439,
	}
	rejected := routing.Order{ID: "o2", WeightKg: 5000}

	solution := routing.NewSolution([]routing.Vehicle{served, idle})
	solution.Routes[served.ID].Stops = []routing.Order{order}
	solution.Unassigned = []routing.UnassignedOrder{{Order: rejected, RejectionReason: "capacity exceeded"}}

	result, metrics := EncodeSolution([]routing.Vehicle{served, idle}, solution, opts)

	vehiclesOut, ok := result["vehicles"].([]map[string]interface{})
	if !ok {
		t.Fatalf("expected vehicles to be []map[string]interface{}, got %T", result["vehicles"])
	}
	if len(vehiclesOut) != 1 {
		t.Fatalf("expected exactly one vehicle with a route, got %d", len(vehiclesOut))
	}
	if vehiclesOut[0]["id"] != served.ID {
		t.Errorf("expected encoded vehicle id %q, got %v", served.ID, vehiclesOut[0]["id"])
	}

	stops, ok := vehiclesOut[0]["stops"].([]map[string]interface{})
	if !ok || len(stops) != 1 {
		t.Fatalf("expected exactly one stop, got %v", vehiclesOut[0]["stops"])
	}
	if stops[0]["order_id"] != order.ID {
		t.Errorf("expected stop order_id %q, got %v", order.ID, stops[0]["order_id"])
	}
	if stops[0]["sequence"] != 1 {
		t.Errorf("expected sequence 1, got %v", stops[0]["sequence"])
	}

	unassignedOut, ok := result["unassigned_orders"].([]map[string]interface{})
	if !ok || len(unassignedOut) != 1 {
		t.Fatalf("expected exactly one unassigned order, got %v", result["unassigned_orders"])
	}
	if unassignedOut[0]["id"] != rejected.ID {
		t.Errorf("expected unassigned id %q, got %v", rejected.ID, unassignedOut[0]["id"])
	}

	if metrics.AssignedCount != 1 {
		t.Errorf("AssignedCount = %d, want 1", metrics.AssignedCount)
	}
	if metrics.UnassignedCount != 1 {
		t.Errorf("UnassignedCount = %d, want 1", metrics.UnassignedCount)
	}
}

func TestDecodeSolveInputRoundTrip(t *testing.T) {
	data := map[string]interface{}{
		"solve_run_id": "run-1",
		"seed":         float64(7),
		"vehicles": []interface{}{
			map[string]interface{}{
				"id":          "v1",
				"capacity_kg": float64(1000),
				"origin_lat":  float64(-6.2),
				"origin_lon":  float64(106.8),
			},
		},
		"orders": []interface{}{
			map[string]interface{}{
				"id":                "o1",
				"dest_lat":          float64(-6.21),
				"dest_lon":          float64(106.81),
				"weight_kg":         float64(50),
				"window_open_min":   float64(480),
				"window_close_min":  float64(1020),
				"priority":          float64(2),
			},
		},
	}

	vehicles, orders, opts, err := decodeSolveInput(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 1 || vehicles[0].ID != "v1" || vehicles[0].CapacityKg != 1000 {
		t.Fatalf("unexpected vehicles: %+v", vehicles)
	}
	if len(orders) != 1 || orders[0].WindowOpenMin != 480 || orders[0].Priority != 2 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
	if opts.Seed != 7 {
		t.Errorf("Seed = %d, want 7", opts.Seed)
	}
}

func TestDecodeSolveInputMissingFields(t *testing.T) {
	if _, _, _, err := decodeSolveInput(map[string]interface{}{}); err == nil {
		t.Fatal("expected an error for missing vehicles/orders")
	}
}
