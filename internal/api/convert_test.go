package api

import (
	"testing"

	"github.com/rakasetyo/cvrptw-planner/internal/routing"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"midnight", "00:00", 0, false},
		{"morning", "08:00", 480, false},
		{"end of day", "23:59", 1439, false},
		{"missing colon", "0800", 0, true},
		{"non-numeric hour", "ab:00", 0, true},
		{"too many parts", "08:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHHMM(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHHMM(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseHHMM(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildOptionsDefaultsWhenNoOverride(t *testing.T) {
	opts, err := buildOptions(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defaults := routing.DefaultOptions()
	if opts != defaults {
		t.Errorf("expected defaults unchanged, got %+v", opts)
	}
}

func TestBuildOptionsAppliesOverridesAndSeed(t *testing.T) {
	avgSpeed := 45.0
	startTime := "09:30"
	maxIter := 500
	seed := int64(42)

	override := &ParametersOverride{
		AvgSpeedKmh:   &avgSpeed,
		StartTime:     &startTime,
		MaxIterations: &maxIter,
	}

	opts, err := buildOptions(override, &seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.AvgSpeedKmh != avgSpeed {
		t.Errorf("AvgSpeedKmh = %v, want %v", opts.AvgSpeedKmh, avgSpeed)
	}
	if opts.StartMinute != 9*60+30 {
		t.Errorf("StartMinute = %v, want %v", opts.StartMinute, 9*60+30)
	}
	if opts.MaxIterations != maxIter {
		t.Errorf("MaxIterations = %v, want %v", opts.MaxIterations, maxIter)
	}
	if opts.Seed != seed {
		t.Errorf("Seed = %v, want %v", opts.Seed, seed)
	}
}

func TestBuildOptionsRejectsInvalidStartTime(t *testing.T) {
	startTime := "not-a-time"
	override := &ParametersOverride{StartTime: &startTime}
	if _, err := buildOptions(override, nil); err == nil {
		t.Fatal("expected an error for an invalid start_time")
	}
}

func TestToRoutingVehiclesAndOrders(t *testing.T) {
	vehicleReqs := []VehicleRequest{
		{ID: "v1", CapacityKg: 1000, Latitude: -6.2, Longitude: 106.8},
	}
	orderReqs := []OrderRequest{
		{ID: "o1", Latitude: -6.18, Longitude: 106.82, WeightKg: 50, WindowOpen: "08:00", WindowClose: "17:00", Priority: 2},
	}

	vehicles := toRoutingVehicles(vehicleReqs)
	if len(vehicles) != 1 || vehicles[0].ID != "v1" || vehicles[0].CapacityKg != 1000 {
		t.Fatalf("unexpected vehicles: %+v", vehicles)
	}

	orders, err := toRoutingOrders(orderReqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].WindowOpenMin != 480 || orders[0].WindowCloseMin != 1020 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestFingerprintIsStableAcrossOrderShuffle(t *testing.T) {
	vehicles := []routing.Vehicle{
		{ID: "v1", CapacityKg: 1000},
		{ID: "v2", CapacityKg: 500},
	}
	orders := []routing.Order{
		{ID: "o1", WeightKg: 10},
		{ID: "o2", WeightKg: 20},
	}
	opts := routing.DefaultOptions()

	fp1, _ := fingerprint(vehicles, orders, opts)

	reversedVehicles := []routing.Vehicle{vehicles[1], vehicles[0]}
	reversedOrders := []routing.Order{orders[1], orders[0]}
	fp2, _ := fingerprint(reversedVehicles, reversedOrders, opts)

	if fp1 != fp2 {
		t.Errorf("expected fingerprint to be stable under reordering, got %q and %q", fp1, fp2)
	}
}
