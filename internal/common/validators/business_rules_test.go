package validators

import (
	"testing"
)

func TestValidateCapacityKg(t *testing.T) {
	tests := []struct {
		name       string
		capacityKg float64
		wantErr    bool
	}{
		{"positive capacity", 1000.0, false},
		{"zero capacity", 0.0, true},
		{"negative capacity", -50.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCapacityKg(tt.capacityKg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCapacityKg() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		wantErr   bool
	}{
		{"valid Jakarta coords", -6.2088, 106.8456, false},
		{"latitude too high", 91.0, 106.8456, true},
		{"latitude too low", -91.0, 106.8456, true},
		{"longitude too high", -6.2088, 181.0, true},
		{"longitude too low", -6.2088, -181.0, true},
		{"boundary values valid", 90.0, 180.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.latitude, tt.longitude)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimeWindow(t *testing.T) {
	tests := []struct {
		name           string
		windowOpenMin  int
		windowCloseMin int
		wantErr        bool
	}{
		{"valid window", 480, 1020, false},
		{"open after close", 1020, 480, true},
		{"open equals close", 600, 600, false},
		{"open below range", -1, 600, true},
		{"close above range", 0, 1440, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeWindow(tt.windowOpenMin, tt.windowCloseMin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePriority(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		wantErr  bool
	}{
		{"lowest valid priority", 1, false},
		{"highest valid priority", 5, false},
		{"zero priority", 0, true},
		{"priority too high", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePriority(tt.priority)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePriority() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSolveRequest(t *testing.T) {
	vehicles := []VehicleInput{
		{ID: "v1", CapacityKg: 1000, Latitude: -6.2, Longitude: 106.8},
	}
	orders := []OrderInput{
		{ID: "o1", Latitude: -6.18, Longitude: 106.82, WeightKg: 50, WindowOpenMin: 480, WindowCloseMin: 1020, Priority: 1},
	}

	if errs := ValidateSolveRequest(vehicles, orders); errs.HasErrors() {
		t.Fatalf("expected no errors, got %v", errs)
	}

	if errs := ValidateSolveRequest(nil, orders); !errs.HasErrors() {
		t.Fatal("expected an error for an empty vehicle list")
	}

	dupVehicles := []VehicleInput{
		{ID: "v1", CapacityKg: 1000, Latitude: -6.2, Longitude: 106.8},
		{ID: "v1", CapacityKg: 500, Latitude: -6.3, Longitude: 106.9},
	}
	if errs := ValidateSolveRequest(dupVehicles, orders); !errs.HasErrors() {
		t.Fatal("expected an error for duplicate vehicle ids")
	}
}
