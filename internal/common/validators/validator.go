package validators

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with field information.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

// Error implements error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// AddError adds a validation error.
func (ve *ValidationErrors) AddError(field, message string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// VehicleInput mirrors the fields accepted on the wire for a vehicle.
type VehicleInput struct {
	ID         string
	CapacityKg float64
	Latitude   float64
	Longitude  float64
}

// OrderInput mirrors the fields accepted on the wire for an order.
type OrderInput struct {
	ID             string
	Latitude       float64
	Longitude      float64
	WeightKg       float64
	WindowOpenMin  int
	WindowCloseMin int
	Priority       int
}

// ValidateVehicle validates a single vehicle's fields, tagging every error
// with the vehicle's index in the submitted list.
func ValidateVehicle(index int, v VehicleInput) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(v.ID) == "" {
		errs.AddError(fmt.Sprintf("vehicles[%d].id", index), "id is required")
	}
	if err := ValidateCapacityKg(v.CapacityKg); err != nil {
		errs.AddError(fmt.Sprintf("vehicles[%d].capacity_kg", index), err.Error())
	}
	if err := ValidateCoordinates(v.Latitude, v.Longitude); err != nil {
		errs.AddError(fmt.Sprintf("vehicles[%d].origin", index), err.Error())
	}

	return errs
}

// ValidateOrder validates a single order's fields, tagging every error with
// the order's index in the submitted list.
func ValidateOrder(index int, o OrderInput) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(o.ID) == "" {
		errs.AddError(fmt.Sprintf("orders[%d].id", index), "id is required")
	}
	if err := ValidateWeightKg(o.WeightKg); err != nil {
		errs.AddError(fmt.Sprintf("orders[%d].weight_kg", index), err.Error())
	}
	if err := ValidateCoordinates(o.Latitude, o.Longitude); err != nil {
		errs.AddError(fmt.Sprintf("orders[%d].destination", index), err.Error())
	}
	if err := ValidateTimeWindow(o.WindowOpenMin, o.WindowCloseMin); err != nil {
		errs.AddError(fmt.Sprintf("orders[%d].window", index), err.Error())
	}
	if err := ValidatePriority(o.Priority); err != nil {
		errs.AddError(fmt.Sprintf("orders[%d].priority", index), err.Error())
	}

	return errs
}

// ValidateSolveRequest validates a full set of vehicles and orders, plus
// cross-record invariants (duplicate IDs) that per-record validation cannot
// catch on its own.
func ValidateSolveRequest(vehicles []VehicleInput, orders []OrderInput) ValidationErrors {
	var errs ValidationErrors

	if len(vehicles) == 0 {
		errs.AddError("vehicles", "at least one vehicle is required")
	}

	seenVehicle := make(map[string]bool, len(vehicles))
	for i, v := range vehicles {
		errs = append(errs, ValidateVehicle(i, v)...)
		if v.ID != "" {
			if seenVehicle[v.ID] {
				errs.AddError(fmt.Sprintf("vehicles[%d].id", i), "duplicate vehicle id")
			}
			seenVehicle[v.ID] = true
		}
	}

	seenOrder := make(map[string]bool, len(orders))
	for i, o := range orders {
		errs = append(errs, ValidateOrder(i, o)...)
		if o.ID != "" {
			if seenOrder[o.ID] {
				errs.AddError(fmt.Sprintf("orders[%d].id", i), "duplicate order id")
			}
			seenOrder[o.ID] = true
		}
	}

	return errs
}
