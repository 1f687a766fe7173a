package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rakasetyo/cvrptw-planner/internal/common/validators"
	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/rakasetyo/cvrptw-planner/internal/routing"
	"github.com/rakasetyo/cvrptw-planner/pkg/models"
)

// parseHHMM converts an "HH:MM" time-of-day string into a minute-of-day
// offset, the inverse of the evaluator's own minutesToHHMM formatting.
func parseHHMM(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", value, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", value, err)
	}
	return h*60 + m, nil
}

// buildOptions applies a ParametersOverride on top of routing.DefaultOptions.
func buildOptions(override *ParametersOverride, seed *int64) (routing.Options, error) {
	opts := routing.DefaultOptions()
	if override == nil {
		if seed != nil {
			opts.Seed = *seed
		}
		return opts, nil
	}

	if override.AvgSpeedKmh != nil {
		opts.AvgSpeedKmh = *override.AvgSpeedKmh
	}
	if override.ServiceMinutes != nil {
		opts.ServiceMinutes = *override.ServiceMinutes
	}
	if override.StartTime != nil {
		startMinute, err := parseHHMM(*override.StartTime)
		if err != nil {
			return opts, fmt.Errorf("invalid start_time: %w", err)
		}
		opts.StartMinute = startMinute
	}
	if override.MaxWorkdayHours != nil {
		opts.MaxWorkdayHours = *override.MaxWorkdayHours
	}
	if override.WeightDistance != nil {
		opts.WeightDistance = *override.WeightDistance
	}
	if override.WeightWait != nil {
		opts.WeightWait = *override.WeightWait
	}
	if override.WeightCapacity != nil {
		opts.WeightCapacity = *override.WeightCapacity
	}
	if override.WeightUnassigned != nil {
		opts.WeightUnassigned = *override.WeightUnassigned
	}
	if override.WeightLate != nil {
		opts.WeightLate = *override.WeightLate
	}
	if override.WeightOvertime != nil {
		opts.WeightOvertime = *override.WeightOvertime
	}
	if override.InitialTemp != nil {
		opts.InitialTemp = *override.InitialTemp
	}
	if override.CoolingRate != nil {
		opts.CoolingRate = *override.CoolingRate
	}
	if override.MaxIterations != nil {
		opts.MaxIterations = *override.MaxIterations
	}
	if override.ProgressInterval != nil {
		opts.ProgressInterval = *override.ProgressInterval
	}
	if seed != nil {
		opts.Seed = *seed
	}

	return opts, nil
}

// toRoutingVehicles converts the request DTOs into the engine's input types.
func toRoutingVehicles(reqs []VehicleRequest) []routing.Vehicle {
	vehicles := make([]routing.Vehicle, 0, len(reqs))
	for _, r := range reqs {
		vehicles = append(vehicles, routing.Vehicle{
			ID:         r.ID,
			CapacityKg: r.CapacityKg,
			Origin:     geo.Point{Latitude: r.Latitude, Longitude: r.Longitude},
		})
	}
	return vehicles
}

// toRoutingOrders converts the request DTOs into the engine's input types.
// Window strings are assumed already validated as parseable "HH:MM".
func toRoutingOrders(reqs []OrderRequest) ([]routing.Order, error) {
	orders := make([]routing.Order, 0, len(reqs))
	for _, r := range reqs {
		openMin, err := parseHHMM(r.WindowOpen)
		if err != nil {
			return nil, fmt.Errorf("order %s: window_open: %w", r.ID, err)
		}
		closeMin, err := parseHHMM(r.WindowClose)
		if err != nil {
			return nil, fmt.Errorf("order %s: window_close: %w", r.ID, err)
		}
		orders = append(orders, routing.Order{
			ID:             r.ID,
			Destination:    geo.Point{Latitude: r.Latitude, Longitude: r.Longitude},
			WeightKg:       r.WeightKg,
			WindowOpenMin:  openMin,
			WindowCloseMin: closeMin,
			Priority:       r.Priority,
		})
	}
	return orders, nil
}

// validateRequest runs the field- and cross-record-level business rules
// before the request ever reaches the engine. Time windows are validated in
// minute form, after parsing, so a malformed "HH:MM" surfaces as a parse
// error rather than a silent zero-window.
func validateRequest(req SolveRequest) validators.ValidationErrors {
	var errs validators.ValidationErrors

	vehicleInputs := make([]validators.VehicleInput, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		vehicleInputs = append(vehicleInputs, validators.VehicleInput{
			ID:         v.ID,
			CapacityKg: v.CapacityKg,
			Latitude:   v.Latitude,
			Longitude:  v.Longitude,
		})
	}

	orderInputs := make([]validators.OrderInput, 0, len(req.Orders))
	for _, o := range req.Orders {
		openMin, openErr := parseHHMM(o.WindowOpen)
		closeMin, closeErr := parseHHMM(o.WindowClose)
		if openErr != nil {
			errs.AddError("orders["+o.ID+"].window_open", openErr.Error())
		}
		if closeErr != nil {
			errs.AddError("orders["+o.ID+"].window_close", closeErr.Error())
		}
		orderInputs = append(orderInputs, validators.OrderInput{
			ID:             o.ID,
			Latitude:       o.Latitude,
			Longitude:      o.Longitude,
			WeightKg:       o.WeightKg,
			WindowOpenMin:  openMin,
			WindowCloseMin: closeMin,
			Priority:       o.Priority,
		})
	}

	errs = append(errs, validators.ValidateSolveRequest(vehicleInputs, orderInputs)...)
	return errs
}

// fingerprint computes the input fingerprint used for caching and
// deduplication, and the JSON blob of resolved parameters stored alongside it.
func fingerprint(vehicles []routing.Vehicle, orders []routing.Order, opts routing.Options) (string, models.JSON) {
	fpVehicles := make([]models.FingerprintVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		fpVehicles = append(fpVehicles, models.NewFingerprintVehicle(v.ID, v.CapacityKg, v.Origin.Latitude, v.Origin.Longitude))
	}

	fpOrders := make([]models.FingerprintOrder, 0, len(orders))
	for _, o := range orders {
		fpOrders = append(fpOrders, models.NewFingerprintOrder(o.ID, o.Destination.Latitude, o.Destination.Longitude, o.WeightKg, o.WindowOpenMin, o.WindowCloseMin, o.Priority))
	}

	parameters := models.JSON{
		"avg_speed_kmh":     opts.AvgSpeedKmh,
		"service_minutes":   opts.ServiceMinutes,
		"start_minute":      opts.StartMinute,
		"max_workday_hours": opts.MaxWorkdayHours,
		"w_dist":            opts.WeightDistance,
		"w_wait":            opts.WeightWait,
		"w_cap":             opts.WeightCapacity,
		"w_unassigned":      opts.WeightUnassigned,
		"w_late":            opts.WeightLate,
		"w_ot":              opts.WeightOvertime,
		"initial_temp":      opts.InitialTemp,
		"cooling_rate":      opts.CoolingRate,
		"max_iterations":    opts.MaxIterations,
	}

	fp := models.FingerprintSolveInput(fpVehicles, fpOrders, parameters, opts.Seed)
	return fp, parameters
}
