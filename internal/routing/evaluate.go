package routing

import (
	"fmt"

	"github.com/rakasetyo/cvrptw-planner/internal/geo"
)

// Evaluate simulates a vehicle traversing an ordered sequence of orders in
// time and space, and classifies the result as feasible or not.
//
// Capacity is checked first and short-circuits the time simulation
// entirely. Lateness is checked at each stop during the simulation; the
// first late stop stops the simulation and is returned with whatever
// metrics were accumulated up to that point. The workday limit is checked
// once, after the last stop.
func Evaluate(vehicle Vehicle, stops []Order, opts Options) RouteMetrics {
	var loadKg float64
	for _, o := range stops {
		loadKg += o.WeightKg
	}
	if loadKg > vehicle.CapacityKg {
		return RouteMetrics{
			LoadKg:          loadKg,
			Feasible:        false,
			RejectionReason: reasonCapacityExceeded,
		}
	}

	dayStart := float64(opts.StartMinute)
	clock := dayStart
	pos := vehicle.Origin

	var distanceKm, waitMinutes float64

	for _, o := range stops {
		d := geo.DistanceKm(pos, o.Destination)
		distanceKm += d

		travelMinutes := d / opts.AvgSpeedKmh * 60.0
		clock += travelMinutes

		if clock < float64(o.WindowOpenMin) {
			waitMinutes += float64(o.WindowOpenMin) - clock
			clock = float64(o.WindowOpenMin)
		}

		if clock > float64(o.WindowCloseMin) {
			return RouteMetrics{
				DistanceKm:      distanceKm,
				WaitMinutes:     waitMinutes,
				LoadKg:          loadKg,
				LatenessCount:   1,
				Feasible:        false,
				RejectionReason: fmt.Sprintf("late arrival at %s", o.ID),
			}
		}

		clock += opts.ServiceMinutes
		pos = o.Destination
	}

	totalHours := (clock - dayStart) / 60.0
	if totalHours > opts.MaxWorkdayHours {
		return RouteMetrics{
			DistanceKm:      distanceKm,
			WaitMinutes:     waitMinutes,
			LoadKg:          loadKg,
			OvertimeHours:   totalHours - opts.MaxWorkdayHours,
			Feasible:        false,
			RejectionReason: reasonWorkdayExceeded,
		}
	}

	return RouteMetrics{
		DistanceKm:  distanceKm,
		WaitMinutes: waitMinutes,
		LoadKg:      loadKg,
		Feasible:    true,
	}
}

// StopTiming is the simulated arrival schedule for one stop, used to
// render the output contract's estimated_delivery_time field.
type StopTiming struct {
	Order                 Order
	ArrivalMinute         float64
	EstimatedDeliveryTime string
}

// SimulateTimings replays the same time-simulation rules as Evaluate but
// returns the per-stop schedule instead of a pass/fail verdict. Callers
// should only invoke this on a route already known feasible.
func SimulateTimings(vehicle Vehicle, stops []Order, opts Options) []StopTiming {
	clock := float64(opts.StartMinute)
	pos := vehicle.Origin

	timings := make([]StopTiming, 0, len(stops))
	for _, o := range stops {
		d := geo.DistanceKm(pos, o.Destination)
		clock += d / opts.AvgSpeedKmh * 60.0
		if clock < float64(o.WindowOpenMin) {
			clock = float64(o.WindowOpenMin)
		}
		timings = append(timings, StopTiming{
			Order:                 o,
			ArrivalMinute:         clock,
			EstimatedDeliveryTime: minutesToHHMM(clock),
		})
		clock += opts.ServiceMinutes
		pos = o.Destination
	}
	return timings
}

func minutesToHHMM(minute float64) string {
	total := int(minute + 0.5)
	h := (total / 60) % 24
	m := total % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
