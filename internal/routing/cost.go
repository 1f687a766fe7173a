package routing

import "math"

// InfeasibleCost is the sentinel returned for any route or solution
// composition that violates a hard constraint.
var InfeasibleCost = math.Inf(1)

// CostRoute returns the weighted cost of one vehicle's route, or
// InfeasibleCost if the route violates capacity, a time window, or the
// workday cap.
func CostRoute(vehicle Vehicle, stops []Order, opts Options) float64 {
	metrics := Evaluate(vehicle, stops, opts)
	return costFromMetrics(vehicle, metrics, opts)
}

// costFromMetrics applies the weighted cost formula to an already-computed
// RouteMetrics, letting callers that need the metrics for another purpose
// (e.g. the greedy constructor's rejection reasons) avoid evaluating the
// same route twice.
func costFromMetrics(vehicle Vehicle, metrics RouteMetrics, opts Options) float64 {
	if !metrics.Feasible {
		return InfeasibleCost
	}
	loadRatio := metrics.LoadKg / vehicle.CapacityKg
	return opts.WeightDistance*metrics.DistanceKm +
		opts.WeightWait*(metrics.WaitMinutes/60.0) +
		opts.WeightCapacity*loadRatio*loadRatio
}

// CostUnassigned returns the penalty for leaving an order unassigned.
// Priority is squared so higher-priority orders dominate the penalty.
func CostUnassigned(order Order, opts Options) float64 {
	p := float64(order.Priority)
	return opts.WeightUnassigned * p * p
}

// Cost returns the global cost of a solution: the sum of every route's
// cost plus the penalty for every unassigned order. It returns
// InfeasibleCost if any route is infeasible.
func Cost(solution *Solution, opts Options) float64 {
	var total float64
	for _, route := range solution.Routes {
		c := CostRoute(route.Vehicle, route.Stops, opts)
		if math.IsInf(c, 1) {
			return InfeasibleCost
		}
		total += c
	}
	for _, u := range solution.Unassigned {
		total += CostUnassigned(u.Order, opts)
	}
	return total
}
