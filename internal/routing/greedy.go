package routing

import (
	"fmt"
	"math"
	"sort"
)

// Greedy builds a feasible starting solution by sorting orders by priority
// (descending) and window-open (ascending), then inserting each order into
// the (vehicle, position) pair that minimizes the marginal cost of its
// route among all feasible placements. It never produces an infeasible
// route; orders with no feasible placement are recorded as unassigned.
func Greedy(vehicles []Vehicle, orders []Order, opts Options) *Solution {
	solution := NewSolution(vehicles)

	maxCapacity := 0.0
	for _, v := range vehicles {
		if v.CapacityKg > maxCapacity {
			maxCapacity = v.CapacityKg
		}
	}

	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].WindowOpenMin < sorted[j].WindowOpenMin
	})

	for _, order := range sorted {
		if order.WeightKg > maxCapacity {
			solution.Unassigned = append(solution.Unassigned, UnassignedOrder{
				Order:           order,
				RejectionReason: reasonWeightExceedsFleetMax,
			})
			continue
		}

		bestVehicleID := ""
		bestPosition := -1
		bestDelta := math.Inf(1)
		reasons := make([]string, 0)
		seenReason := map[string]bool{}

		for _, v := range vehicles {
			route := solution.Routes[v.ID]
			baseCost := CostRoute(v, route.Stops, opts)

			for pos := 0; pos <= len(route.Stops); pos++ {
				candidate := insertAt(route.Stops, order, pos)
				metrics := Evaluate(v, candidate, opts)
				if !metrics.Feasible {
					reason := metrics.RejectionReason
					if reason == "" {
						reason = fmt.Sprintf("%s: no feasible position", v.ID)
					}
					if !seenReason[reason] {
						seenReason[reason] = true
						reasons = append(reasons, reason)
					}
					continue
				}
				newCost := costFromMetrics(v, metrics, opts)
				delta := newCost - baseCost
				if delta < bestDelta {
					bestDelta = delta
					bestVehicleID = v.ID
					bestPosition = pos
				}
			}
		}

		if bestPosition == -1 {
			solution.Unassigned = append(solution.Unassigned, UnassignedOrder{
				Order:           order,
				RejectionReason: aggregateReasons(reasons),
			})
			continue
		}

		route := solution.Routes[bestVehicleID]
		route.Stops = insertAt(route.Stops, order, bestPosition)
	}

	return solution
}

func insertAt(stops []Order, order Order, pos int) []Order {
	out := make([]Order, 0, len(stops)+1)
	out = append(out, stops[:pos]...)
	out = append(out, order)
	out = append(out, stops[pos:]...)
	return out
}

func aggregateReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "no feasible position in any vehicle"
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}
