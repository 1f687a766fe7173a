package routing

import (
	"context"
	"fmt"
)

// Solve wraps the evaluator, cost function, greedy constructor, and
// simulated-annealing optimizer behind a single entry point: it builds a
// feasible starting solution and improves on it, returning the best
// solution found within opts.MaxIterations.
//
// Solve returns a Go error only for programming errors detectable cheaply
// at the boundary — non-positive capacity, non-positive order weight,
// negative iteration count, duplicate vehicle or order IDs. Domain conditions such as an
// unassignable order are never errors; they are data in the returned
// Solution's Unassigned list.
func Solve(ctx context.Context, vehicles []Vehicle, orders []Order, opts Options, sink ProgressSink) (*Solution, error) {
	if err := validateInput(vehicles, orders, opts); err != nil {
		return nil, err
	}

	greedy := Greedy(vehicles, orders, opts)

	best, err := Anneal(ctx, vehicles, greedy, opts, sink)
	if err != nil {
		return best, err
	}
	return best, nil
}

func validateInput(vehicles []Vehicle, orders []Order, opts Options) error {
	if opts.MaxIterations < 0 {
		return fmt.Errorf("routing: max iterations must be non-negative, got %d", opts.MaxIterations)
	}

	seenVehicle := make(map[string]bool, len(vehicles))
	for _, v := range vehicles {
		if v.CapacityKg <= 0 {
			return fmt.Errorf("routing: vehicle %q has non-positive capacity %.2f", v.ID, v.CapacityKg)
		}
		if seenVehicle[v.ID] {
			return fmt.Errorf("routing: duplicate vehicle id %q", v.ID)
		}
		seenVehicle[v.ID] = true
	}

	seenOrder := make(map[string]bool, len(orders))
	for _, o := range orders {
		if o.WeightKg <= 0 {
			return fmt.Errorf("routing: order %q has non-positive weight %.2f", o.ID, o.WeightKg)
		}
		if seenOrder[o.ID] {
			return fmt.Errorf("routing: duplicate order id %q", o.ID)
		}
		seenOrder[o.ID] = true
	}

	return nil
}
