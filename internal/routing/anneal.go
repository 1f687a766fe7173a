package routing

import (
	"context"
	"math"
)

type moveKind int

const (
	moveSwapInter moveKind = iota
	moveMoveInter
	moveSwapIntra
	moveInsertUnassigned
)

// Anneal runs the simulated-annealing metaheuristic starting from an
// initial (typically greedy) solution. It returns the best-seen feasible
// solution, deep-copied on every strict improvement. The loop observes
// ctx.Done() between iterations for cooperative cancellation; a cancelled
// run returns the best solution found so far along with ctx.Err().
//
// vehicles must be given in the same order used to build initial, since
// move selection indexes vehicles positionally to keep the random draw
// sequence reproducible for a given seed.
func Anneal(ctx context.Context, vehicles []Vehicle, initial *Solution, opts Options, sink ProgressSink) (*Solution, error) {
	if sink == nil {
		sink = NoopProgressSink{}
	}

	r := newRNG(opts.Seed)

	current := initial.Clone()
	currentCost := Cost(current, opts)
	best := current.Clone()
	bestCost := currentCost

	temperature := opts.InitialTemp

	var ctxErr error
	for i := 0; i < opts.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
		default:
		}
		if ctxErr != nil {
			break
		}

		candidate := current.Clone()
		applied := applyRandomMove(r, candidate, vehicles, opts)

		if applied {
			newCost := Cost(candidate, opts)
			if !math.IsInf(newCost, 1) {
				delta := newCost - currentCost
				if delta < 0 || r.Float64() < math.Exp(-delta/temperature) {
					current = candidate
					currentCost = newCost
					if currentCost < bestCost {
						best = current.Clone()
						bestCost = currentCost
					}
				}
			}
		}

		temperature *= opts.CoolingRate

		last := i == opts.MaxIterations-1
		if opts.ProgressInterval > 0 && (i%opts.ProgressInterval == 0 || last) {
			sink.Publish(ProgressEvent{
				Iteration:   i,
				Temperature: temperature,
				CurrentCost: currentCost,
				BestCost:    bestCost,
			})
		}
	}

	if ctxErr != nil {
		return best, ctxErr
	}
	return best, nil
}

// applyRandomMove picks a move kind and executes it against solution
// in-place. It returns false if the chosen move had nothing valid to act
// on (too few vehicles, empty routes, no unassigned orders) or produced an
// infeasible route, in which case the candidate must be discarded by the
// caller.
func applyRandomMove(r *rng, solution *Solution, vehicles []Vehicle, opts Options) bool {
	candidates := []moveKind{moveSwapInter, moveMoveInter, moveSwapIntra}
	if len(solution.Unassigned) > 0 {
		candidates = append(candidates, moveInsertUnassigned, moveInsertUnassigned)
	}
	kind := candidates[r.Intn(len(candidates))]

	switch kind {
	case moveInsertUnassigned:
		return applyInsertUnassigned(r, solution, vehicles, opts)
	case moveSwapInter:
		return applySwapInter(r, solution, vehicles, opts)
	case moveMoveInter:
		return applyMoveInter(r, solution, vehicles, opts)
	case moveSwapIntra:
		return applySwapIntra(r, solution, vehicles, opts)
	}
	return false
}

func applyInsertUnassigned(r *rng, solution *Solution, vehicles []Vehicle, opts Options) bool {
	if len(solution.Unassigned) == 0 || len(vehicles) == 0 {
		return false
	}
	orderIdx := r.Intn(len(solution.Unassigned))
	order := solution.Unassigned[orderIdx].Order
	vehicle := vehicles[r.Intn(len(vehicles))]
	route := solution.Routes[vehicle.ID]

	bestPos := -1
	bestCost := math.Inf(1)
	for pos := 0; pos <= len(route.Stops); pos++ {
		cand := insertAt(route.Stops, order, pos)
		c := CostRoute(vehicle, cand, opts)
		if !math.IsInf(c, 1) && c < bestCost {
			bestCost = c
			bestPos = pos
		}
	}
	if bestPos == -1 {
		return false
	}

	route.Stops = insertAt(route.Stops, order, bestPos)
	solution.Unassigned = append(solution.Unassigned[:orderIdx], solution.Unassigned[orderIdx+1:]...)
	return true
}

func nonEmptyRouteVehicleIDs(solution *Solution, vehicles []Vehicle) []string {
	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		if len(solution.Routes[v.ID].Stops) > 0 {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

func applySwapInter(r *rng, solution *Solution, vehicles []Vehicle, opts Options) bool {
	if len(vehicles) < 2 {
		return false
	}
	ids := nonEmptyRouteVehicleIDs(solution, vehicles)
	if len(ids) < 2 {
		return false
	}
	i := r.Intn(len(ids))
	j := r.Intn(len(ids))
	if i == j {
		j = (j + 1) % len(ids)
	}

	routeA := solution.Routes[ids[i]]
	routeB := solution.Routes[ids[j]]
	posA := r.Intn(len(routeA.Stops))
	posB := r.Intn(len(routeB.Stops))

	routeA.Stops[posA], routeB.Stops[posB] = routeB.Stops[posB], routeA.Stops[posA]

	if math.IsInf(CostRoute(routeA.Vehicle, routeA.Stops, opts), 1) ||
		math.IsInf(CostRoute(routeB.Vehicle, routeB.Stops, opts), 1) {
		return false
	}
	return true
}

func applyMoveInter(r *rng, solution *Solution, vehicles []Vehicle, opts Options) bool {
	if len(vehicles) < 2 {
		return false
	}
	ids := nonEmptyRouteVehicleIDs(solution, vehicles)
	if len(ids) == 0 {
		return false
	}
	srcID := ids[r.Intn(len(ids))]

	destIdx := r.Intn(len(vehicles))
	destID := vehicles[destIdx].ID
	if destID == srcID {
		destIdx = (destIdx + 1) % len(vehicles)
		destID = vehicles[destIdx].ID
	}

	src := solution.Routes[srcID]
	dest := solution.Routes[destID]

	orderPos := r.Intn(len(src.Stops))
	order := src.Stops[orderPos]
	remaining := append(append([]Order{}, src.Stops[:orderPos]...), src.Stops[orderPos+1:]...)

	insertPos := r.Intn(len(dest.Stops) + 1)
	newDest := insertAt(dest.Stops, order, insertPos)

	if math.IsInf(CostRoute(src.Vehicle, remaining, opts), 1) ||
		math.IsInf(CostRoute(dest.Vehicle, newDest, opts), 1) {
		return false
	}

	src.Stops = remaining
	dest.Stops = newDest
	return true
}

func applySwapIntra(r *rng, solution *Solution, vehicles []Vehicle, opts Options) bool {
	candidates := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		if len(solution.Routes[v.ID].Stops) >= 2 {
			candidates = append(candidates, v.ID)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	id := candidates[r.Intn(len(candidates))]
	route := solution.Routes[id]

	i := r.Intn(len(route.Stops))
	j := r.Intn(len(route.Stops))
	if i == j {
		j = (j + 1) % len(route.Stops)
	}
	route.Stops[i], route.Stops[j] = route.Stops[j], route.Stops[i]

	return !math.IsInf(CostRoute(route.Vehicle, route.Stops, opts), 1)
}
