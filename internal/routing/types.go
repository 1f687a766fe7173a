// Package routing implements the CVRPTW optimization engine: a route
// evaluator, a cost function, a greedy constructor, and a simulated
// annealing optimizer that together turn a fleet of vehicles and a set of
// delivery orders into a routing solution.
package routing

import "github.com/rakasetyo/cvrptw-planner/internal/geo"

// Vehicle is a fleet unit available to serve orders. Vehicles are loaded
// once per problem instance and are read-only for the duration of a solve.
type Vehicle struct {
	ID         string
	CapacityKg float64
	Origin     geo.Point
}

// Order is a delivery request. Orders are read-only after load.
type Order struct {
	ID             string
	Destination    geo.Point
	WeightKg       float64
	WindowOpenMin  int
	WindowCloseMin int
	Priority       int
}

// Route is an ordered sequence of orders assigned to one vehicle. The slice
// order defines visit order.
type Route struct {
	Vehicle Vehicle
	Stops   []Order
}

// TotalWeightKg sums the weight of every order on the route.
func (r Route) TotalWeightKg() float64 {
	var total float64
	for _, o := range r.Stops {
		total += o.WeightKg
	}
	return total
}

// Clone returns a deep copy of the route's stop sequence. The vehicle value
// is copied by value since Vehicle holds no reference types.
func (r Route) Clone() Route {
	stops := make([]Order, len(r.Stops))
	copy(stops, r.Stops)
	return Route{Vehicle: r.Vehicle, Stops: stops}
}

// UnassignedOrder pairs an order that could not be placed with the reason
// it was rejected.
type UnassignedOrder struct {
	Order           Order
	RejectionReason string
}

// Solution is a complete assignment of orders to vehicle routes, plus the
// orders that could not be placed. Invariant: the multiset-union of every
// route's stops and every unassigned order equals the input order set.
type Solution struct {
	Routes     map[string]*Route
	Unassigned []UnassignedOrder
}

// NewSolution builds an empty solution with one empty route per vehicle.
func NewSolution(vehicles []Vehicle) *Solution {
	routes := make(map[string]*Route, len(vehicles))
	for _, v := range vehicles {
		routes[v.ID] = &Route{Vehicle: v}
	}
	return &Solution{Routes: routes}
}

// Clone returns a deep copy of the solution: every route is deep-copied and
// the unassigned slice is copied. Vehicles and orders remain shared
// immutable references.
func (s *Solution) Clone() *Solution {
	routes := make(map[string]*Route, len(s.Routes))
	for id, r := range s.Routes {
		cloned := r.Clone()
		routes[id] = &cloned
	}
	unassigned := make([]UnassignedOrder, len(s.Unassigned))
	copy(unassigned, s.Unassigned)
	return &Solution{Routes: routes, Unassigned: unassigned}
}

// RouteMetrics is the derived, non-persistent result of simulating a route
// in time and space.
type RouteMetrics struct {
	DistanceKm      float64
	WaitMinutes     float64
	LoadKg          float64
	OvertimeHours   float64
	LatenessCount   int
	Feasible        bool
	RejectionReason string
}

// ProgressEvent is emitted periodically by the simulated-annealing loop to
// an optional ProgressSink. Consuming it has no effect on the optimization
// trajectory.
type ProgressEvent struct {
	Iteration   int
	Temperature float64
	CurrentCost float64
	BestCost    float64
}

// ProgressSink decouples the optimizer from transport concerns. The HTTP
// and job layers supply an implementation backed by the WebSocket hub; the
// core package has no network dependency of its own.
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// NoopProgressSink discards every event. It is the default sink used when
// no caller-supplied sink is given to Solve.
type NoopProgressSink struct{}

// Publish implements ProgressSink by doing nothing.
func (NoopProgressSink) Publish(ProgressEvent) {}
