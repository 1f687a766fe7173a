package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rakasetyo/cvrptw-planner/internal/common/cache"
	"github.com/rakasetyo/cvrptw-planner/internal/common/realtime"
	"github.com/rakasetyo/cvrptw-planner/internal/common/repository"
	"github.com/rakasetyo/cvrptw-planner/internal/geo"
	"github.com/rakasetyo/cvrptw-planner/internal/routing"
	"github.com/rakasetyo/cvrptw-planner/pkg/models"
)

// SolveJobType is the job type name for an asynchronous CVRPTW solve.
const SolveJobType = "solve_cvrptw"

// SolveRunCleanupJobType purges solve run rows past their retention window.
const SolveRunCleanupJobType = "solve_run_cleanup"

// SolveJobHandler runs a queued solve, persists its result, and streams
// progress to any WebSocket clients watching the run.
type SolveJobHandler struct {
	repo  repository.SolveRunRepository
	cache *cache.RedisCache
	hub   *realtime.WebSocketHub
}

// NewSolveJobHandler builds the handler for the solve_cvrptw job type.
func NewSolveJobHandler(repo repository.SolveRunRepository, redisCache *cache.RedisCache, hub *realtime.WebSocketHub) *SolveJobHandler {
	return &SolveJobHandler{repo: repo, cache: redisCache, hub: hub}
}

// GetJobType returns the job type.
func (h *SolveJobHandler) GetJobType() string {
	return SolveJobType
}

// Handle executes one CVRPTW solve described by job.Data and writes the
// result back to the SolveRun row with the matching ID.
func (h *SolveJobHandler) Handle(ctx context.Context, job *Job) error {
	solveRunID, ok := job.Data["solve_run_id"].(string)
	if !ok || solveRunID == "" {
		return fmt.Errorf("missing 'solve_run_id' field in job data")
	}

	vehicles, orders, opts, err := decodeSolveInput(job.Data)
	if err != nil {
		return fmt.Errorf("failed to decode solve input: %w", err)
	}

	if err := h.repo.MarkRunning(ctx, solveRunID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark solve run running: %w", err)
	}

	var sink routing.ProgressSink = routing.NoopProgressSink{}
	if h.hub != nil {
		sink = realtime.NewProgressSink(h.hub, solveRunID)
	}

	solution, err := routing.Solve(ctx, vehicles, orders, opts, sink)
	if err != nil {
		_ = h.repo.MarkFailed(ctx, solveRunID, err.Error(), time.Now())
		return fmt.Errorf("solve failed: %w", err)
	}

	result, metrics := EncodeSolution(vehicles, solution, opts)
	if err := h.repo.MarkSucceeded(ctx, solveRunID, result, metrics, time.Now()); err != nil {
		return fmt.Errorf("failed to mark solve run succeeded: %w", err)
	}

	if h.cache != nil {
		run, err := h.repo.GetByID(ctx, solveRunID)
		if err == nil {
			_ = h.cache.Set(ctx, h.cache.SolveResultKey(run.InputFingerprint), run, cache.SolveResultExpiration)
		}
	}

	return nil
}

// decodeSolveInput reconstructs the routing engine's input types from the
// plain-map job data that crossed the Redis queue.
func decodeSolveInput(data map[string]interface{}) ([]routing.Vehicle, []routing.Order, routing.Options, error) {
	opts := routing.DefaultOptions()

	rawVehicles, ok := data["vehicles"].([]interface{})
	if !ok {
		return nil, nil, opts, fmt.Errorf("missing 'vehicles' field")
	}
	rawOrders, ok := data["orders"].([]interface{})
	if !ok {
		return nil, nil, opts, fmt.Errorf("missing 'orders' field")
	}

	if seed, ok := data["seed"].(float64); ok {
		opts.Seed = int64(seed)
	}

	vehicles := make([]routing.Vehicle, 0, len(rawVehicles))
	for _, rv := range rawVehicles {
		m, ok := rv.(map[string]interface{})
		if !ok {
			return nil, nil, opts, fmt.Errorf("invalid vehicle entry")
		}
		vehicles = append(vehicles, routing.Vehicle{
			ID:         stringField(m, "id"),
			CapacityKg: floatField(m, "capacity_kg"),
			Origin: geo.Point{
				Latitude:  floatField(m, "origin_lat"),
				Longitude: floatField(m, "origin_lon"),
			},
		})
	}

	orders := make([]routing.Order, 0, len(rawOrders))
	for _, ro := range rawOrders {
		m, ok := ro.(map[string]interface{})
		if !ok {
			return nil, nil, opts, fmt.Errorf("invalid order entry")
		}
		orders = append(orders, routing.Order{
			ID: stringField(m, "id"),
			Destination: geo.Point{
				Latitude:  floatField(m, "dest_lat"),
				Longitude: floatField(m, "dest_lon"),
			},
			WeightKg:       floatField(m, "weight_kg"),
			WindowOpenMin:  intField(m, "window_open_min"),
			WindowCloseMin: intField(m, "window_close_min"),
			Priority:       intField(m, "priority"),
		})
	}

	return vehicles, orders, opts, nil
}

func stringField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func floatField(m map[string]interface{}, key string) float64 {
	v, _ := m[key].(float64)
	return v
}

func intField(m map[string]interface{}, key string) int {
	v, _ := m[key].(float64)
	return int(v)
}

// EncodeSolution renders the solver's output into the result contract's
// "vehicles"/"unassigned_orders" shape and the summary metrics a SolveRun row
// stores. Vehicles with no stops are omitted, matching the output contract.
func EncodeSolution(vehicles []routing.Vehicle, solution *routing.Solution, opts routing.Options) (models.JSON, repository.SolveRunMetrics) {
	vehicleOut := make([]map[string]interface{}, 0, len(vehicles))
	var totalDistance, totalHours float64
	assigned := 0

	for _, v := range vehicles {
		route := solution.Routes[v.ID]
		if len(route.Stops) == 0 {
			continue
		}

		metrics := routing.Evaluate(v, route.Stops, opts)
		timings := routing.SimulateTimings(v, route.Stops, opts)

		stops := make([]map[string]interface{}, 0, len(timings))
		orderIDs := make([]string, 0, len(timings))
		var routeHours float64
		for i, st := range timings {
			stops = append(stops, map[string]interface{}{
				"order_id":                st.Order.ID,
				"latitude":                st.Order.Destination.Latitude,
				"longitude":               st.Order.Destination.Longitude,
				"sequence":                i + 1,
				"estimated_delivery_time": st.EstimatedDeliveryTime,
			})
			orderIDs = append(orderIDs, st.Order.ID)
			routeHours = (st.ArrivalMinute + opts.ServiceMinutes - float64(opts.StartMinute)) / 60.0
		}

		vehicleOut = append(vehicleOut, map[string]interface{}{
			"id": v.ID,
			"origin": map[string]interface{}{
				"latitude":  v.Origin.Latitude,
				"longitude": v.Origin.Longitude,
			},
			"assigned_order_ids": orderIDs,
			"stops":              stops,
			"used_capacity_kg":   metrics.LoadKg,
			"max_capacity_kg":    v.CapacityKg,
			"route_distance_km":  metrics.DistanceKm,
			"route_time_hours":   routeHours,
		})

		totalDistance += metrics.DistanceKm
		totalHours += routeHours
		assigned += len(route.Stops)
	}

	unassignedOut := make([]map[string]interface{}, 0, len(solution.Unassigned))
	for _, u := range solution.Unassigned {
		unassignedOut = append(unassignedOut, map[string]interface{}{
			"id":               u.Order.ID,
			"rejection_reason": u.RejectionReason,
		})
	}

	result := models.JSON{
		"vehicles":          vehicleOut,
		"unassigned_orders": unassignedOut,
		"total_cost":        routing.Cost(solution, opts),
	}

	return result, repository.SolveRunMetrics{
		AssignedCount:   assigned,
		UnassignedCount: len(solution.Unassigned),
		TotalDistanceKm: totalDistance,
		TotalTimeHours:  totalHours,
	}
}

// SolveRunCleanupJob purges solve run rows older than its configured
// retention window, keeping the table from growing unbounded.
type SolveRunCleanupJob struct {
	repo repository.SolveRunRepository
}

// NewSolveRunCleanupJob creates a cleanup job handler over repo.
func NewSolveRunCleanupJob(repo repository.SolveRunRepository) *SolveRunCleanupJob {
	return &SolveRunCleanupJob{repo: repo}
}

// GetJobType returns the job type.
func (j *SolveRunCleanupJob) GetJobType() string {
	return SolveRunCleanupJobType
}

// Handle deletes solve runs requested before the retention cutoff.
func (j *SolveRunCleanupJob) Handle(ctx context.Context, job *Job) error {
	retentionDays := 30
	if v, ok := job.Data["retention_days"].(float64); ok {
		retentionDays = int(v)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	purged, err := j.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge solve runs: %w", err)
	}

	job.Result = map[string]interface{}{"purged": purged}
	return nil
}
