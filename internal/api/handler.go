package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakasetyo/cvrptw-planner/internal/common/cache"
	"github.com/rakasetyo/cvrptw-planner/internal/common/jobs"
	"github.com/rakasetyo/cvrptw-planner/internal/common/middleware"
	"github.com/rakasetyo/cvrptw-planner/internal/common/repository"
	"github.com/rakasetyo/cvrptw-planner/internal/routing"
	"github.com/rakasetyo/cvrptw-planner/pkg/models"
)

// SolveHandler serves the solve submission, lookup, and listing endpoints.
// A request either runs inline (the default) or is handed to the job
// manager for asynchronous execution when the caller sets "async": true.
type SolveHandler struct {
	repo       repository.SolveRunRepository
	cache      *cache.RedisCache
	jobManager *jobs.Manager
}

// NewSolveHandler builds a SolveHandler over its collaborators.
func NewSolveHandler(repo repository.SolveRunRepository, redisCache *cache.RedisCache, jobManager *jobs.Manager) *SolveHandler {
	return &SolveHandler{repo: repo, cache: redisCache, jobManager: jobManager}
}

// CreateSolve handles POST /api/v1/solves. It validates the request, looks
// up an existing run (finished, failed or in flight) with the same input
// fingerprint in the database, and otherwise either runs the solve inline or
// enqueues it for a worker.
func (h *SolveHandler) CreateSolve(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if errs := validateRequest(req); errs.HasErrors() {
		middleware.AbortWithValidation(c, errs.Error())
		return
	}

	vehicles := toRoutingVehicles(req.Vehicles)
	orders, err := toRoutingOrders(req.Orders)
	if err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}

	opts, err := buildOptions(req.Parameters, req.Seed)
	if err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}

	fp, parameters := fingerprint(vehicles, orders, opts)
	ctx := c.Request.Context()

	if existing, err := h.repo.GetByFingerprint(ctx, fp); err == nil && existing != nil {
		c.JSON(http.StatusOK, toSolveRunDetail(existing))
		return
	}

	run := models.NewSolveRun(req.Scenario, opts.Seed, fp, parameters, len(vehicles), len(orders), time.Now())
	if err := h.repo.Create(ctx, run); err != nil {
		middleware.AbortWithInternal(c, "failed to persist solve run", err)
		return
	}

	if req.Async {
		if h.jobManager == nil {
			middleware.AbortWithInternal(c, "async solving is not available", nil)
			return
		}
		if _, err := h.jobManager.EnqueueSolve(ctx, run.ID, vehicles, orders, opts, jobs.JobPriorityNormal); err != nil {
			_ = h.repo.MarkFailed(ctx, run.ID, err.Error(), time.Now())
			middleware.AbortWithInternal(c, "failed to enqueue solve", err)
			return
		}
		c.JSON(http.StatusAccepted, SolveAcceptedResponse{ID: run.ID, Status: models.SolveStatusQueued})
		return
	}

	if err := h.repo.MarkRunning(ctx, run.ID, time.Now()); err != nil {
		middleware.AbortWithInternal(c, "failed to mark solve run running", err)
		return
	}

	solution, err := routing.Solve(ctx, vehicles, orders, opts, routing.NoopProgressSink{})
	if err != nil {
		_ = h.repo.MarkFailed(ctx, run.ID, err.Error(), time.Now())
		middleware.AbortWithInternal(c, "solve failed", err)
		return
	}

	result, metrics := jobs.EncodeSolution(vehicles, solution, opts)
	if err := h.repo.MarkSucceeded(ctx, run.ID, result, metrics, time.Now()); err != nil {
		middleware.AbortWithInternal(c, "failed to persist solve result", err)
		return
	}

	run, err = h.repo.GetByID(ctx, run.ID)
	if err != nil {
		middleware.AbortWithInternal(c, "failed to reload solve run", err)
		return
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, h.cache.SolveResultKey(run.InputFingerprint), run, cache.SolveResultExpiration)
	}

	c.JSON(http.StatusOK, toSolveRunDetail(run))
}

// GetSolve handles GET /api/v1/solves/:id.
func (h *SolveHandler) GetSolve(c *gin.Context) {
	id := c.Param("id")

	run, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			middleware.AbortWithNotFound(c, "solve run")
			return
		}
		middleware.AbortWithInternal(c, "failed to load solve run", err)
		return
	}

	c.JSON(http.StatusOK, toSolveRunDetail(run))
}

// ListSolves handles GET /api/v1/solves, a paginated summary listing. No
// sort order is applied; rows come back in the order the database returns.
func (h *SolveHandler) ListSolves(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	pagination := repository.Pagination{Page: page, PageSize: pageSize}
	runs, err := h.repo.List(c.Request.Context(), repository.FilterOptions{}, pagination)
	if err != nil {
		middleware.AbortWithInternal(c, "failed to list solve runs", err)
		return
	}

	summaries := make([]SolveRunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, toSolveRunSummary(run))
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries, "page": page, "page_size": pageSize})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func toSolveRunSummary(run *models.SolveRun) SolveRunSummary {
	return SolveRunSummary{
		ID:              run.ID,
		Scenario:        run.Scenario,
		Status:          run.Status,
		VehicleCount:    run.VehicleCount,
		OrderCount:      run.OrderCount,
		AssignedCount:   run.AssignedCount,
		UnassignedCount: run.UnassignedCount,
		TotalDistanceKm: run.TotalDistanceKm,
		TotalTimeHours:  run.TotalTimeHours,
		RequestedAt:     run.RequestedAt.Format(time.RFC3339),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toSolveRunDetail(run *models.SolveRun) SolveRunDetail {
	detail := SolveRunDetail{
		ID:           run.ID,
		Scenario:     run.Scenario,
		Status:       run.Status,
		ErrorMessage: run.ErrorMessage,
	}
	if run.Status == models.SolveStatusSucceeded && run.Result != nil {
		detail.Vehicles = run.Result["vehicles"]
		detail.UnassignedOrders = run.Result["unassigned_orders"]
		detail.GeneralMetrics = gin.H{
			"total_orders":      run.OrderCount,
			"assigned_orders":   run.AssignedCount,
			"unassigned_orders": run.UnassignedCount,
			"total_distance_km": round2(run.TotalDistanceKm),
			"total_time_hours":  round2(run.TotalTimeHours),
			"total_cost":        run.Result["total_cost"],
		}
	}
	return detail
}
