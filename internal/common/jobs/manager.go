package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rakasetyo/cvrptw-planner/internal/common/cache"
	"github.com/rakasetyo/cvrptw-planner/internal/common/realtime"
	"github.com/rakasetyo/cvrptw-planner/internal/common/repository"
	"github.com/rakasetyo/cvrptw-planner/internal/routing"
)

// Manager coordinates job queue, workers, and scheduler
type Manager struct {
	repo         repository.SolveRunRepository
	redisCache   *cache.RedisCache
	hub          *realtime.WebSocketHub
	redis        *redis.Client
	queue        *JobQueue
	worker       *Worker
	scheduler    *JobScheduler
	handlers     []JobHandler
	metrics      *JobMetrics
	deduplicator *JobDeduplicator
	priorityAdjuster *JobPriorityAdjuster
	purger       *JobPurger
}

// ManagerConfig holds manager configuration
type ManagerConfig struct {
	QueueName        string
	WorkerConcurrency int
	PollInterval     time.Duration
	JobTimeout       time.Duration
}

// DefaultManagerConfig returns default manager configuration
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		QueueName:         "cvrptw:jobs",
		WorkerConcurrency: 5,
		PollInterval:      1 * time.Second,
		JobTimeout:        5 * time.Minute,
	}
}

// NewManager creates a new job manager. repo, redisCache, and hub are
// wired into the solve job handler; hub may be nil to run without
// WebSocket progress broadcasting.
func NewManager(repo repository.SolveRunRepository, redisCache *cache.RedisCache, hub *realtime.WebSocketHub, redisClient *redis.Client, config *ManagerConfig) *Manager {
	if config == nil {
		config = DefaultManagerConfig()
	}

	// Create job queue
	queue := NewJobQueue(redisClient, config.QueueName)

	// Create worker
	workerConfig := &WorkerConfig{
		Concurrency:     config.WorkerConcurrency,
		PollInterval:    config.PollInterval,
		JobTimeout:      config.JobTimeout,
		ShutdownTimeout: 30 * time.Second,
	}
	worker := NewWorker(queue, workerConfig)

	// Create scheduler
	scheduler := NewJobScheduler(redisClient, queue)

	// Create metrics tracker
	metrics := NewJobMetrics(redisClient)

	// Create deduplicator (15 minute TTL for deduplication)
	deduplicator := NewJobDeduplicator(redisClient, config.QueueName, 15*time.Minute)

	// Create priority adjuster
	priorityAdjuster := NewJobPriorityAdjuster(redisClient, queue)

	// Create purger
	purger := NewJobPurger(redisClient, queue)

	return &Manager{
		repo:             repo,
		redisCache:       redisCache,
		hub:              hub,
		redis:            redisClient,
		queue:            queue,
		worker:           worker,
		scheduler:        scheduler,
		handlers:         []JobHandler{},
		metrics:          metrics,
		deduplicator:     deduplicator,
		priorityAdjuster: priorityAdjuster,
		purger:           purger,
	}
}

// RegisterHandler registers a job handler
func (m *Manager) RegisterHandler(handler JobHandler) {
	m.handlers = append(m.handlers, handler)
	m.worker.RegisterHandler(handler)
	m.queue.RegisterHandler(handler)
}

// RegisterAllHandlers registers all built-in job handlers
func (m *Manager) RegisterAllHandlers() {
	log.Println("registering job handlers...")

	solveHandler := NewSolveJobHandler(m.repo, m.redisCache, m.hub)
	m.RegisterHandler(solveHandler)
	log.Printf("registered handler: %s", solveHandler.GetJobType())

	cleanupHandler := NewSolveRunCleanupJob(m.repo)
	m.RegisterHandler(cleanupHandler)
	log.Printf("registered handler: %s", cleanupHandler.GetJobType())

	log.Printf("registered %d job handlers", len(m.handlers))
}

// SetupScheduledJobs sets up recurring scheduled jobs
func (m *Manager) SetupScheduledJobs() error {
	log.Println("setting up scheduled jobs...")

	err := m.scheduler.AddScheduledJob(&ScheduledJob{
		Name:     "Weekly Solve Run Cleanup",
		JobType:  SolveRunCleanupJobType,
		Schedule: "@weekly",
		Data: map[string]interface{}{
			"retention_days": float64(30),
		},
		Priority: JobPriorityLow,
		IsActive: true,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule solve run cleanup: %w", err)
	}

	log.Println("scheduled jobs configured successfully")
	return nil
}

// Start starts the job manager (worker and scheduler)
func (m *Manager) Start() error {
	log.Println("Starting job manager...")

	// Register all handlers
	m.RegisterAllHandlers()

	// Setup scheduled jobs
	if err := m.SetupScheduledJobs(); err != nil {
		return fmt.Errorf("failed to setup scheduled jobs: %w", err)
	}

	// Start worker
	m.worker.Start()

	// Start scheduler
	m.scheduler.Start()

	log.Println("Job manager started successfully")
	return nil
}

// Stop stops the job manager gracefully
func (m *Manager) Stop() {
	log.Println("Stopping job manager...")

	// Stop scheduler
	m.scheduler.Stop()

	// Stop worker
	m.worker.Stop()

	log.Println("Job manager stopped")
}

// EnqueueJob enqueues a new job with deduplication check
func (m *Manager) EnqueueJob(ctx context.Context, job *Job) error {
	// Check for duplicates
	isDuplicate, err := m.deduplicator.IsDuplicate(ctx, job)
	if err != nil {
		log.Printf("Warning: deduplication check failed: %v", err)
	} else if isDuplicate {
		return fmt.Errorf("duplicate job detected: job with same fingerprint already exists")
	}

	// Enqueue the job
	if err := m.queue.Enqueue(ctx, job); err != nil {
		return err
	}

	// Mark as processed for deduplication
	if err := m.deduplicator.MarkAsProcessed(ctx, job); err != nil {
		log.Printf("Warning: failed to mark job as processed: %v", err)
	}

	// Record metrics
	m.metrics.RecordJobEnqueued(job.Type)

	return nil
}

// GetJobStatus returns the status of a job
func (m *Manager) GetJobStatus(ctx context.Context, jobID string) (*Job, error) {
	return m.queue.GetJob(ctx, jobID)
}

// GetJobsByStatus returns jobs by status  
func (m *Manager) GetJobsByStatus(ctx context.Context, status JobStatus, limit int) ([]*Job, error) {
	return m.queue.GetJobsByStatus(ctx, status, int64(limit))
}

// CancelJob cancels a pending job
func (m *Manager) CancelJob(ctx context.Context, jobID string) error {
	return m.queue.Cancel(ctx, jobID)
}

// RetryJob retries a failed job
func (m *Manager) RetryJob(ctx context.Context, jobID string) error {
	job, err := m.queue.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	job.RetryCount = 0
	job.Status = JobStatusPending
	return m.queue.Enqueue(ctx, job)
}

// GetWorkerMetrics returns worker metrics
func (m *Manager) GetWorkerMetrics() *WorkerMetrics {
	return m.worker.GetMetrics()
}

// GetQueueStats returns queue statistics
func (m *Manager) GetQueueStats(ctx context.Context) (map[string]interface{}, error) {
	return m.queue.GetQueueStats(ctx)
}

// PurgeCompletedJobs removes completed jobs older than the specified duration
func (m *Manager) PurgeCompletedJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	return m.purger.PurgeCompletedJobs(ctx, olderThan)
}

// PurgeFailedJobs removes failed jobs older than the specified duration
func (m *Manager) PurgeFailedJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	return m.purger.PurgeFailedJobs(ctx, olderThan)
}

// GetScheduledJobs returns all scheduled jobs
func (m *Manager) GetScheduledJobs() []*ScheduledJob {
	return m.scheduler.GetScheduledJobs()
}

// UpdateScheduledJob updates a scheduled job
func (m *Manager) UpdateScheduledJob(job *ScheduledJob) error {
	return m.scheduler.AddScheduledJob(job)
}

// DeleteScheduledJob deletes a scheduled job
func (m *Manager) DeleteScheduledJob(jobID string) error {
	return m.scheduler.RemoveScheduledJob(jobID)
}

// EnqueueSolve enqueues an asynchronous CVRPTW solve for solveRunID over
// the given vehicles and orders. vehicles and orders are encoded as plain
// maps so they survive the Redis round-trip without the jobs package
// importing the HTTP request DTOs.
func (m *Manager) EnqueueSolve(ctx context.Context, solveRunID string, vehicles []routing.Vehicle, orders []routing.Order, opts routing.Options, priority JobPriority) (*Job, error) {
	vehicleData := make([]interface{}, 0, len(vehicles))
	for _, v := range vehicles {
		vehicleData = append(vehicleData, map[string]interface{}{
			"id":          v.ID,
			"capacity_kg": v.CapacityKg,
			"origin_lat":  v.Origin.Latitude,
			"origin_lon":  v.Origin.Longitude,
		})
	}

	orderData := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		orderData = append(orderData, map[string]interface{}{
			"id":              o.ID,
			"dest_lat":        o.Destination.Latitude,
			"dest_lon":        o.Destination.Longitude,
			"weight_kg":       o.WeightKg,
			"window_open_min": o.WindowOpenMin,
			"window_close_min": o.WindowCloseMin,
			"priority":        o.Priority,
		})
	}

	job := &Job{
		Type:       SolveJobType,
		Priority:   priority,
		MaxRetries: 1,
		Data: map[string]interface{}{
			"solve_run_id": solveRunID,
			"vehicles":     vehicleData,
			"orders":       orderData,
			"seed":         opts.Seed,
		},
	}

	if err := m.EnqueueJob(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// GetMetrics returns comprehensive job metrics
func (m *Manager) GetMetrics() *JobMetricsStats {
	return m.metrics.GetStats()
}

// GetJobTypeMetrics returns metrics per job type
func (m *Manager) GetJobTypeMetrics() map[string]*JobTypeMetrics {
	return m.metrics.GetJobTypeMetrics()
}

// GetExecutionHistory returns recent job execution history
func (m *Manager) GetExecutionHistory(limit int) []*JobExecution {
	return m.metrics.GetExecutionHistory(limit)
}

// GetExecutionHistoryFromRedis retrieves execution history from Redis
func (m *Manager) GetExecutionHistoryFromRedis(ctx context.Context, limit int, offset int) ([]*JobExecution, error) {
	return m.metrics.GetExecutionHistoryFromRedis(ctx, limit, offset)
}

// GetFailedJobsHistory returns recent failed jobs
func (m *Manager) GetFailedJobsHistory(limit int) []*JobExecution {
	return m.metrics.GetFailedJobs(limit)
}

// GetFailureAlerts returns jobs that need attention
func (m *Manager) GetFailureAlerts(ctx context.Context) []*JobAlert {
	return m.metrics.GetFailureAlerts(ctx)
}

// ExportPrometheusMetrics exports job metrics in Prometheus format
func (m *Manager) ExportPrometheusMetrics() string {
	return m.metrics.ExportPrometheusMetrics()
}

// AdjustJobPriorities adjusts priorities for pending jobs
func (m *Manager) AdjustJobPriorities(ctx context.Context) (int, error) {
	return m.priorityAdjuster.AdjustAllPriorities(ctx)
}

// GetPurgeStats returns statistics about purgeable jobs
func (m *Manager) GetPurgeStats(ctx context.Context, olderThan time.Duration) (map[string]interface{}, error) {
	return m.purger.GetPurgeStats(ctx, olderThan)
}

// CheckDuplicate checks if a job is a duplicate
func (m *Manager) CheckDuplicate(ctx context.Context, job *Job) (bool, error) {
	return m.deduplicator.IsDuplicate(ctx, job)
}

