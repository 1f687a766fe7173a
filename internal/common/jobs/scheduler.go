package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ScheduledJob is a recurring job definition. Schedule accepts the same
// coarse cron-like aliases used throughout the reference backend:
// "@hourly", "@daily", "@weekly", "@monthly".
type ScheduledJob struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	JobType  string                 `json:"job_type"`
	Data     map[string]interface{} `json:"data"`
	Schedule string                 `json:"schedule"`
	Priority JobPriority            `json:"priority"`
	IsActive bool                   `json:"is_active"`
	LastRun  *time.Time             `json:"last_run,omitempty"`
	NextRun  time.Time              `json:"next_run"`
}

func scheduleInterval(schedule string) (time.Duration, error) {
	switch schedule {
	case "@hourly":
		return time.Hour, nil
	case "@daily":
		return 24 * time.Hour, nil
	case "@weekly":
		return 7 * 24 * time.Hour, nil
	case "@monthly":
		return 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("jobs: unsupported schedule alias %q", schedule)
	}
}

// JobScheduler polls a set of ScheduledJob definitions and enqueues due
// jobs onto the queue. It is a coarse, in-process ticker rather than a true
// cron implementation, adequate for the handful of maintenance jobs this
// service runs.
type JobScheduler struct {
	redis *redis.Client
	queue *JobQueue

	mu   sync.Mutex
	jobs map[string]*ScheduledJob

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	pollPeriod time.Duration
}

// NewJobScheduler creates a scheduler that enqueues onto queue.
func NewJobScheduler(redisClient *redis.Client, queue *JobQueue) *JobScheduler {
	return &JobScheduler{
		redis:      redisClient,
		queue:      queue,
		jobs:       make(map[string]*ScheduledJob),
		pollPeriod: time.Minute,
	}
}

// AddScheduledJob registers or updates a scheduled job definition.
func (s *JobScheduler) AddScheduledJob(job *ScheduledJob) error {
	interval, err := scheduleInterval(job.Schedule)
	if err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.NextRun.IsZero() {
		job.NextRun = time.Now().Add(interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// RemoveScheduledJob deletes a scheduled job definition.
func (s *JobScheduler) RemoveScheduledJob(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[jobID]; !exists {
		return fmt.Errorf("jobs: scheduled job not found: %s", jobID)
	}
	delete(s.jobs, jobID)
	return nil
}

// GetScheduledJobs returns every registered scheduled job.
func (s *JobScheduler) GetScheduledJobs() []*ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]*ScheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	return jobs
}

// Start begins polling for due scheduled jobs.
func (s *JobScheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wg.Add(1)
	go s.loop()
}

// Stop halts the scheduler's polling loop.
func (s *JobScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *JobScheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runDue()
		}
	}
}

func (s *JobScheduler) runDue() {
	now := time.Now()

	s.mu.Lock()
	due := make([]*ScheduledJob, 0)
	for _, j := range s.jobs {
		if j.IsActive && !j.NextRun.After(now) {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		job := &Job{
			Type:       j.JobType,
			Data:       j.Data,
			Priority:   j.Priority,
			MaxRetries: 2,
		}
		_ = s.queue.Enqueue(s.ctx, job)

		interval, err := scheduleInterval(j.Schedule)
		if err != nil {
			continue
		}

		s.mu.Lock()
		j.LastRun = &now
		j.NextRun = now.Add(interval)
		s.mu.Unlock()
	}
}
