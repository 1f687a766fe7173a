package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

// JobDeduplicator prevents the same logical job from being enqueued twice
// within a short window, keyed by job type and a canonical encoding of its
// data (e.g. a solve's input fingerprint).
type JobDeduplicator struct {
	redis     *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewJobDeduplicator builds a deduplicator scoped to queueName with the
// given dedup window.
func NewJobDeduplicator(redisClient *redis.Client, queueName string, ttl time.Duration) *JobDeduplicator {
	return &JobDeduplicator{
		redis:     redisClient,
		keyPrefix: fmt.Sprintf("%s:dedup", queueName),
		ttl:       ttl,
	}
}

func (d *JobDeduplicator) fingerprint(job *Job) string {
	canonical, _ := canonicalJobData(job.Data)
	sum := sha256.Sum256([]byte(job.Type + "|" + canonical))
	return hex.EncodeToString(sum[:])
}

func canonicalJobData(data map[string]interface{}) (string, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make(map[string]interface{}, len(data))
	for _, k := range keys {
		ordered[k] = data[k]
	}
	b, err := json.Marshal(ordered)
	return string(b), err
}

// IsDuplicate reports whether an equivalent job was already marked as
// processed within the dedup window.
func (d *JobDeduplicator) IsDuplicate(ctx context.Context, job *Job) (bool, error) {
	key := fmt.Sprintf("%s:%s", d.keyPrefix, d.fingerprint(job))
	exists, err := d.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate marker: %w", err)
	}
	return exists > 0, nil
}

// MarkAsProcessed records that a job with this fingerprint was enqueued,
// starting the dedup window.
func (d *JobDeduplicator) MarkAsProcessed(ctx context.Context, job *Job) error {
	key := fmt.Sprintf("%s:%s", d.keyPrefix, d.fingerprint(job))
	return d.redis.Set(ctx, key, job.ID, d.ttl).Err()
}

// JobPriorityAdjuster guards against starvation by promoting jobs that
// have waited in the pending queue past a threshold.
type JobPriorityAdjuster struct {
	redis     *redis.Client
	queue     *JobQueue
	threshold time.Duration
}

// NewJobPriorityAdjuster builds an adjuster over queue using the default
// starvation threshold of five minutes.
func NewJobPriorityAdjuster(redisClient *redis.Client, queue *JobQueue) *JobPriorityAdjuster {
	return &JobPriorityAdjuster{redis: redisClient, queue: queue, threshold: 5 * time.Minute}
}

// AdjustAllPriorities bumps the priority of every pending job that has
// waited longer than the starvation threshold, one level at a time, up to
// JobPriorityCritical. It returns how many jobs were adjusted.
func (a *JobPriorityAdjuster) AdjustAllPriorities(ctx context.Context) (int, error) {
	ids, err := a.redis.ZRange(ctx, a.queue.queueName, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	adjusted := 0
	for _, id := range ids {
		job, err := a.queue.GetJob(ctx, id)
		if err != nil || job.Status != JobStatusPending {
			continue
		}
		if time.Since(job.CreatedAt) < a.threshold {
			continue
		}
		next := nextPriority(job.Priority)
		if next == job.Priority {
			continue
		}

		job.Priority = next
		data, err := json.Marshal(job)
		if err != nil {
			continue
		}
		jobKey := fmt.Sprintf("%s:job:%s", a.queue.queueName, job.ID)
		if err := a.redis.Set(ctx, jobKey, data, 24*time.Hour).Err(); err != nil {
			continue
		}
		if err := a.redis.ZAdd(ctx, a.queue.queueName, &redis.Z{Score: float64(next), Member: job.ID}).Err(); err != nil {
			continue
		}
		adjusted++
	}
	return adjusted, nil
}

func nextPriority(p JobPriority) JobPriority {
	switch {
	case p < JobPriorityNormal:
		return JobPriorityNormal
	case p < JobPriorityHigh:
		return JobPriorityHigh
	case p < JobPriorityCritical:
		return JobPriorityCritical
	default:
		return p
	}
}

// JobPurger removes old completed and failed job records to bound Redis
// memory usage.
type JobPurger struct {
	redis *redis.Client
	queue *JobQueue
}

// NewJobPurger builds a purger over queue.
func NewJobPurger(redisClient *redis.Client, queue *JobQueue) *JobPurger {
	return &JobPurger{redis: redisClient, queue: queue}
}

func (p *JobPurger) purgeSet(ctx context.Context, setKey string, olderThan time.Duration) (int, error) {
	cutoff := float64(time.Now().Add(-olderThan).Unix())
	ids, err := p.redis.ZRangeByScore(ctx, setKey, &redis.ZRangeBy{Min: "0", Max: fmt.Sprintf("%.0f", cutoff)}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list purgeable jobs: %w", err)
	}
	for _, id := range ids {
		jobKey := fmt.Sprintf("%s:job:%s", p.queue.queueName, id)
		p.redis.Del(ctx, jobKey)
		p.redis.ZRem(ctx, setKey, id)
	}
	return len(ids), nil
}

// PurgeCompletedJobs deletes completed job records older than olderThan.
func (p *JobPurger) PurgeCompletedJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	return p.purgeSet(ctx, p.queue.completedSet, olderThan)
}

// PurgeFailedJobs deletes failed job records older than olderThan.
func (p *JobPurger) PurgeFailedJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	return p.purgeSet(ctx, p.queue.failedSet, olderThan)
}

// GetPurgeStats reports how many completed and failed jobs are eligible
// for purging without deleting anything.
func (p *JobPurger) GetPurgeStats(ctx context.Context, olderThan time.Duration) (map[string]interface{}, error) {
	cutoff := float64(time.Now().Add(-olderThan).Unix())
	completed, err := p.redis.ZCount(ctx, p.queue.completedSet, "0", fmt.Sprintf("%.0f", cutoff)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count purgeable completed jobs: %w", err)
	}
	failed, err := p.redis.ZCount(ctx, p.queue.failedSet, "0", fmt.Sprintf("%.0f", cutoff)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count purgeable failed jobs: %w", err)
	}
	return map[string]interface{}{
		"purgeable_completed": completed,
		"purgeable_failed":    failed,
		"older_than":          olderThan.String(),
	}, nil
}
