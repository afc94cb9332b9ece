// package queue implements a Redis-backed job queue for fetch-and-count runs
package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/wordcount/internal/metrics"
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
)

// Hash fields of a job.
const (
	fieldStatus     = "status"
	fieldURL        = "url"
	fieldResult     = "result"
	fieldError      = "error"
	fieldEnqueuedAt = "enqueued_at"
	fieldStartedAt  = "started_at"
	fieldEndedAt    = "ended_at"
	fieldTTL        = "ttl"
)

// MinBlockTimeout is the shortest BLPOP timeout Redis honours; shorter values are raised to it.
const MinBlockTimeout = time.Second

// Queue stores job ids in a Redis list and job state in one hash per job.
type Queue struct {
	client       *redis.Client
	name         string
	prefix       string
	resultTTL    time.Duration
	blockTimeout time.Duration
	logger       *log.Logger
	metrics      *metrics.Metrics
}

// NewClient creates a [redis.Client] from the [queue] config section.
func NewClient(cfg shared.QueueConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// New creates a [Queue] over client. logger and m may be nil.
func New(client *redis.Client, cfg shared.QueueConfig, logger *log.Logger, m *metrics.Metrics) *Queue {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	blockTimeout := cfg.BlockTimeout
	switch {
	case blockTimeout <= 0:
		blockTimeout = 5 * time.Second
	case blockTimeout < MinBlockTimeout:
		blockTimeout = MinBlockTimeout
	}
	return &Queue{
		client:       client,
		name:         cfg.Name,
		prefix:       cfg.Prefix,
		resultTTL:    cfg.ResultTTL,
		blockTimeout: blockTimeout,
		logger:       shared.WithLogger(logger, "component", "queue", "queue", cfg.Name),
		metrics:      m,
	}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// ResultTTL returns the default retention for finished jobs.
func (q *Queue) ResultTTL() time.Duration { return q.resultTTL }

func (q *Queue) queueKey() string {
	return fmt.Sprintf("%s:queue:%s", q.prefix, q.name)
}

func (q *Queue) jobKey(id string) string {
	return fmt.Sprintf("%s:job:%s", q.prefix, id)
}

// Ping checks the Redis connection.
func (q *Queue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrQueueUnavailable, err)
	}
	return nil
}

// Close closes the underlying client.
func (q *Queue) Close() error {
	return q.client.Close()
}

// Len returns the number of jobs waiting to be picked up.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrQueueUnavailable, err)
	}
	return n, nil
}

// Enqueue records a queued job for url and pushes its id onto the queue.
//
// ttl bounds how long the job and its result are retained; zero or less uses the configured result TTL.
// The job hash expires after ttl even if no worker picks it up.
func (q *Queue) Enqueue(ctx context.Context, url string, ttl time.Duration) (*models.Job, error) {
	if ttl <= 0 {
		ttl = q.resultTTL
	}

	job := &models.Job{
		ID:         shared.GenerateID(),
		URL:        url,
		Status:     models.JobQueued,
		EnqueuedAt: time.Now().UTC(),
		TTL:        ttl,
	}

	key := q.jobKey(job.ID)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldStatus, string(job.Status),
			fieldURL, job.URL,
			fieldEnqueuedAt, formatTime(job.EnqueuedAt),
			fieldTTL, strconv.FormatInt(int64(ttl/time.Second), 10),
		)
		pipe.Expire(ctx, key, ttl)
		pipe.RPush(ctx, q.queueKey(), job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to enqueue job: %v", shared.ErrQueueUnavailable, err)
	}

	q.metrics.JobEvent("enqueued")
	q.logger.Debug("enqueued job", "job_id", job.ID, "url", url, "ttl", ttl)
	return job, nil
}

// Fetch returns the job with id. Unknown and expired jobs return [shared.ErrNotFound].
func (q *Queue) Fetch(ctx context.Context, id string) (*models.Job, error) {
	fields, err := q.client.HGetAll(ctx, q.jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrQueueUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: job %s", shared.ErrNotFound, id)
	}
	return decodeJob(id, fields)
}

// Dequeue blocks for up to the block timeout waiting for a job id.
// It returns "" when the timeout passes with nothing queued.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	result, err := q.client.BLPop(ctx, q.blockTimeout, q.queueKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrQueueUnavailable, err)
	}
	// result is [key, value]
	return result[1], nil
}

// markStarted moves a job to started and clears its expiry while it runs.
func (q *Queue) markStarted(ctx context.Context, id string) (time.Time, error) {
	now := time.Now().UTC()
	key := q.jobKey(id)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldStatus, string(models.JobStarted), fieldStartedAt, formatTime(now))
		pipe.Persist(ctx, key)
		return nil
	})
	return now, err
}

// finish stores the terminal state and resets the expiry so the result lives for ttl after completion.
//
// The whole job is written back so a hash dropped by Redis while the job ran still decodes.
func (q *Queue) finish(ctx context.Context, job *models.Job, status models.JobStatus, field, value string, ttl time.Duration) error {
	key := q.jobKey(job.ID)
	values := []any{
		fieldStatus, string(status),
		fieldURL, job.URL,
		fieldEnqueuedAt, formatTime(job.EnqueuedAt),
		fieldTTL, strconv.FormatInt(int64(ttl/time.Second), 10),
		field, value,
		fieldEndedAt, formatTime(time.Now().UTC()),
	}
	if job.StartedAt != nil {
		values = append(values, fieldStartedAt, formatTime(*job.StartedAt))
	}

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err == nil {
		q.metrics.JobEvent(string(status))
	}
	return err
}

func decodeJob(id string, fields map[string]string) (*models.Job, error) {
	job := &models.Job{
		ID:     id,
		URL:    fields[fieldURL],
		Status: models.JobStatus(fields[fieldStatus]),
		Error:  fields[fieldError],
	}

	if r := fields[fieldResult]; r != "" {
		job.Result = []byte(r)
	}

	if secs, err := strconv.ParseInt(fields[fieldTTL], 10, 64); err == nil {
		job.TTL = time.Duration(secs) * time.Second
	}

	if v := fields[fieldEnqueuedAt]; v != "" {
		t, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt job %s: %w", id, err)
		}
		job.EnqueuedAt = t
	}
	if v := fields[fieldStartedAt]; v != "" {
		t, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt job %s: %w", id, err)
		}
		job.StartedAt = &t
	}
	if v := fields[fieldEndedAt]; v != "" {
		t, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt job %s: %w", id, err)
		}
		job.EndedAt = &t
	}

	return job, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
