package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
)

// Handler runs a job and returns the JSON payload stored as its result.
// A returned error marks the job failed instead of finished.
type Handler func(ctx context.Context, job *models.Job) ([]byte, error)

// Worker pulls job ids off a [Queue] and runs up to concurrency handlers at once.
type Worker struct {
	queue     *Queue
	handler   Handler
	semaphore chan struct{}
	wg        sync.WaitGroup
	logger    *log.Logger
	retry     time.Duration
}

// NewWorker creates a [Worker]. Concurrency below one is treated as one.
func NewWorker(q *Queue, concurrency int, handler Handler) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:     q,
		handler:   handler,
		semaphore: make(chan struct{}, concurrency),
		logger:    shared.WithLogger(q.logger, "component", "worker"),
		retry:     time.Second,
	}
}

// Start processes jobs until ctx is cancelled, then waits for in-flight jobs to finish.
//
// Jobs run with a context that is not cancelled on shutdown so a started job always records its outcome.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker started", "concurrency", cap(w.semaphore))
	defer func() {
		w.wg.Wait()
		w.logger.Info("worker stopped")
	}()

	jobCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case w.semaphore <- struct{}{}:
		}

		id, err := w.queue.Dequeue(ctx)
		if err != nil {
			<-w.semaphore
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("failed to dequeue", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.retry):
			}
			continue
		}
		if id == "" {
			<-w.semaphore
			continue
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.semaphore }()
			w.process(jobCtx, id)
		}()
	}
}

// ProcessNext dequeues and runs a single job in the calling goroutine.
// It reports false when no job arrived before the block timeout.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	id, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}
	w.process(ctx, id)
	return true, nil
}

func (w *Worker) process(ctx context.Context, id string) {
	logger := w.logger.With("job_id", id)

	job, err := w.queue.Fetch(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		logger.Warn("job expired before it was picked up")
		return
	}
	if err != nil {
		logger.Error("failed to load job", "err", err)
		return
	}

	ttl := job.TTL
	if ttl <= 0 {
		ttl = w.queue.resultTTL
	}

	started, err := w.queue.markStarted(ctx, id)
	if err != nil {
		logger.Error("failed to mark job started", "err", err)
		return
	}
	job.Status = models.JobStarted
	job.StartedAt = &started
	logger.Info("processing job", "url", job.URL)

	payload, err := w.run(ctx, job)
	if err != nil {
		logger.Error("job failed", "err", err)
		if err := w.queue.finish(ctx, job, models.JobFailed, fieldError, err.Error(), ttl); err != nil {
			logger.Error("failed to record job failure", "err", err)
		}
		return
	}

	if err := w.queue.finish(ctx, job, models.JobFinished, fieldResult, string(payload), ttl); err != nil {
		logger.Error("failed to record job result", "err", err)
		return
	}
	logger.Info("job finished", "elapsed", time.Since(started))
}

// run calls the handler, converting a panic into an error.
func (w *Worker) run(ctx context.Context, job *models.Job) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", shared.ErrJobFailed, r)
		}
	}()
	return w.handler(ctx, job)
}
