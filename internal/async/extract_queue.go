package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Extractor is the orchestrator entry point the workers call.
type Extractor interface {
	Extract(ctx context.Context, name string, maxResults int) ([]entity.ExtractResult, error)
}

// Sink receives every finished job. It is called from worker goroutines.
type Sink func(JobResult)

// ExtractQueue runs extraction jobs on a fixed worker pool. The upstream
// session is shared, so the default is a single worker.
type ExtractQueue struct {
	ext     Extractor
	sink    Sink
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ExtractQueue)

func WithWorkers(n int) Option {
	return func(q *ExtractQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExtractQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *ExtractQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewExtractQueue(ext Extractor, sink Sink, logger *slog.Logger, opts ...Option) *ExtractQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = func(JobResult) {}
	}
	q := &ExtractQueue{
		ext:     ext,
		sink:    sink,
		logger:  logger.With("component", "extract_queue"),
		workers: 1,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ExtractQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.sink(q.run(workerID, job))
				}
				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ExtractQueue) run(workerID int, job Job) JobResult {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, job.ID.String())
	ctx = common.WithQuery(ctx, job.Name)

	q.logger.Debug("extraction started", "worker_id", workerID, "job_id", job.ID, "status", constants.JobStatusRunning)
	start := time.Now()
	results, err := q.ext.Extract(ctx, job.Name, job.MaxResults)
	res := JobResult{Job: job, Status: constants.JobStatusDone, Results: results, Err: err, Duration: time.Since(start)}
	if err != nil {
		res.Status = constants.JobStatusFailed
		q.logger.Error("extraction failed", "worker_id", workerID, "job_id", job.ID, "query", job.Name, "error", err)
	} else {
		q.logger.Info("extraction done", "worker_id", workerID, "job_id", job.ID, "query", job.Name,
			"results", len(results), "elapsed_ms", res.Duration.Milliseconds())
	}
	return res
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ExtractQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "query", job.Name)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued extraction", "job_id", job.ID, "query", job.Name, "status", constants.JobStatusQueued)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "query", job.Name)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for the workers to drain.
func (q *ExtractQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
