// ABOUTME: Refresh worker serializes background passes so only one runs per cache store
// ABOUTME: Provides a bounded queue of pass requests consumed by a single goroutine

package workers

import (
	"context"
	"sync"
	"time"

	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/scheduler"
)

// PassRunner executes one refresh pass
type PassRunner interface {
	Run(ctx context.Context, req scheduler.PassRequest) (scheduler.PassResult, error)
}

// PassOutcome is delivered once per submitted request
type PassOutcome struct {
	Result scheduler.PassResult
	Err    error
}

// passJob represents a queued pass request
type passJob struct {
	ctx  context.Context
	req  scheduler.PassRequest
	done chan PassOutcome
}

// RefreshWorker runs queued passes one at a time
type RefreshWorker struct {
	runner        PassRunner
	logger        interfaces.Logger
	jobQueue      chan *passJob
	queueSize     int
	submitTimeout time.Duration
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex
	running       bool
}

// WorkerConfig holds configuration for the refresh worker
type WorkerConfig struct {
	QueueSize     int
	SubmitTimeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		QueueSize:     8,
		SubmitTimeout: 5 * time.Second,
	}
}

// NewRefreshWorker creates a new refresh worker around runner
func NewRefreshWorker(runner PassRunner, config WorkerConfig, logger interfaces.Logger) *RefreshWorker {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultWorkerConfig().QueueSize
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = DefaultWorkerConfig().SubmitTimeout
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	return &RefreshWorker{
		runner:        runner,
		logger:        logger,
		jobQueue:      make(chan *passJob, config.QueueSize),
		queueSize:     config.QueueSize,
		submitTimeout: config.SubmitTimeout,
	}
}

// Start starts the worker goroutine
func (rw *RefreshWorker) Start() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.running {
		return nil
	}

	rw.ctx, rw.cancel = context.WithCancel(context.Background())
	rw.wg.Add(1)
	go rw.run(rw.ctx)

	rw.running = true
	return nil
}

// Stop cancels the active pass, fails queued requests and waits for the goroutine to exit
func (rw *RefreshWorker) Stop() error {
	rw.mu.Lock()
	if !rw.running {
		rw.mu.Unlock()
		return nil
	}
	rw.running = false
	rw.cancel()
	rw.mu.Unlock()

	rw.wg.Wait()
	return nil
}

// Running reports whether the worker accepts requests
func (rw *RefreshWorker) Running() bool {
	rw.mu.RLock()
	defer rw.mu.RUnlock()
	return rw.running
}

// Submit queues a pass request. The returned channel receives exactly one outcome.
func (rw *RefreshWorker) Submit(ctx context.Context, req scheduler.PassRequest) (<-chan PassOutcome, error) {
	rw.mu.RLock()
	defer rw.mu.RUnlock()

	if !rw.running {
		return nil, ErrWorkerNotRunning
	}

	job := &passJob{ctx: ctx, req: req, done: make(chan PassOutcome, 1)}

	timer := time.NewTimer(rw.submitTimeout)
	defer timer.Stop()

	select {
	case rw.jobQueue <- job:
		return job.done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrQueueFull
	}
}

// run is the main loop of the worker goroutine
func (rw *RefreshWorker) run(ctx context.Context) {
	defer rw.wg.Done()

	for {
		select {
		case job := <-rw.jobQueue:
			if ctx.Err() != nil {
				job.done <- PassOutcome{Err: ErrWorkerNotRunning}
				rw.drain()
				return
			}
			rw.processJob(ctx, job)
		case <-ctx.Done():
			rw.drain()
			return
		}
	}
}

// drain fails every request still queued after a stop
func (rw *RefreshWorker) drain() {
	for {
		select {
		case job := <-rw.jobQueue:
			job.done <- PassOutcome{Err: ErrWorkerNotRunning}
		default:
			return
		}
	}
}

// processJob runs a single pass, cancelled by either the caller or the worker
func (rw *RefreshWorker) processJob(workerCtx context.Context, job *passJob) {
	ctx, cancel := context.WithCancel(job.ctx)
	defer cancel()
	stop := context.AfterFunc(workerCtx, cancel)
	defer stop()

	res, err := rw.runner.Run(ctx, job.req)
	if err != nil {
		rw.logger.Warn("Refresh pass interrupted", map[string]interface{}{
			"error":      err.Error(),
			"classified": res.Classified,
		})
	}
	job.done <- PassOutcome{Result: res, Err: err}
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "refresh worker is not running"}
	ErrQueueFull        = &WorkerError{Message: "refresh queue is full"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
