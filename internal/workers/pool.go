// Package workers runs batches of independent manager operations with
// bounded concurrency. Each job is expected to open its own session: one
// connection carries a single request at a time, so parallelism means
// parallel connections.
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/logging"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown.
	ErrPoolClosed = errors.New("worker pool is shut down")
	// ErrQueueFull is returned by Submit when the queue has no room.
	ErrQueueFull = errors.New("job queue is full")
)

// Job is a unit of work executed by a worker.
type Job interface {
	// Execute performs the job.
	Execute(ctx context.Context) error
	// ID identifies the job in results and logs.
	ID() string
	// Type names the operation, for example "start_task".
	Type() string
}

// Result is the outcome of one job.
type Result struct {
	JobID    string
	JobType  string
	Error    error
	Duration time.Duration
	Retries  int
}

// Config holds configuration for the worker pool.
type Config struct {
	// Size is the number of concurrent workers.
	Size int
	// QueueSize is the maximum number of queued jobs.
	QueueSize int
	// MaxRetries bounds the retries of a job that failed with a retryable
	// error.
	MaxRetries int
	// RetryDelay is the delay between attempts.
	RetryDelay time.Duration
	// ShutdownTimeout is how long Shutdown waits before canceling running
	// jobs.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default worker pool configuration.
func DefaultConfig() Config {
	return Config{
		Size:            4,
		QueueSize:       100,
		MaxRetries:      2,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Pool executes submitted jobs on a fixed number of workers.
type Pool struct {
	config  Config
	logger  *logging.Logger
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a pool. Canceling ctx cancels running jobs.
func New(ctx context.Context, config Config) *Pool {
	if config.Size <= 0 {
		config.Size = 1
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		config:  config,
		logger:  logging.Default().WithComponent("workers"),
		jobs:    make(chan Job, config.QueueSize),
		results: make(chan Result, config.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers. Further calls do nothing.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Debug("starting worker pool", "workers", p.config.Size, "queue_size", p.config.QueueSize)
		for i := 0; i < p.config.Size; i++ {
			p.wg.Add(1)
			go p.run(i)
		}
	})
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job:
		p.logger.Debug("job submitted", "job_id", job.ID(), "job_type", job.Type())
		return nil
	default:
		return ErrQueueFull
	}
}

// Results delivers one Result per executed job. The channel is closed
// by Shutdown once every worker has exited; callers must drain it.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown stops accepting jobs and waits for queued jobs to finish. Jobs
// still running after ShutdownTimeout are canceled.
func (p *Pool) Shutdown() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		var timeout <-chan time.Time
		if p.config.ShutdownTimeout > 0 {
			timer := time.NewTimer(p.config.ShutdownTimeout)
			defer timer.Stop()
			timeout = timer.C
		}

		select {
		case <-done:
		case <-timeout:
			p.logger.Warn("worker pool shutdown timeout, canceling running jobs")
			p.cancel()
			<-done
		}
		p.cancel()
		close(p.results)
		p.logger.Debug("worker pool stopped")
	})
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.results <- p.execute(id, job)
	}
}

// execute runs job, retrying failures that a new connection may cure.
func (p *Pool) execute(workerID int, job Job) Result {
	result := Result{JobID: job.ID(), JobType: job.Type()}
	start := time.Now()

	for attempt := 0; ; attempt++ {
		if err := p.ctx.Err(); err != nil {
			result.Error = gvmerrors.Wrap(gvmerrors.CodeCanceled, "job not run", err)
			break
		}

		err := job.Execute(p.ctx)
		result.Error = err
		result.Retries = attempt
		if err == nil || attempt >= p.config.MaxRetries || !gvmerrors.IsRetryable(err) {
			break
		}

		p.logger.Debug("job failed, retrying",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"attempt", attempt+1,
			"worker_id", workerID,
			"error", err)

		select {
		case <-time.After(p.config.RetryDelay):
		case <-p.ctx.Done():
		}
	}

	result.Duration = time.Since(start)
	if result.Error != nil {
		p.logger.Error("job failed",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"retries", result.Retries,
			"error", result.Error)
	}
	return result
}

// Run executes jobs with the given configuration and returns their
// results in completion order.
func Run(ctx context.Context, config Config, jobs []Job) []Result {
	if config.QueueSize < len(jobs) {
		config.QueueSize = len(jobs)
	}
	p := New(ctx, config)
	p.Start()
	for _, job := range jobs {
		// The queue holds every job, so Submit cannot fail.
		_ = p.Submit(job)
	}
	go p.Shutdown()

	results := make([]Result, 0, len(jobs))
	for r := range p.Results() {
		results = append(results, r)
	}
	return results
}

// FuncJob adapts a function to the Job interface.
type FuncJob struct {
	id      string
	jobType string
	fn      func(ctx context.Context) error
}

// NewJob creates a job running fn.
func NewJob(id, jobType string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{id: id, jobType: jobType, fn: fn}
}

// Execute implements the Job interface.
func (j *FuncJob) Execute(ctx context.Context) error {
	return j.fn(ctx)
}

// ID implements the Job interface.
func (j *FuncJob) ID() string {
	return j.id
}

// Type implements the Job interface.
func (j *FuncJob) Type() string {
	return j.jobType
}
