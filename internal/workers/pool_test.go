package workers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// MockJob implements the Job interface for testing
type MockJob struct {
	id       string
	jobType  string
	duration time.Duration
	errs     []error
	executed int32
}

// NewMockJob creates a job that fails with errs[i] on attempt i and
// succeeds once errs is exhausted.
func NewMockJob(id string, duration time.Duration, errs ...error) *MockJob {
	return &MockJob{
		id:       id,
		jobType:  "start_task",
		duration: duration,
		errs:     errs,
	}
}

func (m *MockJob) Execute(ctx context.Context) error {
	n := atomic.AddInt32(&m.executed, 1)
	if m.duration > 0 {
		select {
		case <-time.After(m.duration):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if int(n) <= len(m.errs) {
		return m.errs[n-1]
	}
	return nil
}

func (m *MockJob) ID() string {
	return m.id
}

func (m *MockJob) Type() string {
	return m.jobType
}

func (m *MockJob) ExecutedCount() int32 {
	return atomic.LoadInt32(&m.executed)
}

func connectionLost() error {
	return gvmerrors.NewTransportError(gvmerrors.CodeConnectionLost, "read", "/run/gvmd/gvmd.sock", io.EOF)
}

func TestNewPool(t *testing.T) {
	t.Run("creates pool with valid configuration", func(t *testing.T) {
		config := Config{Size: 5, QueueSize: 100, MaxRetries: 3}
		pool := New(context.Background(), config)

		assert.Equal(t, config.QueueSize, cap(pool.jobs))
		assert.Equal(t, config.QueueSize, cap(pool.results))
	})

	t.Run("normalizes invalid sizes", func(t *testing.T) {
		pool := New(context.Background(), Config{Size: 0, QueueSize: -1})
		assert.Equal(t, 1, pool.config.Size)
		assert.Equal(t, 0, cap(pool.jobs))
	})

	t.Run("default configuration", func(t *testing.T) {
		config := DefaultConfig()
		assert.Positive(t, config.Size)
		assert.Positive(t, config.QueueSize)
	})
}

func TestRun(t *testing.T) {
	jobs := make([]Job, 0, 10)
	mocks := make([]*MockJob, 0, 10)
	for i := range 10 {
		m := NewMockJob(fmt.Sprintf("task-%d", i), time.Millisecond)
		mocks = append(mocks, m)
		jobs = append(jobs, m)
	}

	results := Run(context.Background(), Config{Size: 3}, jobs)
	require.Len(t, results, 10)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		assert.NoError(t, r.Error)
		assert.Equal(t, "start_task", r.JobType)
		ids = append(ids, r.JobID)
	}
	sort.Strings(ids)
	assert.Equal(t, "task-0", ids[0])

	for _, m := range mocks {
		assert.Equal(t, int32(1), m.ExecutedCount())
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var running, peak int32
	jobs := make([]Job, 0, 8)
	for i := range 8 {
		jobs = append(jobs, NewJob(fmt.Sprintf("job-%d", i), "stop_task", func(context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}))
	}

	results := Run(context.Background(), Config{Size: 2}, jobs)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRetries(t *testing.T) {
	tests := []struct {
		name         string
		errs         []error
		maxRetries   int
		wantExecuted int32
		wantRetries  int
		wantErr      bool
	}{
		{
			name:         "retryable error recovers",
			errs:         []error{connectionLost()},
			maxRetries:   2,
			wantExecuted: 2,
			wantRetries:  1,
		},
		{
			name:         "retryable error exhausts retries",
			errs:         []error{connectionLost(), connectionLost(), connectionLost()},
			maxRetries:   2,
			wantExecuted: 3,
			wantRetries:  2,
			wantErr:      true,
		},
		{
			name:         "non-retryable error fails at once",
			errs:         []error{gvmerrors.NewRequiredArgument("start_task", "task_id")},
			maxRetries:   3,
			wantExecuted: 1,
			wantRetries:  0,
			wantErr:      true,
		},
		{
			name:         "plain error is not retried",
			errs:         []error{errors.New("boom")},
			maxRetries:   3,
			wantExecuted: 1,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewMockJob("task-1", 0, tt.errs...)
			results := Run(context.Background(), Config{
				Size:       1,
				MaxRetries: tt.maxRetries,
				RetryDelay: time.Millisecond,
			}, []Job{job})

			require.Len(t, results, 1)
			assert.Equal(t, tt.wantExecuted, job.ExecutedCount())
			assert.Equal(t, tt.wantRetries, results[0].Retries)
			if tt.wantErr {
				assert.Error(t, results[0].Error)
			} else {
				assert.NoError(t, results[0].Error)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	t.Run("rejects jobs after shutdown", func(t *testing.T) {
		pool := New(context.Background(), Config{Size: 1, QueueSize: 1})
		pool.Start()
		pool.Shutdown()

		assert.ErrorIs(t, pool.Submit(NewMockJob("late", 0)), ErrPoolClosed)
	})

	t.Run("reports a full queue", func(t *testing.T) {
		// Not started, so nothing drains the queue.
		pool := New(context.Background(), Config{Size: 1, QueueSize: 1})
		require.NoError(t, pool.Submit(NewMockJob("a", 0)))
		assert.ErrorIs(t, pool.Submit(NewMockJob("b", 0)), ErrQueueFull)
	})

	t.Run("shutdown twice", func(t *testing.T) {
		pool := New(context.Background(), Config{Size: 1})
		pool.Start()
		pool.Shutdown()
		assert.NotPanics(t, pool.Shutdown)
	})
}

func TestShutdownTimeoutCancelsJobs(t *testing.T) {
	job := NewMockJob("slow", time.Minute)
	pool := New(context.Background(), Config{Size: 1, QueueSize: 1, ShutdownTimeout: 20 * time.Millisecond})
	pool.Start()
	require.NoError(t, pool.Submit(job))

	// Let the worker pick the job up.
	require.Eventually(t, func() bool { return job.ExecutedCount() == 1 }, time.Second, time.Millisecond)

	go pool.Shutdown()
	var results []Result
	for r := range pool.Results() {
		results = append(results, r)
	}
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, context.Canceled)
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewMockJob("never", 0)
	results := Run(ctx, Config{Size: 1}, []Job{job})

	require.Len(t, results, 1)
	assert.True(t, gvmerrors.IsCode(results[0].Error, gvmerrors.CodeCanceled))
	assert.Equal(t, int32(0), job.ExecutedCount())
}
