package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/addrummond/heap"
	"github.com/sweeplab/memento/internal/ctxlog"
	"github.com/sweeplab/memento/notify"
)

type config struct {
	workers           int
	maxTasksPerWorker int
	provider          notify.Provider
	notifyOnComplete  bool
}

// Option configures a Manager at construction time.
type Option func(*config)

// WithWorkers caps the number of concurrent workers. Defaults to
// runtime.GOMAXPROCS(0); values below one are raised to one.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithMaxTasksPerWorker retires each worker after it has executed n tasks
// and spawns a replacement in its slot. Zero disables recycling.
func WithMaxTasksPerWorker(n int) Option {
	return func(c *config) {
		c.maxTasksPerWorker = n
	}
}

// WithProvider routes task lifecycle notifications to p.
func WithProvider(p notify.Provider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithNotifyOnComplete controls whether a fully successful Run fires
// AllTasksCompleted on the provider. Enabled by default.
func WithNotifyOnComplete(on bool) Option {
	return func(c *config) {
		c.notifyOnComplete = on
	}
}

// Manager queues tasks by priority and executes them on a bounded worker
// pool. Tasks may be queued from multiple goroutines, but the batch must be
// complete before Run is called. Construct with NewManager; the zero value
// is not usable.
type Manager[T any] struct {
	cfg config

	mu      sync.Mutex
	queue   heap.Heap[task[T], heap.Min]
	pending int
	seq     int
}

// NewManager returns a manager ready to accept tasks.
func NewManager[T any](opts ...Option) *Manager[T] {
	cfg := config{
		workers:          runtime.GOMAXPROCS(0),
		provider:         notify.NoopProvider{},
		notifyOnComplete: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	if cfg.provider == nil {
		cfg.provider = notify.NoopProvider{}
	}
	return &Manager[T]{cfg: cfg}
}

// AddTask queues fn at the given priority and returns the task's identifier.
// The zero Priority means PriorityHigh. Panics if fn is nil or the priority
// is negative.
func (m *Manager[T]) AddTask(fn TaskFunc[T], priority Priority) string {
	if fn == nil {
		panic("engine: task function must be non-nil")
	}
	if priority < 0 {
		panic(fmt.Sprintf("engine: invalid priority %d", priority))
	}
	if priority == 0 {
		priority = PriorityHigh
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := task[T]{
		fn:       fn,
		priority: priority,
		index:    m.pending,
		id:       fmt.Sprintf("task-%d", m.seq),
	}
	m.pending++
	heap.PushOrderable(&m.queue, t)
	return t.id
}

// AddTasks queues every fn at the same priority, preserving slice order.
func (m *Manager[T]) AddTasks(fns []TaskFunc[T], priority Priority) []string {
	ids := make([]string, 0, len(fns))
	for _, fn := range fns {
		ids = append(ids, m.AddTask(fn, priority))
	}
	return ids
}

// Len reports how many tasks are queued for the next Run.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Run executes every queued task and returns the results in submission
// order. Queue order is (priority, submission index), so equal-priority
// tasks start in the order they were added. If any task fails, Run returns
// an *AggregateError listing every failure and discards the successful
// results. Afterwards the manager is empty and can be reused.
func (m *Manager[T]) Run(ctx context.Context) ([]T, error) {
	logger := ctxlog.FromContext(ctx)

	m.mu.Lock()
	total := m.pending
	m.pending = 0
	m.mu.Unlock()

	if total == 0 {
		logger.Debug("No tasks queued, nothing to run.")
		if m.cfg.notifyOnComplete {
			m.cfg.provider.AllTasksCompleted()
		}
		return nil, nil
	}

	workers := m.cfg.workers
	if workers > total {
		workers = total
	}

	results := make([]T, total)
	var failMu sync.Mutex
	var failures []*TaskError

	fail := func(t task[T], err error) {
		failMu.Lock()
		failures = append(failures, &TaskError{Index: t.index, ID: t.id, Err: err})
		failMu.Unlock()
		m.cfg.provider.TaskFailed()
	}

	var wg sync.WaitGroup

	var spawn func(workerID int)
	spawn = func(workerID int) {
		defer wg.Done()
		workerLogger := logger.With("workerID", workerID)
		workerLogger.Debug("Worker started.")

		executed := 0
		for {
			if m.cfg.maxTasksPerWorker > 0 && executed >= m.cfg.maxTasksPerWorker {
				workerLogger.Debug("Worker reached its task limit, spawning replacement.")
				wg.Add(1)
				go spawn(workerID)
				return
			}

			t, ok := m.pop()
			if !ok {
				workerLogger.Debug("Worker finished.")
				return
			}

			taskLogger := workerLogger.With("taskID", t.id)
			if ctx.Err() != nil {
				taskLogger.Warn("Context canceled, skipping task execution.")
				fail(t, ctx.Err())
				continue
			}

			taskLogger.Debug("Worker picked up task.", "priority", t.priority.String())
			res, err := m.runTask(ctxlog.WithLogger(ctx, taskLogger), t.fn)
			executed++
			if err != nil {
				taskLogger.Error("Task failed.", "error", err)
				fail(t, err)
				continue
			}

			taskLogger.Debug("Task completed.")
			results[t.index] = res
			m.cfg.provider.TaskCompleted()
		}
	}

	logger.Debug("Starting worker pool.", "workers", workers, "tasks", total)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go spawn(i)
	}

	logger.Debug("Waiting for all tasks to complete...")
	wg.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].Index < failures[j].Index
		})
		return nil, &AggregateError{Failures: failures}
	}

	logger.Debug("All tasks completed.", "tasks", total)
	if m.cfg.notifyOnComplete {
		m.cfg.provider.AllTasksCompleted()
	}
	return results, nil
}

func (m *Manager[T]) pop() (task[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return heap.PopOrderable(&m.queue)
}

// runTask converts a panic inside fn into an error so one bad task cannot
// take down its siblings.
func (m *Manager[T]) runTask(ctx context.Context, fn TaskFunc[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}
