package memento

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sweeplab/memento/engine"
	"github.com/sweeplab/memento/internal/ctxlog"
	"github.com/sweeplab/memento/internal/dag"
	"github.com/sweeplab/memento/matrix"
	"github.com/sweeplab/memento/notify"
	"github.com/sweeplab/memento/store"
	"github.com/sweeplab/memento/value"
)

// ExperimentFunc is the computation run once per configuration. Its return
// value must stay inside the serializable value algebra (see value.FromGo);
// behavior that cannot be serialized travels as a registered name instead.
type ExperimentFunc func(ctx *Context, cfg *matrix.Config) (any, error)

// Memento memoizes an experiment function across batches of configurations.
// The name is the experiment's stable identity: together with a
// configuration it derives the cache key, so renaming an experiment orphans
// its cached results.
type Memento struct {
	name string
	fn   ExperimentFunc
	opts options

	mu       sync.Mutex
	matrices []matrix.Matrix
}

// New builds a Memento for one experiment function. Panics when name is
// empty or fn is nil.
func New(name string, fn ExperimentFunc, opts ...Option) *Memento {
	if name == "" {
		panic("memento: experiment name must be non-empty")
	}
	if fn == nil {
		panic("memento: experiment function must be non-nil")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider == nil {
		o.provider = notify.NoopProvider{}
	}
	return &Memento{name: name, fn: fn, opts: o}
}

// AddMatrix registers mx for a later RunAll. Matrices taking part in a
// multi-matrix run need an ID; dependencies refer to other matrices by
// their IDs.
func (m *Memento) AddMatrix(mx matrix.Matrix) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matrices = append(m.matrices, mx)
}

// Run executes one matrix and returns a result per configuration, in
// expansion order. Configurations with a cached result are served from the
// cache (WasCached=true) without running; the rest run on the worker pool
// and come back with WasCached=false. If any task fails, Run returns the
// engine's aggregate error: successful siblings keep their cache entries
// and a retry will skip them.
func (m *Memento) Run(ctx context.Context, mx matrix.Matrix, opts ...RunOption) ([]*Result, error) {
	ro := defaultRunOptions()
	for _, opt := range opts {
		opt(&ro)
	}
	return m.run(ctx, mx, ro)
}

func (m *Memento) run(ctx context.Context, mx matrix.Matrix, ro runOptions) ([]*Result, error) {
	if ro.forceRun && ro.forceCache {
		return nil, errors.New("force-run and force-cache are mutually exclusive")
	}

	logger := ctxlog.FromContext(ctx).With("experiment", m.name)
	if mx.ID != "" {
		logger = logger.With("matrix", mx.ID)
	}
	ctx = ctxlog.WithLogger(ctx, logger)

	configs, err := matrix.Expand(mx)
	if err != nil {
		return nil, err
	}

	logger.Info("Expanded matrix.", "configurations", configs.Len())
	for _, cfg := range configs.All() {
		logger.Info("Planned configuration.", "config", cfg)
	}

	if ro.dryRun {
		logger.Info("Exiting due to dry run.")
		return nil, nil
	}

	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}

	cache, checkpoints, closeStores, err := m.openStores(env, logger)
	if err != nil {
		return nil, err
	}
	defer closeStores()

	keys := make([]store.Key, configs.Len())
	fresh := make([]bool, configs.Len())
	var pending []int
	for i, cfg := range configs.All() {
		canonical, err := cfg.CanonicalBytes()
		if err != nil {
			return nil, fmt.Errorf("failed to derive cache key for configuration %s: %w", cfg, err)
		}
		keys[i] = store.DeriveKey(m.name, canonical)

		cached, err := cache.Contains(ctx, keys[i])
		if err != nil {
			return nil, err
		}
		if cached && !ro.forceRun {
			logger.Debug("Configuration already cached, skipping.", "config", cfg)
			continue
		}
		if ro.forceCache {
			return nil, &CacheMissError{Config: cfg}
		}
		fresh[i] = true
		pending = append(pending, i)
	}

	mgr := engine.NewManager[*Result](m.engineOptions(env, ro)...)
	for _, i := range pending {
		cfg := configs.At(i)
		key := keys[i]
		mgr.AddTask(func(taskCtx context.Context) (*Result, error) {
			return m.execute(taskCtx, cfg, key, cache, checkpoints)
		}, engine.PriorityHigh)
	}

	logger.Info("Running configurations.", "pending", len(pending), "cached", configs.Len()-len(pending))
	if _, err := mgr.Run(ctx); err != nil {
		// Checkpoints stay put so interrupted work can resume on retry.
		return nil, err
	}

	results := make([]*Result, configs.Len())
	hits := 0
	for i, cfg := range configs.All() {
		blob, err := cache.Get(ctx, keys[i])
		if err != nil {
			return nil, fmt.Errorf("failed to read cached result for configuration %s: %w", cfg, err)
		}
		res, err := decodeResult(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cached result for configuration %s: %w", cfg, err)
		}
		if fresh[i] {
			res.WasCached = false
		} else {
			hits++
		}
		results[i] = res

		if err := checkpoints.Remove(ctx, keys[i]); err != nil {
			return nil, fmt.Errorf("failed to remove checkpoint for configuration %s: %w", cfg, err)
		}
	}
	logger.Info("Results retrieved from cache.", "cached", hits, "total", configs.Len())

	return results, nil
}

// execute is the wrapped unit of work submitted to the engine. It binds a
// Context to the configuration's key, runs the experiment function, and
// writes the result envelope to both stores. The envelope is stored with
// WasCached=true; the reconciliation pass in run flips the flag for the
// configurations this call actually computed.
func (m *Memento) execute(ctx context.Context, cfg *matrix.Config, key store.Key, cache, checkpoints store.Store) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("config", cfg)
	ectx := newContext(ctx, key, checkpoints, logger)

	logger.Debug("Starting experiment.")
	start := time.Now()
	inner, err := m.fn(ectx, cfg)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	innerValue, err := value.FromGo(inner)
	if err != nil {
		return nil, fmt.Errorf("experiment returned a value outside the serializable algebra: %w", err)
	}

	result := &Result{
		Config:    cfg,
		Inner:     innerValue,
		Metrics:   ectx.snapshotMetrics(),
		StartTime: start,
		Runtime:   elapsed,
		WasCached: true,
	}

	blob, err := encodeResult(result)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, key, blob); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}
	if err := checkpoints.Set(ctx, key, blob); err != nil {
		return nil, fmt.Errorf("failed to checkpoint result: %w", err)
	}

	logger.Debug("Experiment completed.", "runtime", elapsed)
	return result, nil
}

// RunAll executes every registered matrix in dependency order. After a
// matrix finishes, its results fan out into each dependent matrix as a new
// parameter named after the finished matrix's ID, one candidate value per
// result. Returns the results keyed by matrix ID.
func (m *Memento) RunAll(ctx context.Context, opts ...RunOption) (map[string][]*Result, error) {
	ro := defaultRunOptions()
	for _, opt := range opts {
		opt(&ro)
	}

	logger := ctxlog.FromContext(ctx).With("experiment", m.name)

	m.mu.Lock()
	matrices := make([]matrix.Matrix, len(m.matrices))
	copy(matrices, m.matrices)
	m.mu.Unlock()

	if len(matrices) == 0 {
		return nil, errors.New("no matrices registered; call AddMatrix first")
	}

	g := dag.New()
	byID := make(map[string]*matrix.Matrix, len(matrices))
	for i := range matrices {
		mx := &matrices[i]
		if mx.ID == "" {
			return nil, fmt.Errorf("matrix at position %d has no id", i)
		}
		if err := g.AddNode(mx.ID); err != nil {
			return nil, fmt.Errorf("failed to register matrix '%s': %w", mx.ID, err)
		}
		// Own the parameter slice so injected parameters never leak into
		// the caller's matrix value.
		mx.Parameters = append([]matrix.Param(nil), mx.Parameters...)
		byID[mx.ID] = mx
	}
	for i := range matrices {
		mx := &matrices[i]
		for _, dep := range mx.Dependencies {
			if dep == mx.ID {
				return nil, fmt.Errorf("%w: matrix '%s' depends on itself", ErrCyclicDependency, mx.ID)
			}
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("matrix '%s' depends on unknown matrix '%s'", mx.ID, dep)
			}
			if err := g.AddEdge(dep, mx.ID); err != nil {
				return nil, fmt.Errorf("failed to link matrix '%s' to dependency '%s': %w", mx.ID, dep, err)
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclicDependency, err)
	}
	order, err := g.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclicDependency, err)
	}
	logger.Info("Resolved matrix execution order.", "order", order)

	results := make(map[string][]*Result, len(order))
	for _, id := range order {
		mx := byID[id]

		sub := ro
		sub.notifyOnComplete = false
		res, err := m.run(ctx, *mx, sub)
		if err != nil {
			return nil, fmt.Errorf("failed to run matrix '%s': %w", id, err)
		}
		results[id] = res

		dependents, err := g.Dependents(id)
		if err != nil {
			return nil, err
		}
		if len(dependents) == 0 {
			continue
		}
		injected, err := injectedValues(mx, res, ro.dryRun)
		if err != nil {
			return nil, err
		}
		for _, depID := range dependents {
			dmx := byID[depID]
			dmx.Parameters = append(dmx.Parameters, matrix.Param{Name: id, Values: injected})
			logger.Debug("Injected results into dependent matrix.", "parent", id, "dependent", depID, "values", len(injected))
		}
	}

	if ro.dryRun {
		logger.Info("Exiting due to dry run.")
		return nil, nil
	}

	if ro.notifyOnComplete {
		m.opts.provider.AllTasksCompleted()
	}
	return results, nil
}

// injectedValues is what a dependent matrix sweeps over: the parent's inner
// results in order, or in a dry run (where nothing executed) the parent's
// planned configurations as object values.
func injectedValues(mx *matrix.Matrix, res []*Result, dryRun bool) ([]value.Value, error) {
	if dryRun {
		configs, err := matrix.Expand(*mx)
		if err != nil {
			return nil, err
		}
		values := make([]value.Value, configs.Len())
		for i, cfg := range configs.All() {
			values[i] = cfg.ObjectValue()
		}
		return values, nil
	}
	values := make([]value.Value, len(res))
	for i, r := range res {
		values[i] = r.Inner
	}
	return values, nil
}

// openStores resolves the store configuration and opens whatever the caller
// did not inject. Injected stores stay open across runs; stores opened here
// are closed by the returned function when the run finishes.
func (m *Memento) openStores(env environment, logger *slog.Logger) (store.Store, store.Store, func(), error) {
	var opened []store.Store
	closeOpened := func() {
		for _, s := range opened {
			if err := s.Close(); err != nil {
				logger.Warn("Failed to close store.", "error", err)
			}
		}
	}

	path := m.opts.cachePath
	if path == "" {
		path = env.CachePath
	}
	if path == "" {
		path = store.DefaultFileName
	}

	cache := m.opts.cacheStore
	if cache == nil {
		s, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		opened = append(opened, s)
		cache = s
	}

	checkpoints := m.opts.checkpointStore
	if checkpoints == nil {
		// Colocated with the cache by convention, in its own table.
		s, err := store.NewSQLiteStore(path, store.WithTable(store.CheckpointTable))
		if err != nil {
			closeOpened()
			return nil, nil, nil, fmt.Errorf("failed to open checkpoint store: %w", err)
		}
		opened = append(opened, s)
		checkpoints = s
	}

	return cache, checkpoints, closeOpened, nil
}

func (m *Memento) engineOptions(env environment, ro runOptions) []engine.Option {
	opts := []engine.Option{
		engine.WithProvider(m.opts.provider),
		engine.WithNotifyOnComplete(ro.notifyOnComplete),
	}
	workers := m.opts.workers
	if workers == 0 {
		workers = env.Workers
	}
	if workers > 0 {
		opts = append(opts, engine.WithWorkers(workers))
	}
	if m.opts.maxTasksPerWorker > 0 {
		opts = append(opts, engine.WithMaxTasksPerWorker(m.opts.maxTasksPerWorker))
	}
	return opts
}
