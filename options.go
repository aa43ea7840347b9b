package memento

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/sweeplab/memento/notify"
	"github.com/sweeplab/memento/store"
)

// EnvPrefix scopes the environment variables this package reads, e.g.
// MEMENTO_CACHE_PATH and MEMENTO_WORKERS.
const EnvPrefix = "memento"

type options struct {
	workers           int
	maxTasksPerWorker int
	provider          notify.Provider
	cachePath         string
	cacheStore        store.Store
	checkpointStore   store.Store
}

// Option configures a Memento instance at construction time.
type Option func(*options)

// WithWorkers caps the number of concurrent experiment tasks. Zero keeps
// the MEMENTO_WORKERS environment value, falling back to host parallelism.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxTasksPerWorker retires each worker after n tasks and replaces it,
// bounding per-worker resource growth. Zero disables recycling.
func WithMaxTasksPerWorker(n int) Option {
	return func(o *options) {
		o.maxTasksPerWorker = n
	}
}

// WithProvider routes task lifecycle notifications to p.
func WithProvider(p notify.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithCachePath sets the store file. It beats the MEMENTO_CACHE_PATH
// environment value, which in turn beats store.DefaultFileName.
func WithCachePath(path string) Option {
	return func(o *options) {
		o.cachePath = path
	}
}

// WithCacheStore injects a ready-made cache store. The caller keeps
// ownership: runs will not close it.
func WithCacheStore(s store.Store) Option {
	return func(o *options) {
		o.cacheStore = s
	}
}

// WithCheckpointStore injects a ready-made checkpoint store. The caller
// keeps ownership: runs will not close it.
func WithCheckpointStore(s store.Store) Option {
	return func(o *options) {
		o.checkpointStore = s
	}
}

func defaultOptions() options {
	return options{provider: notify.NoopProvider{}}
}

type runOptions struct {
	dryRun           bool
	forceRun         bool
	forceCache       bool
	notifyOnComplete bool
}

// RunOption adjusts a single Run or RunAll invocation.
type RunOption func(*runOptions)

// DryRun expands and logs the planned configurations without executing or
// caching anything.
func DryRun() RunOption {
	return func(o *runOptions) {
		o.dryRun = true
	}
}

// ForceRun recomputes every configuration, overwriting cached results.
func ForceRun() RunOption {
	return func(o *runOptions) {
		o.forceRun = true
	}
}

// ForceCache serves results from the cache only. A configuration without a
// cached result fails the run with a CacheMissError before anything is
// submitted.
func ForceCache() RunOption {
	return func(o *runOptions) {
		o.forceCache = true
	}
}

// NotifyOnComplete controls whether the run fires AllTasksCompleted on the
// notification provider when it finishes. Enabled by default.
func NotifyOnComplete(on bool) RunOption {
	return func(o *runOptions) {
		o.notifyOnComplete = on
	}
}

func defaultRunOptions() runOptions {
	return runOptions{notifyOnComplete: true}
}

// environment carries the process-level configuration surface.
type environment struct {
	CachePath string `envconfig:"CACHE_PATH"`
	Workers   int    `envconfig:"WORKERS"`
}

func loadEnvironment() (environment, error) {
	var env environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return environment{}, fmt.Errorf("failed to read environment configuration: %w", err)
	}
	return env, nil
}
