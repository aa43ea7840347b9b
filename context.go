package memento

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sweeplab/memento/store"
)

// Context is the surface an experiment function sees while it runs. It
// embeds the task's context.Context, so it cancels with the batch and can
// be passed to any context-aware call. On top of that it offers metric
// recording and checkpointing scoped to the running configuration's cache
// key.
type Context struct {
	context.Context

	key         store.Key
	checkpoints store.Store
	logger      *slog.Logger

	mu      sync.Mutex
	metrics map[string]Series
}

func newContext(ctx context.Context, key store.Key, checkpoints store.Store, logger *slog.Logger) *Context {
	return &Context{
		Context:     ctx,
		key:         key,
		checkpoints: checkpoints,
		logger:      logger,
		metrics:     make(map[string]Series),
	}
}

// Key returns the cache key of the configuration this task is computing.
func (c *Context) Key() store.Key {
	return c.key
}

// Logger returns a logger tagged with the task's identity.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Record appends a sample to the named metric series, using the wall clock
// (seconds since the Unix epoch) as the x coordinate.
func (c *Context) Record(name string, y float64) {
	c.RecordAt(name, nowSeconds(), y)
}

// RecordAt appends a sample with an explicit x coordinate.
func (c *Context) RecordAt(name string, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics[name] = append(c.metrics[name], Point{X: x, Y: y})
}

// RecordValues appends one sample per metric, all sharing a single
// wall-clock timestamp.
func (c *Context) RecordValues(values map[string]float64) {
	x := nowSeconds()
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, y := range values {
		c.metrics[name] = append(c.metrics[name], Point{X: x, Y: y})
	}
}

// Checkpoint persists v under the task's key so a later run of the same
// configuration can pick up where this one left off. Each call overwrites
// the previous checkpoint. v must survive a JSON round trip.
func (c *Context) Checkpoint(v any) error {
	blob, err := codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint value: %w", err)
	}
	return c.checkpoints.Set(c, c.key, blob)
}

// CheckpointExists reports whether a checkpoint is stored for this task.
func (c *Context) CheckpointExists() (bool, error) {
	return c.checkpoints.Contains(c, c.key)
}

// Restore decodes the stored checkpoint into dest. When the configuration
// was never checkpointed it returns store.ErrNotFound.
func (c *Context) Restore(dest any) error {
	blob, err := c.checkpoints.Get(c, c.key)
	if err != nil {
		return err
	}
	if err := codec.Unmarshal(blob, dest); err != nil {
		return fmt.Errorf("failed to decode checkpoint value: %w", err)
	}
	return nil
}

// snapshotMetrics copies the recorded series so the result envelope owns
// its data even if the experiment keeps recording afterwards.
func (c *Context) snapshotMetrics() map[string]Series {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.metrics) == 0 {
		return nil
	}
	out := make(map[string]Series, len(c.metrics))
	for name, series := range c.metrics {
		out[name] = append(Series(nil), series...)
	}
	return out
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
