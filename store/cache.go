package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/sweeplab/memento/value"
)

// codec is sonic in its encoding/json-compatible configuration; blob
// layouts must stay readable by the standard library.
var codec = sonic.ConfigStd

// Func is a unit of expensive work keyed by its arguments.
type Func func(ctx context.Context, args value.Value) (value.Value, error)

// CachedFunc memoizes a Func through a Store. Keys derive from the
// wrapper's identity and the canonical form of the arguments, so equal
// arguments hit the same entry in every process.
type CachedFunc struct {
	store    Store
	identity string
	fn       Func
}

// NewCachedFunc wraps fn. The identity must be stable across processes;
// it scopes this function's entries inside a shared store.
func NewCachedFunc(s Store, identity string, fn Func) *CachedFunc {
	if fn == nil {
		panic("store: cached function must be non-nil")
	}
	if identity == "" {
		panic("store: cached function identity must be non-empty")
	}
	return &CachedFunc{store: s, identity: identity, fn: fn}
}

// CallOption adjusts a single Call.
type CallOption func(*callOptions)

type callOptions struct {
	forceRun   bool
	forceCache bool
}

// ForceRun invokes the function even on a cache hit and overwrites the
// stored value.
func ForceRun() CallOption {
	return func(o *callOptions) {
		o.forceRun = true
	}
}

// ForceCache never invokes the function; a missing entry surfaces as
// ErrCacheMiss.
func ForceCache() CallOption {
	return func(o *callOptions) {
		o.forceCache = true
	}
}

// Key returns the store key Call uses for the given arguments.
func (c *CachedFunc) Key(args value.Value) (Key, error) {
	payload, err := args.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize arguments: %w", err)
	}
	return DeriveKey(c.identity, payload), nil
}

// Call returns the cached value for args, invoking and memoizing the
// wrapped function on a miss. The function's own error is returned
// untouched and nothing is stored for it.
func (c *CachedFunc) Call(ctx context.Context, args value.Value, opts ...CallOption) (value.Value, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.forceRun && o.forceCache {
		return value.Value{}, errors.New("ForceRun and ForceCache are mutually exclusive")
	}

	key, err := c.Key(args)
	if err != nil {
		return value.Value{}, err
	}

	if !o.forceRun {
		blob, err := c.store.Get(ctx, key)
		switch {
		case err == nil:
			var v value.Value
			if err := codec.Unmarshal(blob, &v); err != nil {
				return value.Value{}, fmt.Errorf("failed to decode cached value: %w", err)
			}
			return v, nil
		case errors.Is(err, ErrNotFound):
			if o.forceCache {
				return value.Value{}, fmt.Errorf("%w for arguments %s", ErrCacheMiss, args)
			}
		default:
			return value.Value{}, err
		}
	}

	out, err := c.fn(ctx, args)
	if err != nil {
		return value.Value{}, err
	}

	blob, err := codec.Marshal(out)
	if err != nil {
		return value.Value{}, fmt.Errorf("failed to encode value for caching: %w", err)
	}
	if err := c.store.Set(ctx, key, blob); err != nil {
		return value.Value{}, err
	}
	return out, nil
}
