package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeplab/memento/value"
)

func TestCachedFuncMemoizes(t *testing.T) {
	ctx := context.Background()
	calls := 0
	double := NewCachedFunc(NewMemoryStore(), "double", func(ctx context.Context, args value.Value) (value.Value, error) {
		calls++
		n, _ := args.AsInt()
		return value.Int(n * 2), nil
	})

	out, err := double.Call(ctx, value.Int(21))
	require.NoError(t, err)
	n, ok := out.AsInt()
	require.True(t, ok)
	assert.Equal(t, 42, n)
	assert.Equal(t, 1, calls)

	// Second call with equal arguments is served from the store.
	out, err = double.Call(ctx, value.Int(21))
	require.NoError(t, err)
	n, _ = out.AsInt()
	assert.Equal(t, 42, n)
	assert.Equal(t, 1, calls)

	// Different arguments compute again.
	_, err = double.Call(ctx, value.Int(7))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedFuncForceRun(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fn := NewCachedFunc(NewMemoryStore(), "counter", func(ctx context.Context, args value.Value) (value.Value, error) {
		calls++
		return value.Int(calls), nil
	})

	out, err := fn.Call(ctx, value.Null())
	require.NoError(t, err)
	first, _ := out.AsInt()
	assert.Equal(t, 1, first)

	out, err = fn.Call(ctx, value.Null(), ForceRun())
	require.NoError(t, err)
	second, _ := out.AsInt()
	assert.Equal(t, 2, second, "ForceRun must recompute")

	// The recomputed value overwrote the entry.
	out, err = fn.Call(ctx, value.Null())
	require.NoError(t, err)
	third, _ := out.AsInt()
	assert.Equal(t, 2, third)
	assert.Equal(t, 2, calls)
}

func TestCachedFuncForceCache(t *testing.T) {
	ctx := context.Background()
	fn := NewCachedFunc(NewMemoryStore(), "strict", func(ctx context.Context, args value.Value) (value.Value, error) {
		t.Fatal("function must not run under ForceCache")
		return value.Value{}, nil
	})

	_, err := fn.Call(ctx, value.Int(1), ForceCache())
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestCachedFuncOptionsAreExclusive(t *testing.T) {
	fn := NewCachedFunc(NewMemoryStore(), "x", func(ctx context.Context, args value.Value) (value.Value, error) {
		return value.Null(), nil
	})
	_, err := fn.Call(context.Background(), value.Null(), ForceRun(), ForceCache())
	require.Error(t, err)
}

func TestCachedFuncDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")
	attempts := 0
	fn := NewCachedFunc(s, "flaky", func(ctx context.Context, args value.Value) (value.Value, error) {
		attempts++
		if attempts == 1 {
			return value.Value{}, boom
		}
		return value.Int(attempts), nil
	})

	_, err := fn.Call(ctx, value.Null())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len(), "failed calls must leave no entry")

	out, err := fn.Call(ctx, value.Null())
	require.NoError(t, err)
	n, _ := out.AsInt()
	assert.Equal(t, 2, n)
}

func TestNewCachedFuncPanicsOnMisuse(t *testing.T) {
	assert.Panics(t, func() { NewCachedFunc(NewMemoryStore(), "x", nil) })
	assert.Panics(t, func() {
		NewCachedFunc(NewMemoryStore(), "", func(ctx context.Context, args value.Value) (value.Value, error) {
			return value.Null(), nil
		})
	})
}
