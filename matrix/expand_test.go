package matrix

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/sweeplab/memento/value"
)

func TestExpandOrderLastParameterFastest(t *testing.T) {
	m := Matrix{Parameters: []Param{
		P("p1", 1, 2),
		P("p2", "a", "b", "c"),
	}}

	cfgs, err := Expand(m)
	require.NoError(t, err)
	require.Equal(t, 6, cfgs.Len())

	want := []struct {
		p1 int
		p2 string
	}{
		{1, "a"}, {1, "b"}, {1, "c"},
		{2, "a"}, {2, "b"}, {2, "c"},
	}
	for i, w := range want {
		cfg := cfgs.At(i)
		p1, err := cfg.GetInt("p1")
		require.NoError(t, err)
		p2, err := cfg.GetString("p2")
		require.NoError(t, err)
		assert.Equal(t, w.p1, p1, "config %d", i)
		assert.Equal(t, w.p2, p2, "config %d", i)
	}
}

func TestExpandExclusionRemovesMatches(t *testing.T) {
	m := Matrix{
		Parameters: []Param{
			P("p1", 1, 2, 3),
			P("p2", 4, 5, 6),
		},
		Exclude: []Exclusion{E("p1", 3, "p2", 6)},
	}

	cfgs, err := Expand(m)
	require.NoError(t, err)
	assert.Equal(t, 8, cfgs.Len())

	for _, cfg := range cfgs.All() {
		p1, err := cfg.GetInt("p1")
		require.NoError(t, err)
		p2, err := cfg.GetInt("p2")
		require.NoError(t, err)
		assert.False(t, p1 == 3 && p2 == 6, "excluded combination survived expansion")
	}
}

func TestExpandExclusionMatchesAnyPredicate(t *testing.T) {
	m := Matrix{
		Parameters: []Param{
			P("p1", 1, 2),
			P("p2", 1, 2),
		},
		Exclude: []Exclusion{
			E("p1", 1),
			E("p2", 2),
		},
	}

	// p1=1 kills two configs, p2=2 kills one more; only {2,1} survives.
	cfgs, err := Expand(m)
	require.NoError(t, err)
	require.Equal(t, 1, cfgs.Len())

	p1, err := cfgs.At(0).GetInt("p1")
	require.NoError(t, err)
	p2, err := cfgs.At(0).GetInt("p2")
	require.NoError(t, err)
	assert.Equal(t, 2, p1)
	assert.Equal(t, 1, p2)
}

func TestExpandExclusionUnknownParameterMatchesNothing(t *testing.T) {
	m := Matrix{
		Parameters: []Param{P("p1", 1, 2)},
		Exclude:    []Exclusion{E("no_such", 1)},
	}

	cfgs, err := Expand(m)
	require.NoError(t, err)
	assert.Equal(t, 2, cfgs.Len())
}

func TestExpandSettingsSharedNotExpanded(t *testing.T) {
	m := Matrix{
		Parameters: []Param{P("p1", 1, 2)},
		Settings:   ValueMap(map[string]any{"debug": true, "tag": "run-7"}),
	}

	cfgs, err := Expand(m)
	require.NoError(t, err)
	require.Equal(t, 2, cfgs.Len(), "settings must not contribute to the product")

	for _, cfg := range cfgs.All() {
		debug, ok := cfg.Setting("debug")
		require.True(t, ok)
		b, ok := debug.AsBool()
		require.True(t, ok)
		assert.True(t, b)

		_, ok = cfg.Value("debug")
		assert.False(t, ok, "settings must not appear as parameters")
	}
}

func TestExpandValidation(t *testing.T) {
	_, err := Expand(Matrix{})
	require.ErrorIs(t, err, ErrNoParameters)

	_, err = Expand(Matrix{Parameters: []Param{P("settings", 1)}})
	require.ErrorIs(t, err, ErrReservedName)

	_, err = Expand(Matrix{Parameters: []Param{P("p1", 1), P("p1", 2)}})
	require.ErrorIs(t, err, ErrDuplicateParameter)

	_, err = Expand(Matrix{Parameters: []Param{{Name: "p1"}}})
	require.ErrorIs(t, err, ErrNoValues)

	// Errors from an identified matrix name the matrix.
	_, err = Expand(Matrix{ID: "speed_test"})
	require.ErrorIs(t, err, ErrNoParameters)
	assert.Contains(t, err.Error(), "speed_test")
}

func TestExpandDeterministic(t *testing.T) {
	m := Matrix{
		Parameters: []Param{
			P("p1", 1, 2, 3),
			P("p2", "x", "y"),
		},
		Exclude: []Exclusion{E("p1", 2, "p2", "y")},
	}

	first, err := Expand(m)
	require.NoError(t, err)
	second, err := Expand(m)
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.True(t, first.At(i).Equal(second.At(i)), "config %d differs between expansions", i)
	}
}

// TestExpandProperties drives random matrices through Expand and checks
// the cardinality, ordering and exclusion invariants hold for all of them.
func TestExpandProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)

		paramCount := rapid.IntRange(1, 4).Draw(t, "paramCount")
		params := make([]Param, paramCount)
		sizes := make([]int, paramCount)
		total := 1
		for i := range params {
			size := rapid.IntRange(1, 4).Draw(t, fmt.Sprintf("size%d", i))
			values := make([]value.Value, size)
			for j := range values {
				values[j] = value.Int(j)
			}
			params[i] = Param{Name: fmt.Sprintf("p%d", i), Values: values}
			sizes[i] = size
			total *= size
		}

		cfgs, err := Expand(Matrix{Parameters: params})
		chk.NoError(err)
		chk.Equal(total, cfgs.Len())

		// Every index decomposes like an odometer with the last
		// parameter as the fastest digit.
		for idx := 0; idx < total; idx++ {
			rem := idx
			for i := paramCount - 1; i >= 0; i-- {
				got, ok := cfgs.At(idx).Value(params[i].Name)
				chk.True(ok)
				n, ok := got.AsInt()
				chk.True(ok)
				chk.Equal(rem%sizes[i], n)
				rem /= sizes[i]
			}
		}

		// Excluding one full assignment removes exactly that config.
		target := rapid.IntRange(0, total-1).Draw(t, "target")
		excl := Exclusion{}
		for _, p := range params {
			v, ok := cfgs.At(target).Value(p.Name)
			chk.True(ok)
			excl[p.Name] = v
		}
		reduced, err := Expand(Matrix{Parameters: params, Exclude: []Exclusion{excl}})
		chk.NoError(err)
		chk.Equal(total-1, reduced.Len())
		for i := 0; i < reduced.Len(); i++ {
			chk.False(reduced.At(i).Equal(cfgs.At(target)))
		}
	})
}
