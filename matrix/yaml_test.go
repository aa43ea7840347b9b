package matrix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sweepYAML = `
matrices:
  - id: warmup
    parameters:
      rounds: [1, 2]
  - id: speed_test
    depends_on: [warmup]
    parameters:
      zeta: [1, 2, 3]
      alpha: [4, 5, 6]
    settings:
      debug: true
      nested:
        retries: 2
    exclude:
      - zeta: 3
        alpha: 6
`

func TestParseYAML(t *testing.T) {
	matrices, err := ParseYAML([]byte(sweepYAML))
	require.NoError(t, err)
	require.Len(t, matrices, 2)

	speed := matrices[1]
	assert.Equal(t, "speed_test", speed.ID)
	assert.Equal(t, []string{"warmup"}, speed.Dependencies)

	// zeta is declared before alpha; alphabetical order would flip them.
	require.Len(t, speed.Parameters, 2)
	assert.Equal(t, "zeta", speed.Parameters[0].Name)
	assert.Equal(t, "alpha", speed.Parameters[1].Name)

	nested, ok := speed.Settings["nested"]
	require.True(t, ok)
	m, ok := nested.AsMap()
	require.True(t, ok)
	retries, ok := m["retries"].AsInt()
	require.True(t, ok)
	assert.Equal(t, 2, retries)

	require.Len(t, speed.Exclude, 1)

	cfgs, err := Expand(speed)
	require.NoError(t, err)
	assert.Equal(t, 8, cfgs.Len())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sweepYAML), 0o644))

	matrices, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Len(t, matrices, 2)
}

func TestParseYAMLRejectsMalformedInput(t *testing.T) {
	_, err := ParseYAML([]byte("matrices: [}"))
	require.Error(t, err)

	_, err = ParseYAML([]byte(`
matrices:
  - id: x
    parameters:
      p1: 1
`))
	require.Error(t, err, "scalar parameter values must be rejected")
}
