package matrix

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandOne(t *testing.T, m Matrix) *Config {
	t.Helper()
	cfgs, err := Expand(m)
	require.NoError(t, err)
	require.Equal(t, 1, cfgs.Len())
	return cfgs.At(0)
}

func TestConfigTypedAccessors(t *testing.T) {
	cfg := expandOne(t, Matrix{
		Parameters: []Param{
			P("name", "resnet"),
			P("epochs", 10),
			P("rate", 0.01),
			P("shuffle", true),
			P("tags", []string{"a", "b"}),
		},
	})

	name, err := cfg.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "resnet", name)

	epochs, err := cfg.GetInt("epochs")
	require.NoError(t, err)
	assert.Equal(t, 10, epochs)

	rate, err := cfg.GetFloat("rate")
	require.NoError(t, err)
	assert.Equal(t, 0.01, rate)

	shuffle, err := cfg.GetBool("shuffle")
	require.NoError(t, err)
	assert.True(t, shuffle)

	tags, err := cfg.GetStrings("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	// Wrong type and unknown name both fail loudly.
	_, err = cfg.GetInt("name")
	require.Error(t, err)
	_, err = cfg.GetString("missing")
	require.Error(t, err)
}

func TestConfigDecode(t *testing.T) {
	cfg := expandOne(t, Matrix{
		Parameters: []Param{
			P("epochs", 5),
			P("model", "mlp"),
		},
	})

	var dest struct {
		Epochs int    `cty:"epochs"`
		Model  string `cty:"model"`
	}
	require.NoError(t, cfg.Decode(&dest))
	assert.Equal(t, 5, dest.Epochs)
	assert.Equal(t, "mlp", dest.Model)
}

func TestConfigStringRendersDeclarationOrder(t *testing.T) {
	cfg := expandOne(t, Matrix{
		Parameters: []Param{
			P("zeta", 1),
			P("alpha", "x"),
		},
	})
	assert.Equal(t, `{zeta=1, alpha="x"}`, cfg.String())
}

func TestConfigJSONRoundTrip(t *testing.T) {
	cfg := expandOne(t, Matrix{
		Parameters: []Param{
			P("zeta", 1),
			P("alpha", "x"),
		},
		Settings: ValueMap(map[string]any{"debug": true}),
	})

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, cfg.Names(), back.Names(), "declaration order lost in round trip")
	assert.True(t, cfg.Equal(&back))
}

func TestConfigCanonicalBytesDeterministic(t *testing.T) {
	build := func(params []Param) *Config {
		return expandOne(t, Matrix{
			Parameters: params,
			Settings:   ValueMap(map[string]any{"seed": 7}),
		})
	}

	a := build([]Param{P("p1", 1), P("p2", "x")})
	b := build([]Param{P("p2", "x"), P("p1", 1)})

	ab, err := a.CanonicalBytes()
	require.NoError(t, err)
	bb, err := b.CanonicalBytes()
	require.NoError(t, err)
	assert.Equal(t, ab, bb, "canonical bytes must not depend on declaration order")

	c := build([]Param{P("p1", 2), P("p2", "x")})
	cb, err := c.CanonicalBytes()
	require.NoError(t, err)
	assert.NotEqual(t, ab, cb, "different assignments must serialize differently")
}

func TestConfigEqualIncludesSettings(t *testing.T) {
	base := Matrix{Parameters: []Param{P("p1", 1)}}

	plain := expandOne(t, base)

	withSettings := base
	withSettings.Settings = ValueMap(map[string]any{"debug": true})
	tagged := expandOne(t, withSettings)

	assert.False(t, plain.Equal(tagged))
	assert.True(t, plain.Equal(plain))
}

func TestConfigObjectValue(t *testing.T) {
	cfg := expandOne(t, Matrix{
		Parameters: []Param{P("p1", 1)},
		Settings:   ValueMap(map[string]any{"debug": true}),
	})

	obj, ok := cfg.ObjectValue().AsMap()
	require.True(t, ok)

	p1, ok := obj["p1"].AsInt()
	require.True(t, ok)
	assert.Equal(t, 1, p1)

	settings, ok := obj[SettingsName].AsMap()
	require.True(t, ok)
	debug, ok := settings["debug"].AsBool()
	require.True(t, ok)
	assert.True(t, debug)
}
