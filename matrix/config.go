package matrix

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/sweeplab/memento/value"
)

// Config is one immutable point of the expanded matrix: an assignment of
// a value to every parameter, plus the settings shared by the whole
// batch.
type Config struct {
	names      []string
	assignment map[string]value.Value
	settings   map[string]value.Value
}

// Names returns the parameter names in declaration order.
func (c *Config) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of parameters.
func (c *Config) Len() int {
	return len(c.names)
}

// Value returns the assignment for the named parameter.
func (c *Config) Value(name string) (value.Value, bool) {
	v, ok := c.assignment[name]
	return v, ok
}

// GetString returns the named parameter as a string.
func (c *Config) GetString(name string) (string, error) {
	v, err := c.get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("parameter %q is %s, not a string", name, v.Type())
	}
	return s, nil
}

// GetInt returns the named parameter as an integer.
func (c *Config) GetInt(name string) (int, error) {
	v, err := c.get(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("parameter %q is %s, not an integer", name, v.Type())
	}
	return n, nil
}

// GetFloat returns the named parameter as a float64.
func (c *Config) GetFloat(name string) (float64, error) {
	v, err := c.get(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, fmt.Errorf("parameter %q is %s, not a number", name, v.Type())
	}
	return f, nil
}

// GetBool returns the named parameter as a bool.
func (c *Config) GetBool(name string) (bool, error) {
	v, err := c.get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("parameter %q is %s, not a bool", name, v.Type())
	}
	return b, nil
}

// GetStrings returns the named parameter as a slice of strings.
func (c *Config) GetStrings(name string) ([]string, error) {
	v, err := c.get(name)
	if err != nil {
		return nil, err
	}
	ss, ok := v.AsStrings()
	if !ok {
		return nil, fmt.Errorf("parameter %q is %s, not a list of strings", name, v.Type())
	}
	return ss, nil
}

func (c *Config) get(name string) (value.Value, error) {
	v, ok := c.assignment[name]
	if !ok {
		return value.Value{}, fmt.Errorf("unknown parameter %q", name)
	}
	return v, nil
}

// Setting returns the named shared setting.
func (c *Config) Setting(name string) (value.Value, bool) {
	v, ok := c.settings[name]
	return v, ok
}

// Settings returns a copy of the shared settings map.
func (c *Config) Settings() map[string]value.Value {
	out := make(map[string]value.Value, len(c.settings))
	for k, v := range c.settings {
		out[k] = v
	}
	return out
}

// Decode unpacks the parameter assignment into a struct with cty-tagged
// fields. The struct must declare a field for every parameter.
func (c *Config) Decode(dest any) error {
	obj := c.paramsValue().Cty()
	if err := gocty.FromCtyValue(obj, dest); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}

// Equal reports whether two configurations carry the same assignments
// and the same settings. Parameter order does not participate.
func (c *Config) Equal(o *Config) bool {
	if c == nil || o == nil {
		return c == o
	}
	return valueMapsEqual(c.assignment, o.assignment) && valueMapsEqual(c.settings, o.settings)
}

func valueMapsEqual(a, b map[string]value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

// String renders the assignment in declaration order, for logs.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(c.assignment[name].String())
	}
	b.WriteByte('}')
	return b.String()
}

// ObjectValue converts the configuration into an algebra value: an
// object of the assignments with the settings nested under "settings".
// The reserved parameter name guarantees the attribute cannot collide.
func (c *Config) ObjectValue() value.Value {
	attrs := make(map[string]value.Value, len(c.assignment)+1)
	for k, v := range c.assignment {
		attrs[k] = v
	}
	attrs[SettingsName] = value.Object(c.settings)
	return value.Object(attrs)
}

func (c *Config) paramsValue() value.Value {
	attrs := make(map[string]value.Value, len(c.assignment))
	for k, v := range c.assignment {
		attrs[k] = v
	}
	return value.Object(attrs)
}

// CanonicalBytes returns a deterministic serialization of the
// configuration, independent of parameter declaration order. Cache keys
// are derived from these bytes, so the encoding must never change shape.
func (c *Config) CanonicalBytes() ([]byte, error) {
	envelope := value.Object(map[string]value.Value{
		"params":     c.paramsValue(),
		SettingsName: value.Object(c.settings),
	})
	b, err := envelope.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize configuration: %w", err)
	}
	return b, nil
}

type configJSON struct {
	Names    []string               `json:"names"`
	Params   map[string]value.Value `json:"params"`
	Settings map[string]value.Value `json:"settings,omitempty"`
}

// MarshalJSON implements json.Marshaler, keeping declaration order.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		Names:    c.names,
		Params:   c.assignment,
		Settings: c.settings,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Config) UnmarshalJSON(b []byte) error {
	var raw configJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	c.names = raw.Names
	c.assignment = raw.Params
	if c.assignment == nil {
		c.assignment = map[string]value.Value{}
	}
	c.settings = raw.Settings
	if c.settings == nil {
		c.settings = map[string]value.Value{}
	}
	return nil
}

// Configurations is the ordered result of expanding a matrix.
type Configurations struct {
	configs  []*Config
	settings map[string]value.Value
}

// Len returns the number of configurations.
func (cs *Configurations) Len() int {
	return len(cs.configs)
}

// At returns the i-th configuration in expansion order.
func (cs *Configurations) At(i int) *Config {
	return cs.configs[i]
}

// All returns the configurations in expansion order. The slice is a
// copy; the configurations are shared.
func (cs *Configurations) All() []*Config {
	out := make([]*Config, len(cs.configs))
	copy(out, cs.configs)
	return out
}

// Settings returns the settings shared by every configuration.
func (cs *Configurations) Settings() map[string]value.Value {
	out := make(map[string]value.Value, len(cs.settings))
	for k, v := range cs.settings {
		out[k] = v
	}
	return out
}
