package matrix

import (
	"errors"
	"fmt"

	"github.com/sweeplab/memento/value"
)

// SettingsName is reserved: settings ride along with every configuration
// under this name, so no parameter may claim it.
const SettingsName = "settings"

var (
	// ErrNoParameters reports a matrix declared without parameters.
	ErrNoParameters = errors.New("matrix has no parameters")
	// ErrReservedName reports a parameter that claims the settings name.
	ErrReservedName = errors.New(`"settings" is a reserved parameter name`)
	// ErrDuplicateParameter reports two parameters sharing a name.
	ErrDuplicateParameter = errors.New("duplicate parameter name")
	// ErrNoValues reports a parameter declared without values.
	ErrNoValues = errors.New("parameter has no values")
)

// Param is one named axis of the matrix. Its position in
// Matrix.Parameters defines its position in the expansion order.
type Param struct {
	Name   string
	Values []value.Value
}

// Exclusion is a predicate over configurations. It matches a
// configuration when every value it names equals the configuration's
// value for that name; names the configuration does not carry never
// match.
type Exclusion map[string]value.Value

// Matrix describes one batch of experiment configurations. ID and
// Dependencies only matter when the matrix takes part in a multi-matrix
// run; a standalone matrix can leave both empty.
type Matrix struct {
	ID           string
	Dependencies []string
	Parameters   []Param
	Settings     map[string]value.Value
	Exclude      []Exclusion
}

// P builds a Param from Go literals. It panics when a value falls
// outside the serializable algebra; use value.FromGo to convert with an
// error instead.
func P(name string, values ...any) Param {
	vs := make([]value.Value, len(values))
	for i, raw := range values {
		v, err := value.FromGo(raw)
		if err != nil {
			panic(fmt.Sprintf("matrix: parameter %q value %d: %v", name, i, err))
		}
		vs[i] = v
	}
	return Param{Name: name, Values: vs}
}

// E builds an Exclusion from name/value pairs, e.g. E("p1", 3, "p2", 6).
// It panics on an odd argument count, a non-string name or a value
// outside the algebra.
func E(pairs ...any) Exclusion {
	if len(pairs)%2 != 0 {
		panic("matrix: E requires name/value pairs")
	}
	e := make(Exclusion, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("matrix: E pair %d: name must be a string, got %T", i/2, pairs[i]))
		}
		v, err := value.FromGo(pairs[i+1])
		if err != nil {
			panic(fmt.Sprintf("matrix: E pair %q: %v", name, err))
		}
		e[name] = v
	}
	return e
}

// ValueMap converts a map of Go literals into algebra values, for use as
// Matrix.Settings. It panics on unsupported values.
func ValueMap(m map[string]any) map[string]value.Value {
	out := make(map[string]value.Value, len(m))
	for k, raw := range m {
		v, err := value.FromGo(raw)
		if err != nil {
			panic(fmt.Sprintf("matrix: setting %q: %v", k, err))
		}
		out[k] = v
	}
	return out
}

// validate checks the structural rules shared by Expand and the loaders.
func (m Matrix) validate() error {
	if len(m.Parameters) == 0 {
		return m.wrap(ErrNoParameters)
	}
	seen := make(map[string]struct{}, len(m.Parameters))
	for _, p := range m.Parameters {
		if p.Name == SettingsName {
			return m.wrap(ErrReservedName)
		}
		if _, dup := seen[p.Name]; dup {
			return m.wrap(fmt.Errorf("%w: %q", ErrDuplicateParameter, p.Name))
		}
		seen[p.Name] = struct{}{}
		if len(p.Values) == 0 {
			return m.wrap(fmt.Errorf("%w: %q", ErrNoValues, p.Name))
		}
	}
	return nil
}

func (m Matrix) wrap(err error) error {
	if m.ID == "" {
		return err
	}
	return fmt.Errorf("matrix %q: %w", m.ID, err)
}
