package matrix

import "github.com/sweeplab/memento/value"

// Expand produces every configuration the matrix describes: the
// cartesian product of all parameter values, in declaration order with
// the last parameter varying fastest, minus the combinations matched by
// any exclusion. Expansion is pure; calling it twice yields equal
// configurations in the same order.
func Expand(m Matrix) (*Configurations, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	names := make([]string, len(m.Parameters))
	total := 1
	for i, p := range m.Parameters {
		names[i] = p.Name
		total *= len(p.Values)
	}

	settings := make(map[string]value.Value, len(m.Settings))
	for k, v := range m.Settings {
		settings[k] = v
	}

	configs := make([]*Config, 0, total)
	for idx := 0; idx < total; idx++ {
		assignment := make(map[string]value.Value, len(m.Parameters))
		rem := idx
		for i := len(m.Parameters) - 1; i >= 0; i-- {
			p := m.Parameters[i]
			assignment[p.Name] = p.Values[rem%len(p.Values)]
			rem /= len(p.Values)
		}
		cfg := &Config{names: names, assignment: assignment, settings: settings}
		if excluded(cfg, m.Exclude) {
			continue
		}
		configs = append(configs, cfg)
	}

	return &Configurations{configs: configs, settings: settings}, nil
}

func excluded(cfg *Config, exclusions []Exclusion) bool {
	for _, e := range exclusions {
		if e.matches(cfg) {
			return true
		}
	}
	return false
}

func (e Exclusion) matches(cfg *Config) bool {
	for name, want := range e {
		got, ok := cfg.Value(name)
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}
