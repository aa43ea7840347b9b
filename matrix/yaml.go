package matrix

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/sweeplab/memento/value"
)

// YAML sweep files mirror the HCL shape:
//
//	matrices:
//	  - id: speed_test
//	    depends_on: [warmup]
//	    parameters:
//	      p1: [1, 2, 3]
//	      p2: [4, 5, 6]
//	    settings:
//	      debug: true
//	    exclude:
//	      - p1: 3
//	        p2: 6

type yamlFile struct {
	Matrices []yamlMatrix `yaml:"matrices"`
}

type yamlMatrix struct {
	ID         string          `yaml:"id"`
	DependsOn  []string        `yaml:"depends_on"`
	Parameters yaml.MapSlice   `yaml:"parameters"`
	Settings   yaml.MapSlice   `yaml:"settings"`
	Exclude    []yaml.MapSlice `yaml:"exclude"`
}

// LoadYAML reads every matrix from a YAML sweep file.
func LoadYAML(path string) ([]Matrix, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}
	matrices, err := ParseYAML(src)
	if err != nil {
		return nil, fmt.Errorf("in YAML file %s: %w", path, err)
	}
	return matrices, nil
}

// ParseYAML reads matrices from YAML source text. Parameter declaration
// order is preserved, which is why the decoder works through
// yaml.MapSlice instead of plain maps.
func ParseYAML(src []byte) ([]Matrix, error) {
	var file yamlFile
	if err := yaml.Unmarshal(src, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	matrices := make([]Matrix, 0, len(file.Matrices))
	for _, raw := range file.Matrices {
		m, err := decodeYAMLMatrix(raw)
		if err != nil {
			return nil, err
		}
		matrices = append(matrices, m)
	}
	return matrices, nil
}

func decodeYAMLMatrix(raw yamlMatrix) (Matrix, error) {
	m := Matrix{ID: raw.ID, Dependencies: raw.DependsOn}

	for _, item := range raw.Parameters {
		name, ok := item.Key.(string)
		if !ok {
			return Matrix{}, fmt.Errorf("matrix %q: parameter names must be strings, got %T", m.ID, item.Key)
		}
		list, ok := item.Value.([]any)
		if !ok {
			return Matrix{}, fmt.Errorf("matrix %q: parameter %q must be a list of values", m.ID, name)
		}
		values := make([]value.Value, len(list))
		for i, elem := range list {
			v, err := yamlValue(elem)
			if err != nil {
				return Matrix{}, fmt.Errorf("matrix %q: parameter %q value %d: %w", m.ID, name, i, err)
			}
			values[i] = v
		}
		m.Parameters = append(m.Parameters, Param{Name: name, Values: values})
	}

	if len(raw.Settings) > 0 {
		settings, err := yamlValueMap(raw.Settings)
		if err != nil {
			return Matrix{}, fmt.Errorf("matrix %q: in settings: %w", m.ID, err)
		}
		m.Settings = settings
	}

	for i, ex := range raw.Exclude {
		attrs, err := yamlValueMap(ex)
		if err != nil {
			return Matrix{}, fmt.Errorf("matrix %q: in exclude %d: %w", m.ID, i, err)
		}
		m.Exclude = append(m.Exclude, Exclusion(attrs))
	}

	return m, nil
}

func yamlValueMap(items yaml.MapSlice) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(items))
	for _, item := range items {
		name, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("keys must be strings, got %T", item.Key)
		}
		v, err := yamlValue(item.Value)
		if err != nil {
			return nil, fmt.Errorf("at key %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// yamlValue converts a decoded YAML node into an algebra value. yaml.v2
// hands nested mappings back with interface{} keys, so those are
// restrung to string keys first.
func yamlValue(raw any) (value.Value, error) {
	native, err := yamlNative(raw)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromGo(native)
}

func yamlNative(raw any) (any, error) {
	switch tv := raw.(type) {
	case map[any]any:
		out := make(map[string]any, len(tv))
		for k, v := range tv {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("keys must be strings, got %T", k)
			}
			nv, err := yamlNative(v)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case yaml.MapSlice:
		out := make(map[string]any, len(tv))
		for _, item := range tv {
			key, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("keys must be strings, got %T", item.Key)
			}
			nv, err := yamlNative(item.Value)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(tv))
		for i, v := range tv {
			nv, err := yamlNative(v)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return raw, nil
	}
}
