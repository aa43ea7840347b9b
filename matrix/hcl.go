package matrix

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/sweeplab/memento/value"
)

// Sweep files declare matrices as labeled blocks:
//
//	matrix "speed_test" {
//	  depends_on = ["warmup"]
//
//	  parameters {
//	    p1 = [1, 2, 3]
//	    p2 = [4, 5, 6]
//	  }
//
//	  settings {
//	    debug = true
//	  }
//
//	  exclude {
//	    p1 = 3
//	    p2 = 6
//	  }
//	}

var matrixFileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "matrix", LabelNames: []string{"id"}},
	},
}

var matrixBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "depends_on"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameters"},
		{Type: "settings"},
		{Type: "exclude"},
	},
}

// LoadHCL reads every matrix block from an HCL sweep file.
func LoadHCL(path string) ([]Matrix, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeMatrices(file.Body)
}

// ParseHCL reads matrix blocks from HCL source text. The filename only
// decorates diagnostics.
func ParseHCL(src []byte, filename string) ([]Matrix, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return decodeMatrices(file.Body)
}

func decodeMatrices(body hcl.Body) ([]Matrix, error) {
	content, diags := body.Content(matrixFileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode matrix file: %w", diags)
	}

	matrices := make([]Matrix, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		m, err := decodeMatrixBlock(block)
		if err != nil {
			return nil, err
		}
		matrices = append(matrices, m)
	}
	return matrices, nil
}

func decodeMatrixBlock(block *hcl.Block) (Matrix, error) {
	m := Matrix{ID: block.Labels[0]}

	content, diags := block.Body.Content(matrixBodySchema)
	if diags.HasErrors() {
		return Matrix{}, fmt.Errorf("matrix %q: %w", m.ID, diags)
	}

	if attr, ok := content.Attributes["depends_on"]; ok {
		cv, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return Matrix{}, fmt.Errorf("matrix %q: failed to evaluate depends_on: %w", m.ID, diags)
		}
		deps, ok := value.FromCty(cv).AsStrings()
		if !ok {
			return Matrix{}, fmt.Errorf("matrix %q: depends_on must be a list of matrix ids", m.ID)
		}
		m.Dependencies = deps
	}

	var sawParameters, sawSettings bool
	for _, b := range content.Blocks {
		switch b.Type {
		case "parameters":
			if sawParameters {
				return Matrix{}, fmt.Errorf("matrix %q: only one parameters block is allowed", m.ID)
			}
			sawParameters = true
			params, err := decodeParameters(m.ID, b.Body)
			if err != nil {
				return Matrix{}, err
			}
			m.Parameters = params

		case "settings":
			if sawSettings {
				return Matrix{}, fmt.Errorf("matrix %q: only one settings block is allowed", m.ID)
			}
			sawSettings = true
			attrs, err := decodeAttrMap(m.ID, b.Body)
			if err != nil {
				return Matrix{}, err
			}
			m.Settings = attrs

		case "exclude":
			attrs, err := decodeAttrMap(m.ID, b.Body)
			if err != nil {
				return Matrix{}, err
			}
			m.Exclude = append(m.Exclude, Exclusion(attrs))
		}
	}

	return m, nil
}

// decodeParameters reads the parameters block. HCL hands attributes back
// as a map, so declaration order is recovered from source positions.
func decodeParameters(id string, body hcl.Body) ([]Param, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("matrix %q: failed to decode parameters: %w", id, diags)
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	params := make([]Param, 0, len(ordered))
	for _, a := range ordered {
		cv, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("matrix %q: failed to evaluate parameter %q: %w", id, a.Name, diags)
		}
		values, ok := value.FromCty(cv).AsSlice()
		if !ok {
			return nil, fmt.Errorf("matrix %q: parameter %q must be a list of values", id, a.Name)
		}
		params = append(params, Param{Name: a.Name, Values: values})
	}
	return params, nil
}

func decodeAttrMap(id string, body hcl.Body) (map[string]value.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("matrix %q: failed to decode block: %w", id, diags)
	}

	out := make(map[string]value.Value, len(attrs))
	for name, a := range attrs {
		cv, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("matrix %q: failed to evaluate %q: %w", id, name, diags)
		}
		out[name] = value.FromCty(cv)
	}
	return out, nil
}
