package feature

import (
	"fmt"
	"sort"

	"github.com/drakos74/geotextile/internal/model"
)

// Schema is the ordered list of encoded columns recorded at training time.
type Schema struct {
	Columns []string `json:"columns"`
}

// NewSchema creates a schema for the given columns.
func NewSchema(columns ...string) Schema {
	cc := make([]string, len(columns))
	copy(cc, columns)
	return Schema{Columns: cc}
}

// FeatureSchema is the schema of the raw feature mode.
func FeatureSchema() Schema {
	return NewSchema(model.FeatureNames()...)
}

// ClusterSchema derives the one-hot schema from the cluster assignments of a dataset.
// Only categories that occur are expanded, ordered by cluster column and then by symbol.
func ClusterSchema(rows []map[string]string) Schema {
	columns := make([]string, 0)
	for _, column := range model.ClusterColumns() {
		present := make(map[string]struct{})
		for _, row := range rows {
			if symbol, ok := row[column]; ok {
				present[symbol] = struct{}{}
			}
		}
		symbols := make([]string, 0, len(present))
		for s := range present {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		for _, s := range symbols {
			columns = append(columns, model.OneHotColumn(column, s))
		}
	}
	return Schema{Columns: columns}
}

// Width is the number of columns.
func (s Schema) Width() int {
	return len(s.Columns)
}

// Index returns the position of the column.
func (s Schema) Index(column string) (int, bool) {
	for i, c := range s.Columns {
		if c == column {
			return i, true
		}
	}
	return 0, false
}

// Align projects the named values onto the schema.
// Columns missing from the input are zero, columns unknown to the schema are dropped
// and the result follows the schema order.
func Align(named map[string]float64, schema Schema) []float64 {
	out := make([]float64, schema.Width())
	for i, c := range schema.Columns {
		if v, ok := named[c]; ok {
			out[i] = v
		}
	}
	return out
}

// AlignTo aligns the values and checks the result against the expected model input width.
func AlignTo(named map[string]float64, schema Schema, inputDim int) ([]float64, error) {
	out := Align(named, schema)
	if len(out) != inputDim {
		return nil, fmt.Errorf("aligned vector has %d columns but model expects %d: %w", len(out), inputDim, model.SchemaMismatchErr)
	}
	return out, nil
}
