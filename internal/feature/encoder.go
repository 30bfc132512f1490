package feature

import (
	"fmt"
	"math"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/rs/zerolog/log"
)

// SkewedFeatures are the long-tailed properties that can be log1p transformed.
var SkewedFeatures = []model.Feature{
	model.Tensile,
	model.Puncture,
	model.MaterialCost,
	model.InstallCost,
}

// Skew applies log1p to the skewed features of the vector.
// Negative values are mapped to 0, as log1p is only defined on the non-negative range here.
func Skew(v model.FeatureVector) model.FeatureVector {
	return v.Map(func(x float64) float64 {
		return math.Log1p(math.Max(x, 0))
	}, SkewedFeatures...)
}

// OneHot expands the cluster columns into `{column}_{symbol}` indicators.
func OneHot(clusters map[string]string) map[string]float64 {
	encoded := make(map[string]float64, len(clusters))
	for column, symbol := range clusters {
		encoded[model.OneHotColumn(column, symbol)] = 1
	}
	return encoded
}

// Encoder turns requests into fixed width vectors following the training schema.
type Encoder struct {
	mode     model.Mode
	skew     bool
	schema   Schema
	inputDim int
}

// NewEncoder creates an encoder for the given deployment.
// The skew flag only applies to the feature mode.
func NewEncoder(mode model.Mode, skew bool, schema Schema, inputDim int) *Encoder {
	return &Encoder{
		mode:     mode,
		skew:     skew && mode == model.FeatureMode,
		schema:   schema,
		inputDim: inputDim,
	}
}

// Schema returns the training schema of the encoder.
func (e *Encoder) Schema() Schema {
	return e.schema
}

// EncodeFeatures encodes a raw feature vector.
// In cluster mode the properties are bucketed first.
func (e *Encoder) EncodeFeatures(v model.FeatureVector) ([]float64, error) {
	switch e.mode {
	case model.ClusterMode:
		return e.EncodeClusters(AssignAll(v))
	case model.FeatureMode:
		if e.skew {
			v = Skew(v)
		}
		return AlignTo(v.Named(), e.schema, e.inputDim)
	}
	return nil, fmt.Errorf("unknown mode '%s': %w", e.mode, model.InternalErr)
}

// EncodeClusters encodes a cluster mapping.
// All cluster columns must be present with a symbol in C1..C5;
// symbols never seen in training yield all-zero columns.
func (e *Encoder) EncodeClusters(clusters map[string]string) ([]float64, error) {
	if e.mode != model.ClusterMode {
		return nil, fmt.Errorf("cluster input is not supported in '%s' mode: %w", e.mode, model.ValidationErr)
	}
	for _, column := range model.ClusterColumns() {
		symbol, ok := clusters[column]
		if !ok {
			return nil, fmt.Errorf("missing cluster '%s': %w", column, model.ValidationErr)
		}
		if !model.Cluster(symbol).Valid() {
			return nil, fmt.Errorf("invalid symbol '%s' for cluster '%s': %w", symbol, column, model.ValidationErr)
		}
	}
	encoded := OneHot(clusters)
	for column := range encoded {
		if _, ok := e.schema.Index(column); !ok {
			log.Debug().Str("column", column).Msg("dropping column unknown to schema")
		}
	}
	return AlignTo(encoded, e.schema, e.inputDim)
}
