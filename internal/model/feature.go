package model

import (
	"fmt"

	"github.com/drakos74/go-ex-machina/xmath"
)

// Feature defines a measured material property.
type Feature string

const (
	// Tensile is the tensile strength in kN/m.
	Tensile Feature = "Tensile Strength (kN/m)"
	// Puncture is the puncture resistance in N.
	Puncture Feature = "Puncture Resistance (N)"
	// Permittivity is the permittivity in s⁻¹.
	Permittivity Feature = "Permittivity (s⁻¹)"
	// Filtration is the filtration efficiency in %.
	Filtration Feature = "Filtration Efficiency (%)"
	// Recycled is the recycled content in %.
	Recycled Feature = "Recycled Content (%)"
	// Biobased is the biobased content in %.
	Biobased Feature = "Biobased Content (%)"
	// UV is the uv strength retained after 500h in %.
	UV Feature = "UV Strength Retained (% after 500h)"
	// MaterialCost is the material cost in PHP/m².
	MaterialCost Feature = "Material Cost (PHP/m²)"
	// InstallCost is the installation cost in PHP/m².
	InstallCost Feature = "Installation Cost (PHP/m²)"
)

// Features is the fixed order of the material properties in a feature vector.
var Features = []Feature{
	Tensile,
	Puncture,
	Permittivity,
	Filtration,
	Recycled,
	Biobased,
	UV,
	MaterialCost,
	InstallCost,
}

// NumFeatures is the width of a raw feature vector.
var NumFeatures = len(Features)

// Column returns the name of the cluster column derived from the feature.
func (f Feature) Column() string {
	return clusterColumns[f]
}

var clusterColumns = map[Feature]string{
	Tensile:      "Tensile Cluster",
	Puncture:     "Puncture Cluster",
	Permittivity: "Permittivity Cluster",
	Filtration:   "Filtration Cluster",
	Recycled:     "Recycled Cluster",
	Biobased:     "Biobased Cluster",
	UV:           "UV Cluster",
	MaterialCost: "Material Cost Cluster",
	InstallCost:  "Install Cost Cluster",
}

// ClusterColumns returns the cluster column names in feature order.
func ClusterColumns() []string {
	cc := make([]string, len(Features))
	for i, f := range Features {
		cc[i] = f.Column()
	}
	return cc
}

// FeatureNames returns the raw feature column names in feature order.
func FeatureNames() []string {
	ff := make([]string, len(Features))
	for i, f := range Features {
		ff[i] = string(f)
	}
	return ff
}

// FeatureVector is an ordered set of measurements, one per Features entry.
type FeatureVector struct {
	values xmath.Vector
}

// NewFeatureVector captures the given values.
// The values are copied, so later changes to the input do not affect the vector.
func NewFeatureVector(values []float64) (FeatureVector, error) {
	if len(values) != NumFeatures {
		return FeatureVector{}, fmt.Errorf("expected %d features but got %d: %w", NumFeatures, len(values), ValidationErr)
	}
	return FeatureVector{values: xmath.Vec(len(values)).With(values...)}, nil
}

// Values returns a copy of the measurements.
func (v FeatureVector) Values() []float64 {
	return v.values.Copy()
}

// Map applies op to the measurements of the given features and returns the new vector.
func (v FeatureVector) Map(op xmath.Op, features ...Feature) FeatureVector {
	mask := xmath.Vec(len(v.values))
	for i, f := range Features {
		for _, ff := range features {
			if f == ff {
				mask[i] = 1
			}
		}
	}
	return FeatureVector{values: v.values.Dop(func(x, m float64) float64 {
		if m == 0 {
			return x
		}
		return op(x)
	}, mask)}
}

// Get returns the measurement for the given feature.
func (v FeatureVector) Get(f Feature) float64 {
	for i, ff := range Features {
		if ff == f {
			return v.values[i]
		}
	}
	return 0
}

// Named returns the measurements keyed by feature name.
func (v FeatureVector) Named() map[string]float64 {
	named := make(map[string]float64, len(v.values))
	for i, f := range Features {
		named[string(f)] = v.values[i]
	}
	return named
}
