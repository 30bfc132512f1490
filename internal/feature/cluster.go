package feature

import (
	"fmt"

	"github.com/drakos74/geotextile/internal/model"
)

// Breakpoints are the inclusive upper bounds of the first four clusters of a property.
// Anything above the last bound falls into C5.
type Breakpoints [4]float64

// Thresholds holds the expert-defined breakpoints for every material property.
var Thresholds = map[model.Feature]Breakpoints{
	model.Tensile:      {30, 60, 120, 200},
	model.Puncture:     {600, 1000, 1400, 1800},
	model.Permittivity: {0.2, 0.5, 1.0, 1.5},
	model.Filtration:   {75, 85, 90, 95},
	model.Recycled:     {0, 30, 60, 99},
	model.Biobased:     {0, 30, 70, 99},
	model.UV:           {30, 50, 70, 85},
	model.MaterialCost: {100, 200, 400, 700},
	model.InstallCost:  {50, 100, 200, 350},
}

// Bucket returns the cluster of the value for the given breakpoints.
func (b Breakpoints) Bucket(x float64) model.Cluster {
	for i, upper := range b {
		if x <= upper {
			return model.ClusterAt(i)
		}
	}
	return model.C5
}

// Assign maps the value of a property to its cluster.
func Assign(f model.Feature, x float64) (model.Cluster, error) {
	bp, ok := Thresholds[f]
	if !ok {
		return "", fmt.Errorf("no thresholds for feature '%s': %w", f, model.ValidationErr)
	}
	return bp.Bucket(x), nil
}

// AssignAll maps every property of the vector to its cluster, keyed by cluster column name.
func AssignAll(v model.FeatureVector) map[string]string {
	clusters := make(map[string]string, model.NumFeatures)
	for _, f := range model.Features {
		clusters[f.Column()] = string(Thresholds[f].Bucket(v.Get(f)))
	}
	return clusters
}
