package feature

import (
	"fmt"
	"testing"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_Boundaries(t *testing.T) {
	for _, f := range model.Features {
		bp := Thresholds[f]
		for i, upper := range bp {
			t.Run(fmt.Sprintf("%s-%v", f, upper), func(t *testing.T) {
				at, err := Assign(f, upper)
				require.NoError(t, err)
				assert.Equal(t, model.ClusterAt(i), at)

				above, err := Assign(f, upper+0.01)
				require.NoError(t, err)
				assert.Equal(t, model.ClusterAt(i+1), above)
			})
		}
	}
}

func TestAssign_Tensile(t *testing.T) {
	tests := map[string]struct {
		x       float64
		cluster model.Cluster
	}{
		"low":      {x: 0, cluster: model.C1},
		"at-30":    {x: 30.0, cluster: model.C1},
		"above-30": {x: 30.01, cluster: model.C2},
		"at-60":    {x: 60, cluster: model.C2},
		"at-120":   {x: 120, cluster: model.C3},
		"at-200":   {x: 200, cluster: model.C4},
		"high":     {x: 1000, cluster: model.C5},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := Assign(model.Tensile, tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.cluster, c)
		})
	}
}

func TestAssign_Unknown(t *testing.T) {
	_, err := Assign(model.Feature("colour"), 1)
	assert.ErrorIs(t, err, model.ValidationErr)
}

func TestAssignAll(t *testing.T) {
	v, err := model.NewFeatureVector([]float64{20.9, 1431.47, 1.099, 94.2, 40, 0, 71.2, 62.15, 27.4})
	require.NoError(t, err)

	clusters := AssignAll(v)
	assert.Equal(t, map[string]string{
		"Tensile Cluster":       "C1",
		"Puncture Cluster":      "C4",
		"Permittivity Cluster":  "C4",
		"Filtration Cluster":    "C4",
		"Recycled Cluster":      "C3",
		"Biobased Cluster":      "C1",
		"UV Cluster":            "C4",
		"Material Cost Cluster": "C1",
		"Install Cost Cluster":  "C1",
	}, clusters)
}
