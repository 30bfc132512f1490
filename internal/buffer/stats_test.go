package buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_Add(t *testing.T) {

	l := 1001

	type test struct {
		transform func(i int) float64
		min       float64
		max       float64
	}

	tests := map[string]test{
		"increasing": {
			transform: func(i int) float64 {
				return float64(i)
			},
			min: 0,
			max: 1000,
		},
		"decreasing": {
			transform: func(i int) float64 {
				return -1 * float64(i)
			},
			min: -1000,
			max: 0,
		},
		"constant": {
			transform: func(i int) float64 {
				return 3.5
			},
			min: 3.5,
			max: 3.5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewColumn()
			for i := 0; i < l; i++ {
				require.NoError(t, c.Add(tt.transform(i)))
			}
			assert.Equal(t, tt.min, c.Min())
			assert.Equal(t, tt.max, c.Max())
			assert.Equal(t, tt.max-tt.min, c.Range())
			assert.Equal(t, tt.max == tt.min, c.Constant())
		})
	}
}

func TestColumn_NonFinite(t *testing.T) {
	c := NewColumn()
	assert.Error(t, c.Add(math.NaN()))
	assert.Error(t, c.Add(math.Inf(-1)))
	assert.Equal(t, 0.0, c.Range())
	assert.True(t, math.IsInf(c.Min(), 1))
}

func TestProfile_Add(t *testing.T) {
	p := NewProfile(3)
	require.NoError(t, p.Add(1, 10, 0))
	require.NoError(t, p.Add(3, -10, 0))
	assert.Error(t, p.Add(1))
	assert.Error(t, p.Add(100, math.NaN(), 0))

	assert.Equal(t, 1.0, p.Columns()[0].Min())
	assert.Equal(t, 3.0, p.Columns()[0].Max())
	assert.Equal(t, 20.0, p.Columns()[1].Range())
	assert.Equal(t, []int{2}, p.Constant())
}
