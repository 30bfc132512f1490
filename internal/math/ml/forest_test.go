package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomForest(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var xData [][]float64
	var yData []int
	for i := 0; i < 200; i++ {
		x := []float64{rnd.Float64(), rnd.Float64()}
		y := 0
		if x[0] > 0.5 {
			y = 1
		}
		xData = append(xData, x)
		yData = append(yData, y)
	}

	forest := NewForest(20)
	_, err := forest.Predict([]float64{0.1, 0.1})
	assert.Error(t, err)

	importance, err := forest.Train(xData, yData)
	require.NoError(t, err)
	assert.Len(t, importance, 2)

	votes, err := forest.Predict([]float64{0.05, 0.5})
	require.NoError(t, err)
	assert.True(t, votes[0] > votes[1])

	acc, err := forest.Accuracy(xData, yData)
	require.NoError(t, err)
	assert.True(t, acc > 0.9, "accuracy %v", acc)

	_, err = NewForest(0).Train(xData, yData)
	assert.Error(t, err)
	_, err = forest.Train(nil, nil)
	assert.Error(t, err)
}
