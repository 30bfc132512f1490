package net

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	p := Softmax([]float64{1, 2, 3})
	sum := 0.0
	for _, v := range p {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-9)
	assert.True(t, p[2] > p[1] && p[1] > p[0])

	// large logits must not overflow
	p = Softmax([]float64{1000, 1000})
	assert.InDelta(t, 0.5, p[0], 1e-9)
	assert.InDelta(t, 0.5, p[1], 1e-9)

	assert.Empty(t, Softmax(nil))
}

func TestNetwork_Shape(t *testing.T) {
	n := New(5, 3, DefaultHidden, 42)
	assert.Equal(t, 5, n.InputDim())
	assert.Equal(t, 3, n.NumClasses())
	assert.Equal(t, []int{64, 32}, n.Hidden())

	logits, err := n.Logits([]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	require.NoError(t, err)
	assert.Len(t, logits, 3)

	probs, err := n.Predict([]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	require.NoError(t, err)
	assert.Equal(t, Softmax(logits), probs)

	_, err = n.Predict([]float64{0.1, 0.2})
	assert.ErrorIs(t, err, model.SchemaMismatchErr)
}

func TestNetwork_Deterministic(t *testing.T) {
	x := []float64{0.5, 0.5, 0.5}
	p1, err := New(3, 2, []int{4}, 7).Predict(x)
	require.NoError(t, err)
	p2, err := New(3, 2, []int{4}, 7).Predict(x)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestNetwork_WarmStart(t *testing.T) {
	n := New(2, 2, nil, 1)
	require.NoError(t, n.WarmStart([][]float64{{0, 0}, {1, 1}}, 10))

	p, err := n.Predict([]float64{0.1, 0.05})
	require.NoError(t, err)
	assert.True(t, p[0] > 0.9)

	p, err = n.Predict([]float64{0.9, 0.95})
	require.NoError(t, err)
	assert.True(t, p[1] > 0.9)

	assert.Error(t, New(2, 2, []int{3}, 1).WarmStart([][]float64{{0, 0}, {1, 1}}, 10))
	assert.Error(t, n.WarmStart([][]float64{{0, 0}}, 10))
	assert.Error(t, n.WarmStart([][]float64{{0, 0}, {1}}, 10))
}

func blobs() ([][]float64, [][]float64) {
	x := make([][]float64, 0)
	y := make([][]float64, 0)
	for i := 0; i < 20; i++ {
		d := float64(i%5) * 0.02
		x = append(x, []float64{0.1 + d, 0.2 - d})
		y = append(y, []float64{1, 0})
		x = append(x, []float64{0.9 - d, 0.8 + d})
		y = append(y, []float64{0, 1})
	}
	return x, y
}

func TestNetwork_Fit(t *testing.T) {
	x, y := blobs()
	n := New(2, 2, []int{8}, 42)

	before, err := n.Loss(x, y)
	require.NoError(t, err)

	history, err := n.Fit(x, y, x, y, Config{
		Epochs:       200,
		BatchSize:    8,
		LearningRate: 0.5,
		Patience:     20,
		Seed:         42,
	})
	require.NoError(t, err)

	after, err := n.Loss(x, y)
	require.NoError(t, err)
	assert.True(t, after < before, "loss did not decrease: %f -> %f", before, after)
	assert.True(t, history.Epochs > 0)
	assert.Len(t, history.TrainLoss, history.Epochs)
	assert.Len(t, history.ValLoss, history.Epochs)
	// best weights are restored
	assert.InDelta(t, history.BestLoss, after, 1e-9)
}

func TestNetwork_FitInvalid(t *testing.T) {
	n := New(2, 2, nil, 42)
	_, err := n.Fit(nil, nil, nil, nil, Config{Epochs: 1})
	assert.Error(t, err)

	_, err = n.Fit([][]float64{{1, 2, 3}}, [][]float64{{1, 0}}, nil, nil, Config{Epochs: 1})
	assert.ErrorIs(t, err, model.SchemaMismatchErr)

	_, err = n.Fit([][]float64{{1, 2}}, [][]float64{{1, 0, 0}}, nil, nil, Config{Epochs: 1})
	assert.Error(t, err)
}

func TestNetwork_JSON(t *testing.T) {
	n := New(4, 3, []int{5}, 3)
	x := []float64{0.2, 0.4, 0.6, 0.8}
	expected, err := n.Predict(x)
	require.NoError(t, err)

	bb, err := json.Marshal(n)
	require.NoError(t, err)

	loaded, err := Load(bb, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, loaded.Hidden())
	p, err := loaded.Predict(x)
	require.NoError(t, err)
	for i := range p {
		assert.InDelta(t, expected[i], p[i], 1e-12)
	}

	_, err = Load(bb, 5, 3)
	assert.ErrorIs(t, err, model.ModelLoadErr)
	_, err = Load(bb, 4, 2)
	assert.ErrorIs(t, err, model.ModelLoadErr)
	_, err = Load([]byte("{"), 4, 3)
	assert.ErrorIs(t, err, model.ModelLoadErr)
}

func TestNetwork_UnmarshalInconsistent(t *testing.T) {
	data := []byte(`{"input_dim":2,"num_classes":2,"slope":0.1,"layers":[{"rows":2,"cols":3,"weights":[1,2,3,4,5,6],"bias":[0,0]}]}`)
	var n Network
	err := json.Unmarshal(data, &n)
	assert.ErrorIs(t, err, model.ModelLoadErr)

	data = []byte(`{"input_dim":2,"num_classes":2,"slope":0.1,"layers":[{"rows":2,"cols":2,"weights":[1,2,3],"bias":[0,0]}]}`)
	err = json.Unmarshal(data, &n)
	assert.ErrorIs(t, err, model.ModelLoadErr)

	data = []byte(`{"input_dim":2,"num_classes":2,"slope":0.1,"layers":[{"rows":2,"cols":2,"weights":[1,0,0,1],"bias":[0,0]}]}`)
	require.NoError(t, json.Unmarshal(data, &n))
	logits, err := n.Logits([]float64{3, -4})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, -4}, logits)
	assert.False(t, math.IsNaN(logits[0]))
}
