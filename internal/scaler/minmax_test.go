package scaler

import (
	"math"
	"testing"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMax_FitTransform(t *testing.T) {
	s := New()
	out, err := s.FitTransform([][]float64{
		{0, 10, 5},
		{5, 20, 5},
		{10, 30, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{0, 0, 0},
		{0.5, 0.5, 0},
		{1, 1, 0},
	}, out)
}

func TestMinMax_OutOfRangeNotClamped(t *testing.T) {
	s := New()
	require.NoError(t, s.Fit([][]float64{{0, 0}, {10, 100}}))

	out, err := s.Transform([]float64{20, -50})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -0.5}, out)
}

func TestMinMax_InverseTransform(t *testing.T) {
	s := New()
	require.NoError(t, s.Fit([][]float64{{1, 100}, {3, 300}}))

	scaled, err := s.Transform([]float64{2.5, 150})
	require.NoError(t, err)
	back, err := s.InverseTransform(scaled)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.5, 150}, back, 1e-9)
}

func TestMinMax_NotFitted(t *testing.T) {
	_, err := New().Transform([]float64{1})
	assert.ErrorIs(t, err, model.NotFittedErr)
}

func TestMinMax_WidthMismatch(t *testing.T) {
	s := New()
	require.NoError(t, s.Fit([][]float64{{1, 2}}))
	_, err := s.Transform([]float64{1, 2, 3})
	assert.ErrorIs(t, err, model.SchemaMismatchErr)
}

func TestMinMax_EmptyFit(t *testing.T) {
	assert.Error(t, New().Fit(nil))
}

func TestMinMax_FitNonFinite(t *testing.T) {
	s := New()
	err := s.Fit([][]float64{{1, 2}, {math.NaN(), 3}})
	assert.ErrorIs(t, err, model.ValidationErr)
	assert.False(t, s.Fitted())

	err = s.Fit([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}
