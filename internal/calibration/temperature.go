package calibration

import (
	"fmt"
	"math"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/net"
)

const (
	// DefaultTemperature is used when no validation data is available for platt scaling.
	DefaultTemperature = 2.0
	// Epsilon keeps the recovered logits finite for zero probabilities.
	Epsilon = 1e-7
)

// Method turns the classifier output of one sample into calibrated probabilities.
// probs is the softmax view and logits the pre-softmax view of the same sample.
type Method interface {
	Calibrate(probs, logits []float64) ([]float64, error)
	Name() string
}

// Temperature softens the distribution as softmax(log(p+ε)/T).
type Temperature struct {
	T float64 `json:"temperature"`
}

// NewTemperature creates a temperature scaling method.
func NewTemperature(t float64) (Temperature, error) {
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return Temperature{}, fmt.Errorf("invalid temperature %v", t)
	}
	return Temperature{T: t}, nil
}

// Name of the method.
func (t Temperature) Name() string {
	return "temperature"
}

// Calibrate applies the temperature to the softmax probabilities.
func (t Temperature) Calibrate(probs, _ []float64) ([]float64, error) {
	if t.T <= 0 {
		return nil, fmt.Errorf("invalid temperature %v: %w", t.T, model.InternalErr)
	}
	if len(probs) == 0 {
		return nil, fmt.Errorf("empty distribution: %w", model.InternalErr)
	}
	z := make([]float64, len(probs))
	for i, p := range probs {
		if p < 0 || math.IsNaN(p) {
			return nil, fmt.Errorf("invalid probability %v at %d: %w", p, i, model.InternalErr)
		}
		z[i] = math.Log(p+Epsilon) / t.T
	}
	return net.Softmax(z), nil
}
