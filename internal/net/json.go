package net

import (
	"encoding/json"
	"fmt"

	"github.com/drakos74/geotextile/internal/model"
	"gonum.org/v1/gonum/mat"
)

type layerState struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Weights []float64 `json:"weights"`
	Bias    []float64 `json:"bias"`
}

type state struct {
	InputDim   int          `json:"input_dim"`
	NumClasses int          `json:"num_classes"`
	Slope      float64      `json:"slope"`
	Layers     []layerState `json:"layers"`
}

// MarshalJSON encodes the network weights and shape.
func (n *Network) MarshalJSON() ([]byte, error) {
	s := state{
		InputDim:   n.inputDim,
		NumClasses: n.numClasses,
		Slope:      n.slope,
		Layers:     make([]layerState, len(n.layers)),
	}
	for i, l := range n.layers {
		r, c := l.W.Dims()
		s.Layers[i] = layerState{
			Rows:    r,
			Cols:    c,
			Weights: mat.DenseCopyOf(l.W).RawMatrix().Data,
			Bias:    append([]float64(nil), l.B.RawVector().Data...),
		}
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes the network and checks that consecutive layers fit together.
func (n *Network) UnmarshalJSON(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("could not decode network: %v: %w", err, model.ModelLoadErr)
	}
	if len(s.Layers) == 0 {
		return fmt.Errorf("network has no layers: %w", model.ModelLoadErr)
	}
	layers := make([]*Layer, len(s.Layers))
	in := s.InputDim
	for i, ls := range s.Layers {
		if ls.Rows <= 0 || ls.Cols != in {
			return fmt.Errorf("layer %d has shape [%d,%d] but expects %d inputs: %w", i, ls.Rows, ls.Cols, in, model.ModelLoadErr)
		}
		if len(ls.Weights) != ls.Rows*ls.Cols || len(ls.Bias) != ls.Rows {
			return fmt.Errorf("layer %d has %d weights and %d biases for shape [%d,%d]: %w",
				i, len(ls.Weights), len(ls.Bias), ls.Rows, ls.Cols, model.ModelLoadErr)
		}
		layers[i] = &Layer{
			W: mat.NewDense(ls.Rows, ls.Cols, ls.Weights),
			B: mat.NewVecDense(ls.Rows, ls.Bias),
		}
		in = ls.Rows
	}
	if in != s.NumClasses {
		return fmt.Errorf("output layer has %d units but network declares %d classes: %w", in, s.NumClasses, model.ModelLoadErr)
	}
	n.inputDim = s.InputDim
	n.numClasses = s.NumClasses
	n.slope = s.Slope
	n.layers = layers
	return nil
}

// Load decodes a persisted network and verifies it matches the expected input and output widths.
func Load(data []byte, inputDim, numClasses int) (*Network, error) {
	n := new(Network)
	if err := n.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if n.inputDim != inputDim {
		return nil, fmt.Errorf("network expects %d inputs but schema has %d columns: %w", n.inputDim, inputDim, model.ModelLoadErr)
	}
	if n.numClasses != numClasses {
		return nil, fmt.Errorf("network predicts %d classes but %d are known: %w", n.numClasses, numClasses, model.ModelLoadErr)
	}
	return n, nil
}
