package net

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/geotextile/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultSlope is the negative slope of the leaky relu activation.
const DefaultSlope = 0.1

// DefaultHidden are the hidden layer widths used when none are configured.
var DefaultHidden = []int{64, 32}

// Layer is a fully connected layer computing W·x + b.
type Layer struct {
	W *mat.Dense
	B *mat.VecDense
}

func newLayer(in, out int, rnd *rand.Rand) *Layer {
	// glorot uniform
	limit := math.Sqrt(6 / float64(in+out))
	w := make([]float64, in*out)
	for i := range w {
		w[i] = (rnd.Float64()*2 - 1) * limit
	}
	return &Layer{
		W: mat.NewDense(out, in, w),
		B: mat.NewVecDense(out, nil),
	}
}

// Size returns the input and output size of the layer.
func (l *Layer) Size() (int, int) {
	r, c := l.W.Dims()
	return c, r
}

func (l *Layer) forward(a mat.Vector) *mat.VecDense {
	var z mat.VecDense
	z.MulVec(l.W, a)
	z.AddVec(&z, l.B)
	return &z
}

func (l *Layer) clone() *Layer {
	return &Layer{
		W: mat.DenseCopyOf(l.W),
		B: mat.VecDenseCopyOf(l.B),
	}
}

// Network is a feed-forward classifier with leaky relu hidden layers and a softmax output.
type Network struct {
	inputDim   int
	numClasses int
	slope      float64
	layers     []*Layer
}

// New creates a randomly initialised network.
func New(inputDim, numClasses int, hidden []int, seed int64) *Network {
	rnd := rand.New(rand.NewSource(seed))
	layers := make([]*Layer, 0, len(hidden)+1)
	in := inputDim
	for _, h := range hidden {
		layers = append(layers, newLayer(in, h, rnd))
		in = h
	}
	layers = append(layers, newLayer(in, numClasses, rnd))
	return &Network{
		inputDim:   inputDim,
		numClasses: numClasses,
		slope:      DefaultSlope,
		layers:     layers,
	}
}

// InputDim is the width of the expected feature vector.
func (n *Network) InputDim() int {
	return n.inputDim
}

// NumClasses is the width of the output distribution.
func (n *Network) NumClasses() int {
	return n.numClasses
}

// Hidden returns the hidden layer widths.
func (n *Network) Hidden() []int {
	hidden := make([]int, 0, len(n.layers)-1)
	for _, l := range n.layers[:len(n.layers)-1] {
		_, out := l.Size()
		hidden = append(hidden, out)
	}
	return hidden
}

func (n *Network) activate(z *mat.VecDense) *mat.VecDense {
	a := mat.NewVecDense(z.Len(), nil)
	for i := 0; i < z.Len(); i++ {
		x := z.AtVec(i)
		if x < 0 {
			x = n.slope * x
		}
		a.SetVec(i, x)
	}
	return a
}

func (n *Network) derivative(z *mat.VecDense) *mat.VecDense {
	d := mat.NewVecDense(z.Len(), nil)
	for i := 0; i < z.Len(); i++ {
		if z.AtVec(i) < 0 {
			d.SetVec(i, n.slope)
		} else {
			d.SetVec(i, 1)
		}
	}
	return d
}

// pass holds the intermediate values of a forward pass.
type pass struct {
	// activations[0] is the input, activations[i] the output of layer i-1
	activations []*mat.VecDense
	// pre-activations of each layer
	z []*mat.VecDense
}

func (n *Network) forward(x []float64) pass {
	a := mat.NewVecDense(len(x), append([]float64(nil), x...))
	p := pass{
		activations: []*mat.VecDense{a},
		z:           make([]*mat.VecDense, 0, len(n.layers)),
	}
	for i, l := range n.layers {
		z := l.forward(a)
		p.z = append(p.z, z)
		if i < len(n.layers)-1 {
			a = n.activate(z)
		} else {
			a = z
		}
		p.activations = append(p.activations, a)
	}
	return p
}

func (n *Network) check(x []float64) error {
	if len(x) != n.inputDim {
		return fmt.Errorf("input has %d columns but network expects %d: %w", len(x), n.inputDim, model.SchemaMismatchErr)
	}
	return nil
}

// Logits returns the pre-softmax output for the given input.
func (n *Network) Logits(x []float64) ([]float64, error) {
	if err := n.check(x); err != nil {
		return nil, err
	}
	p := n.forward(x)
	out := p.activations[len(p.activations)-1]
	return append([]float64(nil), out.RawVector().Data...), nil
}

// Predict returns the softmax distribution over the classes for the given input.
func (n *Network) Predict(x []float64) ([]float64, error) {
	logits, err := n.Logits(x)
	if err != nil {
		return nil, err
	}
	return Softmax(logits), nil
}

// Softmax converts logits into a probability distribution.
func Softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	if len(z) == 0 {
		return out
	}
	max := floats.Max(z)
	for i, x := range z {
		out[i] = math.Exp(x - max)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// WarmStart sets the output layer of a network without hidden layers to the
// nearest-centroid classifier of the given class centroids.
// The logit of class c becomes sharpness * (2·μc·x - |μc|²).
func (n *Network) WarmStart(centroids [][]float64, sharpness float64) error {
	if len(n.layers) != 1 {
		return fmt.Errorf("warm start needs a network without hidden layers, got %d", len(n.layers)-1)
	}
	if len(centroids) != n.numClasses {
		return fmt.Errorf("expected %d centroids but got %d", n.numClasses, len(centroids))
	}
	l := n.layers[0]
	for c, mu := range centroids {
		if len(mu) != n.inputDim {
			return fmt.Errorf("centroid %d has %d columns but network expects %d", c, len(mu), n.inputDim)
		}
		for j, m := range mu {
			l.W.Set(c, j, 2*sharpness*m)
		}
		l.B.SetVec(c, -sharpness*floats.Dot(mu, mu))
	}
	return nil
}

func (n *Network) snapshot() []*Layer {
	layers := make([]*Layer, len(n.layers))
	for i, l := range n.layers {
		layers[i] = l.clone()
	}
	return layers
}
