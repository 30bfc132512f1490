package calibration

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/net"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DegenerateClassErr signals a class without positive or without negative validation samples.
var DegenerateClassErr = errors.New("degenerate class")

// PlattConfig holds the logistic regression settings.
type PlattConfig struct {
	// Alpha is the learning rate per sample.
	Alpha          float64 `json:"alpha"`
	Regularization float64 `json:"regularization"`
	MaxIterations  int     `json:"max_iterations"`
	// Strict fails the fit on degenerate classes instead of falling back to the class prior.
	Strict bool `json:"strict"`
}

// DefaultPlattConfig returns the settings used when none are configured.
func DefaultPlattConfig() PlattConfig {
	return PlattConfig{
		Alpha:          0.5,
		Regularization: 0,
		MaxIterations:  5000,
	}
}

// PlattParams is the binary calibrator of one class.
// The input logit is standardised with Mean and Std before the sigmoid.
type PlattParams struct {
	Weight float64 `json:"weight"`
	Bias   float64 `json:"bias"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	// Constant calibrators return Prior regardless of the input.
	Constant bool    `json:"constant,omitempty"`
	Prior    float64 `json:"prior,omitempty"`
}

// LogProbability returns the log of the calibrated positive class probability for the given logit.
func (p PlattParams) LogProbability(logit float64) float64 {
	if p.Constant {
		return math.Log(p.Prior)
	}
	return logSigmoid(p.Weight*(logit-p.Mean)/p.Std + p.Bias)
}

// logSigmoid is log(1 / (1 + e^-x)), finite for any finite x.
func logSigmoid(x float64) float64 {
	if x >= 0 {
		return -math.Log1p(math.Exp(-x))
	}
	return x - math.Log1p(math.Exp(x))
}

// Platt is the one-vs-rest logistic calibration over the classifier logits.
type Platt struct {
	Params []PlattParams `json:"params"`
}

// Name of the method.
func (p *Platt) Name() string {
	return "platt"
}

// Calibrate runs each class logit through its calibrator and renormalises the result.
// Normalisation happens in log space, so logits far outside the validation range still sum to 1.
func (p *Platt) Calibrate(_, logits []float64) ([]float64, error) {
	if len(logits) != len(p.Params) {
		return nil, fmt.Errorf("got %d logits for %d calibrators: %w", len(logits), len(p.Params), model.InternalErr)
	}
	logProbs := make([]float64, len(logits))
	for c, z := range logits {
		logProbs[c] = p.Params[c].LogProbability(z)
	}
	if floats.HasNaN(logProbs) || math.IsInf(floats.Max(logProbs), 0) {
		return nil, fmt.Errorf("calibrated probabilities do not normalise %v: %w", logProbs, model.InternalErr)
	}
	return net.Softmax(logProbs), nil
}

// FitPlatt fits one binary logistic regression per class on the validation logits.
// labels are one-hot rows, the true class of each row is its argmax.
func FitPlatt(logits, labels [][]float64, cfg PlattConfig) (*Platt, error) {
	if len(logits) == 0 {
		return nil, fmt.Errorf("no validation samples")
	}
	if len(logits) != len(labels) {
		return nil, fmt.Errorf("got %d validation logits but %d labels", len(logits), len(labels))
	}
	numClasses := len(logits[0])
	if numClasses == 0 {
		return nil, fmt.Errorf("validation logits have no classes")
	}
	truth := make([]int, len(labels))
	for i := range logits {
		if len(logits[i]) != numClasses || len(labels[i]) != numClasses {
			return nil, fmt.Errorf("validation row %d has shape [%d|%d] expected %d", i, len(logits[i]), len(labels[i]), numClasses)
		}
		truth[i] = floats.MaxIdx(labels[i])
	}

	params := make([]PlattParams, numClasses)
	var g errgroup.Group
	for c := 0; c < numClasses; c++ {
		c := c
		g.Go(func() error {
			p, err := fitClass(c, logits, truth, cfg)
			if err != nil {
				return fmt.Errorf("could not fit class %d: %w", c, err)
			}
			params[c] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Platt{Params: params}, nil
}

func fitClass(c int, logits [][]float64, truth []int, cfg PlattConfig) (PlattParams, error) {
	n := len(logits)
	x := make([]float64, n)
	y := make([]float64, n)
	pos := 0
	for i := range logits {
		x[i] = logits[i][c]
		if truth[i] == c {
			y[i] = 1
			pos++
		}
	}

	if pos == 0 || pos == n {
		if cfg.Strict {
			return PlattParams{}, fmt.Errorf("%d positive out of %d samples: %w", pos, n, DegenerateClassErr)
		}
		prior := float64(pos+1) / float64(n+2)
		log.Warn().
			Int("class", c).
			Int("positive", pos).
			Int("samples", n).
			Float64("prior", prior).
			Msg("degenerate platt class")
		return PlattParams{Constant: true, Prior: prior, Std: 1}, nil
	}

	mean, std := stat.MeanStdDev(x, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	features := make([][]float64, n)
	for i, v := range x {
		features[i] = []float64{(v - mean) / std}
	}

	// the batch gradient is a sum over the samples
	alpha := cfg.Alpha / float64(n)
	lr := linear.NewLogistic(base.BatchGA, alpha, cfg.Regularization, cfg.MaxIterations, features, y)
	lr.Output = io.Discard
	if err := lr.Learn(); err != nil {
		return PlattParams{}, err
	}
	if len(lr.Parameters) != 2 {
		return PlattParams{}, fmt.Errorf("unexpected logistic parameters %v", lr.Parameters)
	}
	return PlattParams{
		Bias:   lr.Parameters[0],
		Weight: lr.Parameters[1],
		Mean:   mean,
		Std:    std,
	}, nil
}
