package net

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const epsilon = 1e-12

// Config holds the optimiser settings.
type Config struct {
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	// Patience is the number of epochs without validation improvement before stopping.
	Patience int `json:"patience"`
	// DecayPatience epochs without improvement multiply the learning rate with DecayFactor,
	// down to MinLearningRate.
	DecayPatience   int     `json:"decay_patience"`
	DecayFactor     float64 `json:"decay_factor"`
	MinLearningRate float64 `json:"min_learning_rate"`
	Seed            int64   `json:"seed"`
}

// DefaultConfig returns the optimiser settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Epochs:          100,
		BatchSize:       32,
		LearningRate:    0.05,
		Patience:        10,
		DecayPatience:   6,
		DecayFactor:     0.5,
		MinLearningRate: 5e-5,
		Seed:            42,
	}
}

// History tracks the losses of a training run.
type History struct {
	Epochs    int       `json:"epochs"`
	Best      int       `json:"best"`
	TrainLoss []float64 `json:"train_loss"`
	ValLoss   []float64 `json:"val_loss"`
	GradNorm  []float64 `json:"grad_norm"`
	EarlyStop bool      `json:"early_stop"`
	BestLoss  float64   `json:"best_loss"`
}

type gradient struct {
	w []*mat.Dense
	b []*mat.VecDense
}

func (n *Network) zeroGradient() gradient {
	g := gradient{
		w: make([]*mat.Dense, len(n.layers)),
		b: make([]*mat.VecDense, len(n.layers)),
	}
	for i, l := range n.layers {
		r, c := l.W.Dims()
		g.w[i] = mat.NewDense(r, c, nil)
		g.b[i] = mat.NewVecDense(r, nil)
	}
	return g
}

// backward accumulates the cross-entropy gradient of one sample.
func (n *Network) backward(x, y []float64, g gradient) float64 {
	p := n.forward(x)
	logits := p.activations[len(p.activations)-1]
	probs := Softmax(logits.RawVector().Data)

	loss := 0.0
	delta := mat.NewVecDense(len(probs), nil)
	for i, pr := range probs {
		delta.SetVec(i, pr-y[i])
		if y[i] > 0 {
			loss -= y[i] * math.Log(pr+epsilon)
		}
	}

	for i := len(n.layers) - 1; i >= 0; i-- {
		var outer mat.Dense
		outer.Outer(1, delta, p.activations[i])
		g.w[i].Add(g.w[i], &outer)
		g.b[i].AddVec(g.b[i], delta)
		if i > 0 {
			var prev mat.VecDense
			prev.MulVec(n.layers[i].W.T(), delta)
			prev.MulElemVec(&prev, n.derivative(p.z[i-1]))
			delta = &prev
		}
	}
	return loss
}

// step applies the averaged gradient and returns its norm.
func (n *Network) step(g gradient, rate float64, size int) float64 {
	scale := -rate / float64(size)
	flat := make([]float64, 0)
	for i, l := range n.layers {
		var dw mat.Dense
		dw.Scale(scale, g.w[i])
		l.W.Add(l.W, &dw)
		l.B.AddScaledVec(l.B, scale, g.b[i])
		flat = append(flat, dw.RawMatrix().Data...)
	}
	return xmath.Vec(len(flat)).With(flat...).Norm()
}

// Loss returns the mean cross-entropy of the network over the given samples.
func (n *Network) Loss(x, y [][]float64) (float64, error) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, fmt.Errorf("invalid samples [ %d | %d ]", len(x), len(y))
	}
	loss := 0.0
	for i := range x {
		probs, err := n.Predict(x[i])
		if err != nil {
			return 0, err
		}
		if len(y[i]) != len(probs) {
			return 0, fmt.Errorf("label %d has %d classes but network predicts %d", i, len(y[i]), len(probs))
		}
		for c, t := range y[i] {
			if t > 0 {
				loss -= t * math.Log(probs[c]+epsilon)
			}
		}
	}
	return loss / float64(len(x)), nil
}

func (n *Network) validate(x, y [][]float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("inconsistent samples [ %d | %d ]", len(x), len(y))
	}
	for i := range x {
		if err := n.check(x[i]); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if len(y[i]) != n.numClasses {
			return fmt.Errorf("label %d has %d classes but network predicts %d", i, len(y[i]), n.numClasses)
		}
	}
	return nil
}

// Fit trains the network with mini-batch gradient descent on the cross-entropy loss.
// When validation samples are given, training stops after Patience epochs without
// improvement and the best weights are restored.
func (n *Network) Fit(x, y, valX, valY [][]float64, cfg Config) (History, error) {
	history := History{BestLoss: math.MaxFloat64}
	if len(x) == 0 {
		return history, fmt.Errorf("no training samples")
	}
	if err := n.validate(x, y); err != nil {
		return history, fmt.Errorf("invalid training set: %w", err)
	}
	if err := n.validate(valX, valY); err != nil {
		return history, fmt.Errorf("invalid validation set: %w", err)
	}

	batch := cfg.BatchSize
	if batch <= 0 || batch > len(x) {
		batch = len(x)
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}

	best := n.snapshot()
	rate := cfg.LearningRate
	wait := 0
	plateau := 0
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rnd.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		total := 0.0
		norm := 0.0
		for start := 0; start < len(order); start += batch {
			end := start + batch
			if end > len(order) {
				end = len(order)
			}
			g := n.zeroGradient()
			for _, idx := range order[start:end] {
				total += n.backward(x[idx], y[idx], g)
			}
			norm = n.step(g, rate, end-start)
		}
		history.Epochs++
		history.TrainLoss = append(history.TrainLoss, total/float64(len(x)))
		history.GradNorm = append(history.GradNorm, norm)

		if len(valX) == 0 {
			continue
		}
		valLoss, err := n.Loss(valX, valY)
		if err != nil {
			return history, fmt.Errorf("could not evaluate validation loss: %w", err)
		}
		history.ValLoss = append(history.ValLoss, valLoss)
		if valLoss < history.BestLoss {
			history.BestLoss = valLoss
			history.Best = epoch
			best = n.snapshot()
			wait = 0
			plateau = 0
		} else {
			wait++
			plateau++
		}
		if cfg.DecayPatience > 0 && plateau >= cfg.DecayPatience && cfg.DecayFactor > 0 {
			rate = math.Max(rate*cfg.DecayFactor, cfg.MinLearningRate)
			plateau = 0
			log.Debug().Int("epoch", epoch).Float64("learning-rate", rate).Msg("reduced learning rate")
		}
		if cfg.Patience > 0 && wait >= cfg.Patience {
			log.Info().
				Int("epoch", epoch).
				Int("best", history.Best).
				Float64("val-loss", history.BestLoss).
				Msg("early stopping")
			history.EarlyStop = true
			break
		}
	}
	if len(valX) > 0 && history.Epochs > 0 {
		n.layers = best
	}
	return history, nil
}
