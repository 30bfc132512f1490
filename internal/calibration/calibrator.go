package calibration

import (
	"fmt"
	"sync"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/rs/zerolog/log"
)

// State of a calibrator.
type State int

const (
	// Uncalibrated has not been fitted yet.
	Uncalibrated State = iota
	// Fitting is computing its parameters.
	Fitting
	// Fitted is terminal, the method or the fit error is reused for every call.
	Fitted
)

func (s State) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Fitting:
		return "fitting"
	case Fitted:
		return "fitted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Fit produces the calibration method.
type Fit func() (Method, error)

// Calibrator fits its method at most once and shares it across calls.
type Calibrator struct {
	once   sync.Once
	lock   sync.RWMutex
	state  State
	fit    Fit
	method Method
	err    error
}

// New creates a calibrator around the given fit function.
func New(fit Fit) *Calibrator {
	return &Calibrator{fit: fit}
}

// Fixed creates a calibrator for a fixed temperature.
func Fixed(t float64) *Calibrator {
	return New(func() (Method, error) {
		return NewTemperature(t)
	})
}

// NewPlatt creates a platt scaling calibrator for the given validation set.
// Without validation logits or labels it falls back to temperature scaling with DefaultTemperature.
func NewPlatt(logits, labels [][]float64, cfg PlattConfig) *Calibrator {
	return New(func() (Method, error) {
		if len(logits) == 0 || len(labels) == 0 {
			log.Warn().
				Int("logits", len(logits)).
				Int("labels", len(labels)).
				Float64("temperature", DefaultTemperature).
				Msg("no validation data, falling back to temperature scaling")
			return Temperature{T: DefaultTemperature}, nil
		}
		return FitPlatt(logits, labels, cfg)
	})
}

// Fit runs the fit function once, concurrent callers wait for the first one to finish.
func (c *Calibrator) Fit() error {
	c.once.Do(func() {
		c.lock.Lock()
		c.state = Fitting
		c.lock.Unlock()

		method, err := c.fit()

		c.lock.Lock()
		defer c.lock.Unlock()
		c.method = method
		c.err = err
		c.state = Fitted
		if err != nil {
			log.Error().Err(err).Msg("could not fit calibrator")
			return
		}
		log.Info().Str("method", method.Name()).Msg("calibrator fitted")
	})
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.err != nil {
		return fmt.Errorf("calibration failed: %v: %w", c.err, model.InternalErr)
	}
	return nil
}

// State returns the current state of the calibrator.
func (c *Calibrator) State() State {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.state
}

// Method returns the fitted method, fitting it first if needed.
func (c *Calibrator) Method() (Method, error) {
	if err := c.Fit(); err != nil {
		return nil, err
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.method, nil
}

// Apply calibrates the classifier output of one sample.
func (c *Calibrator) Apply(probs, logits []float64) ([]float64, error) {
	m, err := c.Method()
	if err != nil {
		return nil, err
	}
	return m.Calibrate(probs, logits)
}
