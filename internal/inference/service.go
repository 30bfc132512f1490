package inference

import (
	"errors"
	"fmt"
	"math"

	"github.com/drakos74/geotextile/internal/artifact"
	"github.com/drakos74/geotextile/internal/calibration"
	"github.com/drakos74/geotextile/internal/feature"
	"github.com/drakos74/geotextile/internal/metrics"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/net"
	"github.com/drakos74/geotextile/internal/scaler"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

const (
	// PlattMethod calibrates with per class logistic regression on the validation logits.
	PlattMethod = "platt"
	// TemperatureMethod calibrates with a fixed temperature.
	TemperatureMethod = "temperature"
)

// Config defines the calibration of the service.
type Config struct {
	Method      string                  `json:"method"`
	Temperature float64                 `json:"temperature"`
	Platt       calibration.PlattConfig `json:"platt"`
}

// DefaultConfig returns platt scaling with the default settings.
func DefaultConfig() Config {
	return Config{
		Method:      PlattMethod,
		Temperature: calibration.DefaultTemperature,
		Platt:       calibration.DefaultPlattConfig(),
	}
}

// NewCalibrator creates the calibrator for the given config and validation set.
func NewCalibrator(cfg Config, validation *artifact.Validation) (*calibration.Calibrator, error) {
	switch cfg.Method {
	case PlattMethod, "":
		if validation == nil {
			return calibration.NewPlatt(nil, nil, cfg.Platt), nil
		}
		return calibration.NewPlatt(validation.Logits, validation.Labels, cfg.Platt), nil
	case TemperatureMethod:
		return calibration.Fixed(cfg.Temperature), nil
	}
	return nil, fmt.Errorf("unknown calibration method '%s'", cfg.Method)
}

// Context holds the fitted components shared by all requests.
// It is read-only after creation.
type Context struct {
	mode         model.Mode
	encoder      *feature.Encoder
	scaler       *scaler.MinMax
	network      *net.Network
	classes      model.Classes
	calibrator   *calibration.Calibrator
	descriptions map[string]string
}

// NewContext validates the bundle and wires its components.
func NewContext(b *artifact.Bundle, calibrator *calibration.Calibrator) (*Context, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if calibrator == nil {
		return nil, fmt.Errorf("missing calibrator")
	}
	return &Context{
		mode:         b.Manifest.Mode,
		encoder:      feature.NewEncoder(b.Manifest.Mode, b.Manifest.Skew, b.Schema, b.Network.InputDim()),
		scaler:       b.Scaler,
		network:      b.Network,
		classes:      b.Classes,
		calibrator:   calibrator,
		descriptions: Descriptions,
	}, nil
}

// Service classifies single requests.
type Service struct {
	ctx *Context
}

// New creates the service for the bundle and fits its calibrator.
func New(b *artifact.Bundle, cfg Config) (*Service, error) {
	calibrator, err := NewCalibrator(cfg, b.Validation)
	if err != nil {
		return nil, err
	}
	ctx, err := NewContext(b, calibrator)
	if err != nil {
		return nil, err
	}
	if err := calibrator.Fit(); err != nil {
		return nil, err
	}
	log.Info().
		Str("mode", string(ctx.mode)).
		Int("columns", ctx.encoder.Schema().Width()).
		Int("classes", len(ctx.classes)).
		Str("calibrator", calibrator.State().String()).
		Msg("inference service ready")
	return &Service{ctx: ctx}, nil
}

// Mode returns the input encoding of the deployment.
func (s *Service) Mode() model.Mode {
	return s.ctx.mode
}

// Classes returns the known material types.
func (s *Service) Classes() model.Classes {
	return s.ctx.classes
}

func (s *Service) encode(req model.Request) ([]float64, error) {
	switch {
	case req.Features != nil && req.Clusters != nil:
		return nil, fmt.Errorf("request has both features and clusters: %w", model.ValidationErr)
	case req.Features != nil:
		for i, v := range req.Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("feature %d is not a number: %w", i, model.ValidationErr)
			}
		}
		v, err := model.NewFeatureVector(req.Features)
		if err != nil {
			return nil, err
		}
		return s.ctx.encoder.EncodeFeatures(v)
	case req.Clusters != nil:
		return s.ctx.encoder.EncodeClusters(req.Clusters)
	}
	return nil, fmt.Errorf("request has neither features nor clusters: %w", model.ValidationErr)
}

func (s *Service) predict(req model.Request) (model.Prediction, error) {
	x, err := s.encode(req)
	if err != nil {
		return model.Prediction{}, err
	}
	x, err = s.ctx.scaler.Transform(x)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("could not scale input: %w", err)
	}
	logits, err := s.ctx.network.Logits(x)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("could not run classifier: %w", err)
	}
	probs, err := s.ctx.calibrator.Apply(net.Softmax(logits), logits)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("could not calibrate: %w", err)
	}
	idx := floats.MaxIdx(probs)
	label, err := s.ctx.classes.At(idx)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.Prediction{
		Type:          label,
		Confidence:    math.Round(probs[idx]*100*100) / 100,
		Description:   Describe(s.ctx.descriptions, label),
		Probabilities: probs,
	}, nil
}

// Predict classifies one request.
// Malformed requests fail with model.ValidationErr, any other failure with model.InternalErr.
func (s *Service) Predict(req model.Request) (model.Prediction, error) {
	id := uuid.New().String()
	prediction, err := s.predict(req)
	if err != nil {
		if errors.Is(err, model.ValidationErr) {
			metrics.Observer.Error("validation")
			log.Warn().Str("id", id).Err(err).Msg("invalid request")
			return model.Prediction{}, err
		}
		metrics.Observer.Error("internal")
		log.Error().Str("id", id).Err(err).Msg("could not predict")
		if !errors.Is(err, model.InternalErr) {
			err = fmt.Errorf("%v: %w", err, model.InternalErr)
		}
		return model.Prediction{}, err
	}
	metrics.Observer.Prediction(prediction.Type, string(s.ctx.mode), prediction.Confidence)
	log.Info().
		Str("id", id).
		Str("type", prediction.Type).
		Float64("confidence", prediction.Confidence).
		Msg("prediction")
	return prediction, nil
}
