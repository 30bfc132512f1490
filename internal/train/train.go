package train

import (
	"fmt"
	"time"

	"github.com/drakos74/geotextile/internal/artifact"
	"github.com/drakos74/geotextile/internal/dataset"
	"github.com/drakos74/geotextile/internal/feature"
	"github.com/drakos74/geotextile/internal/math/ml"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/net"
	"github.com/drakos74/geotextile/internal/scaler"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Split defines the fractions of the train, validation and test parts.
type Split struct {
	Train      float64 `json:"train"`
	Validation float64 `json:"validation"`
	Test       float64 `json:"test"`
}

// Config holds the settings of a training run.
type Config struct {
	// Dataset is the csv file to train on.
	Dataset string `json:"dataset"`
	// Samples per class are generated when the dataset file does not exist.
	Samples int        `json:"samples"`
	Mode    model.Mode `json:"mode"`
	Skew    bool       `json:"skew_transform"`
	Hidden  []int      `json:"hidden"`
	// WarmStart is the sharpness of the nearest-centroid initialisation of networks without hidden layers.
	WarmStart float64    `json:"warm_start"`
	Optimizer net.Config `json:"optimizer"`
	Split     Split      `json:"split"`
	Seed      int64      `json:"seed"`
	// Trees of the baseline forest, 0 skips the baseline.
	Trees     int    `json:"trees"`
	Artifacts string `json:"artifacts"`
	Shard     string `json:"shard"`
	Version   int64  `json:"version"`
}

// DefaultConfig returns the settings of the reference training run.
func DefaultConfig() Config {
	return Config{
		Samples:   100,
		Mode:      model.ClusterMode,
		Hidden:    net.DefaultHidden,
		Optimizer: net.DefaultConfig(),
		Split: Split{
			Train:      0.7,
			Validation: 0.15,
			Test:       0.15,
		},
		Seed:  42,
		Trees: 100,
	}
}

// Report summarises a training run.
type Report struct {
	RunID      string        `json:"run_id"`
	Mode       model.Mode    `json:"mode"`
	Classes    model.Classes `json:"classes"`
	Columns    int           `json:"columns"`
	Samples    [3]int        `json:"samples"`
	History    net.History   `json:"history"`
	Test       Evaluation    `json:"test"`
	Baseline   float64       `json:"baseline_accuracy"`
	Importance []float64     `json:"feature_importance,omitempty"`
	Duration   float64       `json:"duration"`
}

// NewEncoder derives the schema of the given mode from the dataset.
func NewEncoder(ds dataset.Dataset, mode model.Mode, skew bool) (*feature.Encoder, error) {
	var schema feature.Schema
	switch mode {
	case model.ClusterMode:
		rows := make([]map[string]string, 0, ds.Len())
		for _, s := range ds.Samples {
			rows = append(rows, feature.AssignAll(s.Features))
		}
		schema = feature.ClusterSchema(rows)
	case model.FeatureMode:
		schema = feature.FeatureSchema()
	default:
		return nil, fmt.Errorf("unknown mode '%s'", mode)
	}
	return feature.NewEncoder(mode, skew, schema, schema.Width()), nil
}

// Encode turns the samples into rows of the encoder schema.
func Encode(enc *feature.Encoder, ds dataset.Dataset) ([][]float64, error) {
	x := make([][]float64, ds.Len())
	for i, s := range ds.Samples {
		row, err := enc.EncodeFeatures(s.Features)
		if err != nil {
			return nil, fmt.Errorf("could not encode sample %d: %w", i, err)
		}
		x[i] = row
	}
	return x, nil
}

// Labels returns the one-hot and the index encoding of the sample types.
func Labels(classes model.Classes, ds dataset.Dataset) ([][]float64, []int, error) {
	y := make([][]float64, ds.Len())
	idx := make([]int, ds.Len())
	for i, s := range ds.Samples {
		oneHot, err := classes.OneHot(s.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %d: %w", i, err)
		}
		y[i] = oneHot
		idx[i] = floats.MaxIdx(oneHot)
	}
	return y, idx, nil
}

// Centroids returns the mean row of every class.
func Centroids(x [][]float64, y []int, numClasses int) [][]float64 {
	width := 0
	if len(x) > 0 {
		width = len(x[0])
	}
	centroids := make([][]float64, numClasses)
	counts := make([]float64, numClasses)
	for c := range centroids {
		centroids[c] = make([]float64, width)
	}
	for i, row := range x {
		floats.Add(centroids[y[i]], row)
		counts[y[i]]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			floats.Scale(1/counts[c], centroids[c])
		}
	}
	return centroids
}

type part struct {
	x   [][]float64
	y   [][]float64
	idx []int
}

func prepare(enc *feature.Encoder, s *scaler.MinMax, classes model.Classes, ds dataset.Dataset, fit bool) (part, error) {
	x, err := Encode(enc, ds)
	if err != nil {
		return part{}, err
	}
	if fit {
		if err := s.Fit(x); err != nil {
			return part{}, fmt.Errorf("could not fit scaler: %w", err)
		}
	}
	if len(x) > 0 {
		x, err = s.TransformAll(x)
		if err != nil {
			return part{}, fmt.Errorf("could not scale: %w", err)
		}
	}
	y, idx, err := Labels(classes, ds)
	if err != nil {
		return part{}, err
	}
	return part{x: x, y: y, idx: idx}, nil
}

// Run trains a classifier on the dataset and returns the artifact bundle of the run.
func Run(ds dataset.Dataset, cfg Config) (*artifact.Bundle, Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.New().String(), Mode: cfg.Mode}
	if ds.Len() == 0 {
		return nil, report, fmt.Errorf("empty dataset")
	}

	splits, err := dataset.Split(ds, cfg.Split.Train, cfg.Split.Validation, cfg.Split.Test, cfg.Seed)
	if err != nil {
		return nil, report, fmt.Errorf("could not split dataset: %w", err)
	}
	report.Samples = [3]int{splits.Train.Len(), splits.Validation.Len(), splits.Test.Len()}

	classes := dataset.Classes(ds)
	report.Classes = classes
	enc, err := NewEncoder(ds, cfg.Mode, cfg.Skew)
	if err != nil {
		return nil, report, err
	}
	report.Columns = enc.Schema().Width()

	s := scaler.New()
	train, err := prepare(enc, s, classes, splits.Train, true)
	if err != nil {
		return nil, report, fmt.Errorf("could not prepare train split: %w", err)
	}
	val, err := prepare(enc, s, classes, splits.Validation, false)
	if err != nil {
		return nil, report, fmt.Errorf("could not prepare validation split: %w", err)
	}
	test, err := prepare(enc, s, classes, splits.Test, false)
	if err != nil {
		return nil, report, fmt.Errorf("could not prepare test split: %w", err)
	}

	network := net.New(enc.Schema().Width(), len(classes), cfg.Hidden, cfg.Seed)
	if len(cfg.Hidden) == 0 && cfg.WarmStart > 0 {
		if err := network.WarmStart(Centroids(train.x, train.idx, len(classes)), cfg.WarmStart); err != nil {
			return nil, report, fmt.Errorf("could not warm start network: %w", err)
		}
	}
	history, err := network.Fit(train.x, train.y, val.x, val.y, cfg.Optimizer)
	if err != nil {
		return nil, report, fmt.Errorf("could not train network: %w", err)
	}
	report.History = history

	var validation *artifact.Validation
	if len(val.x) > 0 {
		validation = &artifact.Validation{
			Logits: make([][]float64, len(val.x)),
			Labels: val.y,
		}
		for i, x := range val.x {
			logits, err := network.Logits(x)
			if err != nil {
				return nil, report, fmt.Errorf("could not capture validation logits: %w", err)
			}
			validation.Logits[i] = logits
		}
	}

	if len(test.x) > 0 {
		probs := make([][]float64, len(test.x))
		for i, x := range test.x {
			p, err := network.Predict(x)
			if err != nil {
				return nil, report, fmt.Errorf("could not evaluate network: %w", err)
			}
			probs[i] = p
		}
		evaluation, err := Evaluate(test.y, probs)
		if err != nil {
			return nil, report, fmt.Errorf("could not evaluate network: %w", err)
		}
		report.Test = evaluation
	} else {
		log.Warn().Str("run", report.RunID).Msg("no test samples to evaluate")
	}

	if cfg.Trees > 0 {
		forest := ml.NewForest(cfg.Trees)
		importance, err := forest.Train(train.x, train.idx)
		if err != nil {
			return nil, report, fmt.Errorf("could not train baseline: %w", err)
		}
		report.Importance = importance
		if len(test.x) > 0 {
			acc, err := forest.Accuracy(test.x, test.idx)
			if err != nil {
				return nil, report, fmt.Errorf("could not evaluate baseline: %w", err)
			}
			report.Baseline = acc
		}
	}

	bundle := &artifact.Bundle{
		Manifest: artifact.Manifest{
			RunID:   report.RunID,
			Mode:    cfg.Mode,
			Skew:    cfg.Skew && cfg.Mode == model.FeatureMode,
			Hidden:  network.Hidden(),
			Created: time.Now(),
		},
		Schema:     enc.Schema(),
		Classes:    classes,
		Scaler:     s,
		Network:    network,
		Validation: validation,
	}
	report.Duration = time.Since(start).Seconds()

	log.Info().
		Str("run", report.RunID).
		Str("mode", string(cfg.Mode)).
		Int("columns", report.Columns).
		Int("classes", len(classes)).
		Int("epochs", history.Epochs).
		Float64("accuracy", report.Test.Accuracy).
		Float64("f1", report.Test.F1).
		Float64("rmse", report.Test.RMSE).
		Float64("baseline", report.Baseline).
		Msg("training completed")
	return bundle, report, nil
}
