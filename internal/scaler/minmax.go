package scaler

import (
	"fmt"

	"github.com/drakos74/geotextile/internal/buffer"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/rs/zerolog/log"
)

// MinMax maps every column affinely with (x - min) / (max - min).
// Values outside the fitted range are not clamped.
type MinMax struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// New creates an unfitted scaler.
func New() *MinMax {
	return &MinMax{}
}

// Fitted checks if the scaler holds a fitted range.
func (s *MinMax) Fitted() bool {
	return s != nil && len(s.Min) > 0 && len(s.Min) == len(s.Max)
}

// Width is the number of columns the scaler was fitted on.
func (s *MinMax) Width() int {
	if !s.Fitted() {
		return 0
	}
	return len(s.Min)
}

// Fit records the per column range of the given rows.
func (s *MinMax) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("cannot fit scaler on empty data")
	}
	profile := buffer.NewProfile(len(rows[0]))
	for i, row := range rows {
		if err := profile.Add(row...); err != nil {
			return fmt.Errorf("could not fit row %d: %v: %w", i, err, model.ValidationErr)
		}
	}
	columns := profile.Columns()
	s.Min = make([]float64, len(columns))
	s.Max = make([]float64, len(columns))
	for i, c := range columns {
		s.Min[i] = c.Min()
		s.Max[i] = c.Max()
	}
	if constant := profile.Constant(); len(constant) > 0 {
		log.Debug().Ints("columns", constant).Msg("constant columns scaled with unit range")
	}
	return nil
}

// FitTransform fits the scaler and transforms the same rows.
func (s *MinMax) FitTransform(rows [][]float64) ([][]float64, error) {
	if err := s.Fit(rows); err != nil {
		return nil, err
	}
	return s.TransformAll(rows)
}

// scale returns the column range, constant columns are treated as unit range.
func (s *MinMax) scale(i int) float64 {
	r := s.Max[i] - s.Min[i]
	if r == 0 {
		return 1
	}
	return r
}

func (s *MinMax) check(row []float64) error {
	if !s.Fitted() {
		return fmt.Errorf("scaler used before fit: %w", model.NotFittedErr)
	}
	if len(row) != len(s.Min) {
		return fmt.Errorf("row has %d columns but scaler was fitted on %d: %w", len(row), len(s.Min), model.SchemaMismatchErr)
	}
	return nil
}

// Transform scales a single row.
func (s *MinMax) Transform(row []float64) ([]float64, error) {
	if err := s.check(row); err != nil {
		return nil, err
	}
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = (x - s.Min[i]) / s.scale(i)
	}
	return out, nil
}

// TransformAll scales all rows.
func (s *MinMax) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		r, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("could not transform row %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// InverseTransform maps a scaled row back to the original range.
func (s *MinMax) InverseTransform(row []float64) ([]float64, error) {
	if err := s.check(row); err != nil {
		return nil, err
	}
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x*s.scale(i) + s.Min[i]
	}
	return out, nil
}
