package model

import "fmt"

// Classes is the ordered list of material types the classifier predicts.
// Probability index i always refers to Classes[i].
type Classes []string

// Index returns the position of the given label.
func (c Classes) Index(label string) (int, bool) {
	for i, cl := range c {
		if cl == label {
			return i, true
		}
	}
	return 0, false
}

// At returns the label at the given index.
func (c Classes) At(i int) (string, error) {
	if i < 0 || i >= len(c) {
		return "", fmt.Errorf("class index %d out of range [0,%d): %w", i, len(c), InternalErr)
	}
	return c[i], nil
}

// OneHot encodes the label as an indicator vector.
func (c Classes) OneHot(label string) ([]float64, error) {
	i, ok := c.Index(label)
	if !ok {
		return nil, fmt.Errorf("unknown class '%s'", label)
	}
	v := make([]float64, len(c))
	v[i] = 1
	return v, nil
}
