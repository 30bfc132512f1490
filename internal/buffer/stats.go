package buffer

import (
	"fmt"
	"math"
)

// Column tracks the running range of one column of a table.
type Column struct {
	seen     bool
	min, max float64
}

// NewColumn creates an empty column profile.
func NewColumn() *Column {
	return &Column{
		min: math.Inf(1),
		max: math.Inf(-1),
	}
}

// Add pushes a value to the profile, non finite values are rejected.
func (c *Column) Add(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non finite value %v", v)
	}
	c.seen = true
	c.min = math.Min(c.min, v)
	c.max = math.Max(c.max, v)
	return nil
}

func (c Column) Min() float64 {
	return c.min
}

func (c Column) Max() float64 {
	return c.max
}

// Range is max - min, zero for an empty column.
func (c Column) Range() float64 {
	if !c.seen {
		return 0
	}
	return c.max - c.min
}

// Constant checks if every value pushed so far was the same.
func (c Column) Constant() bool {
	return c.Range() == 0
}

// Profile is a fixed width set of column profiles fed row by row.
type Profile struct {
	columns []*Column
}

// NewProfile creates a profile for rows of the given width.
func NewProfile(width int) *Profile {
	columns := make([]*Column, width)
	for i := range columns {
		columns[i] = NewColumn()
	}
	return &Profile{columns: columns}
}

// Add pushes one row; on error the profile is left untouched.
func (p *Profile) Add(row ...float64) error {
	if len(row) != len(p.columns) {
		return fmt.Errorf("row width %d does not match profile width %d", len(row), len(p.columns))
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("column %d: non finite value %v", i, v)
		}
	}
	for i, v := range row {
		// already checked
		_ = p.columns[i].Add(v)
	}
	return nil
}

func (p *Profile) Columns() []*Column {
	return p.columns
}

// Constant returns the indexes of the columns that never changed value.
func (p *Profile) Constant() []int {
	idx := make([]int, 0)
	for i, c := range p.columns {
		if c.Constant() {
			idx = append(idx, i)
		}
	}
	return idx
}
