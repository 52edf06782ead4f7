// Package series holds the append-only scalar sequences recorded per axis
// during a session.
package series

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptySeries is returned when an operation needs at least one value.
var ErrEmptySeries = errors.New("empty series")

// ErrIndexOutOfRange is returned by At for an index past either end.
var ErrIndexOutOfRange = errors.New("index out of range")

// Series is an append-only sequence of scalars indexed by sample number.
// It is seeded with a single zero so Last always has a value.
type Series struct {
	values []float64
}

// New returns a series seeded with 0.
func New() *Series {
	return NewWithCapacity(0)
}

// NewWithCapacity returns a seeded series with room for n further values.
func NewWithCapacity(n int) *Series {
	values := make([]float64, 1, n+1)
	return &Series{values: values}
}

// Append adds v at the end.
func (s *Series) Append(v float64) {
	s.values = append(s.values, v)
}

// Last returns the most recent value.
func (s *Series) Last() float64 {
	return s.values[len(s.values)-1]
}

// At returns the value at index i.
func (s *Series) At(i int) (float64, error) {
	if i < 0 || i >= len(s.values) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(s.values))
	}
	return s.values[i], nil
}

// Len returns the number of values, including the seed.
func (s *Series) Len() int {
	return len(s.values)
}

// Values returns a copy of the series.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Mean returns the arithmetic mean of v.
func Mean(v []float64) (float64, error) {
	if len(v) == 0 {
		return 0, ErrEmptySeries
	}
	return stat.Mean(v, nil), nil
}
