package series

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSeeded(t *testing.T) {
	s := New()

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0.0, s.Last())
	assert.Equal(t, []float64{0}, s.Values())
}

func TestAppend(t *testing.T) {
	s := NewWithCapacity(4)
	s.Append(1.5)
	s.Append(-2)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, -2.0, s.Last())

	v, err := s.At(1)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}

func TestAtOutOfRange(t *testing.T) {
	s := New()

	_, err := s.At(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.At(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestValuesIsSnapshot(t *testing.T) {
	s := New()
	s.Append(1)

	snap := s.Values()
	snap[0] = 99
	s.Append(2)

	assert.Equal(t, []float64{99, 1}, snap)
	assert.Equal(t, []float64{0, 1, 2}, s.Values())
}

func TestMean(t *testing.T) {
	m, err := Mean([]float64{1, 2, 3, 6})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, m, 1e-12)

	_, err = Mean(nil)
	assert.True(t, errors.Is(err, ErrEmptySeries))
}
