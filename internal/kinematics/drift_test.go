package kinematics

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/velocity_gauge/internal/series"
)

func TestRemoveDriftEmpty(t *testing.T) {
	got, err := RemoveDrift(nil)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, series.ErrEmptySeries))
}

func TestRemoveDriftEndpoints(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, n := range []int{1, 2, 3, 10, 101, 1000} {
		v := make([]float64, n)
		for i := 1; i < n; i++ {
			v[i] = v[i-1] + rng.NormFloat64()*0.1
		}

		got, err := RemoveDrift(v)
		require.NoError(t, err)
		require.Len(t, got, n)
		assert.Equal(t, 0.0, got[0], "n=%d first", n)
		assert.Equal(t, 0.0, got[n-1], "n=%d last", n)
	}
}

func TestRemoveDriftNonZeroStart(t *testing.T) {
	got, err := RemoveDrift([]float64{0.3, 1.1, -2, 4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 0.0, got[3])
}

func TestRemoveDriftLinearRamp(t *testing.T) {
	// Pure drift disappears entirely.
	v := make([]float64, 50)
	for i := range v {
		v[i] = 0.02 * float64(i)
	}

	got, err := RemoveDrift(v)
	require.NoError(t, err)
	for i, x := range got {
		assert.InDelta(t, 0.0, x, 1e-12, "index %d", i)
	}
}

func TestRemoveDriftKeepsPulse(t *testing.T) {
	v := []float64{0, 0.1, 1.1, 2.1, 1.1, 0.5}

	got, err := RemoveDrift(v)
	require.NoError(t, err)
	assert.InDelta(t, 2.1-0.3, got[3], 1e-12)
}
