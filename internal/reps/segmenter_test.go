package reps

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangle returns pad zeros, a symmetric pulse of the given width and peak,
// and pad zeros again.
func triangle(width int, peak float64, pad int) []float64 {
	v := make([]float64, 0, width+2*pad+1)
	v = append(v, make([]float64, pad)...)
	half := float64(width) / 2
	for i := 0; i <= width; i++ {
		d := float64(i) - half
		if d < 0 {
			d = -d
		}
		v = append(v, peak*(1-d/half))
	}
	return append(v, make([]float64, pad)...)
}

func TestSegmentTriangularPulse(t *testing.T) {
	seg := NewSegmenter(30, 0.1)

	t.Run("wide pulse is one repetition", func(t *testing.T) {
		for _, width := range []int{40, 60, 120} {
			got, err := seg.Segment(triangle(width, 1.4, 10))
			require.NoError(t, err)
			require.Len(t, got, 1, "width %d", width)
			assert.InDelta(t, 1.4, got[0].MaxVelocity, 1e-9)
			assert.GreaterOrEqual(t, got[0].Samples(), 30)
			assert.Greater(t, got[0].MeanVelocity, 0.0)
			assert.Less(t, got[0].MeanVelocity, 1.4)
		}
	})

	t.Run("narrow pulse is noise", func(t *testing.T) {
		for _, width := range []int{4, 20, 29} {
			got, err := seg.Segment(triangle(width, 1.4, 10))
			require.NoError(t, err)
			assert.Empty(t, got, "width %d", width)
		}
	})
}

func TestSegmentBoundaries(t *testing.T) {
	v := []float64{0, 0.5, 1.0, 0.5, 0, 0.2, 0.05, 0, 0.3, 0.6, 0.3, 0.2, 0}
	seg := NewSegmenter(3, 0.1)

	got, err := seg.Segment(v)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].StartIndex)
	assert.Equal(t, 4, got[0].EndIndex)
	assert.Equal(t, 1.0, got[0].MaxVelocity)
	assert.InDelta(t, 2.0/3.0, got[0].MeanVelocity, 1e-12)

	// [5,6) is too short and dropped, not merged into the next repetition.
	assert.Equal(t, 8, got[1].StartIndex)
	assert.Equal(t, 12, got[1].EndIndex)
	assert.Equal(t, 0.6, got[1].MaxVelocity)
	assert.InDelta(t, 0.35, got[1].MeanVelocity, 1e-12)
}

func TestSegmentNegativeDipKeepsRepOpen(t *testing.T) {
	seg := NewSegmenter(1, 0.1)

	got, err := seg.Segment([]float64{0, 0.5, -0.5, 0.5, 0})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Repetition{StartIndex: 1, EndIndex: 4, MaxVelocity: 0.5, MeanVelocity: 0.5 / 3}, got[0])
}

func TestSegmentOnlyNegative(t *testing.T) {
	seg := NewSegmenter(1, 0.1)

	got, err := seg.Segment([]float64{0, -0.5, -1, -0.5, 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentOpenRepetition(t *testing.T) {
	v := []float64{0, 0.5, 0.7, 0.5, 0.5}

	t.Run("drop", func(t *testing.T) {
		seg := NewSegmenter(3, 0.1)
		got, err := seg.Segment(v)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("close", func(t *testing.T) {
		seg := NewSegmenter(3, 0.1)
		seg.OpenPolicy = CloseOpen
		got, err := seg.Segment(v)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].StartIndex)
		assert.Equal(t, 5, got[0].EndIndex)
		assert.Equal(t, 0.7, got[0].MaxVelocity)
		assert.InDelta(t, 0.55, got[0].MeanVelocity, 1e-12)
	})

	t.Run("close still applies minimum length", func(t *testing.T) {
		seg := NewSegmenter(3, 0.1)
		seg.OpenPolicy = CloseOpen
		got, err := seg.Segment([]float64{0, 0, 0, 0.5, 0.5})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSegmentEmptyInput(t *testing.T) {
	got, err := NewSegmenter(30, 0.1).Segment(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSegmentIsPure(t *testing.T) {
	v := append(triangle(50, 1, 5), triangle(80, 2, 5)...)
	orig := slices.Clone(v)
	seg := NewSegmenter(30, 0.1)

	first, err := seg.Segment(v)
	require.NoError(t, err)
	second, err := seg.Segment(v)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, v)
	require.Len(t, first, 2)
	assert.Less(t, first[0].EndIndex, first[1].EndIndex)
}

func TestParseOpenRepPolicy(t *testing.T) {
	p, err := ParseOpenRepPolicy("close")
	require.NoError(t, err)
	assert.Equal(t, CloseOpen, p)

	p, err = ParseOpenRepPolicy("drop")
	require.NoError(t, err)
	assert.Equal(t, DropOpen, p)

	_, err = ParseOpenRepPolicy("keep")
	assert.Error(t, err)
}

func TestPeak(t *testing.T) {
	assert.Equal(t, 0.0, Peak(nil))
	assert.Equal(t, 2.5, Peak([]Repetition{{MaxVelocity: 1}, {MaxVelocity: 2.5}, {MaxVelocity: 0.3}}))
}
