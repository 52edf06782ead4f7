package kinematics

import "github.com/relabs-tech/velocity_gauge/internal/series"

// RemoveDrift subtracts the straight line joining the first and last values
// of v, assuming the subject is at rest at both ends. The result starts and
// ends at exactly zero. The slope form V[N-1]/N would leave a residual of
// V[N-1]/N at the last sample.
func RemoveDrift(v []float64) ([]float64, error) {
	n := len(v)
	if n == 0 {
		return nil, series.ErrEmptySeries
	}

	out := make([]float64, n)
	if n == 1 {
		return out, nil
	}

	drift := v[n-1] - v[0]
	last := float64(n - 1)
	for i, x := range v {
		out[i] = (x - v[0]) - drift*(float64(i)/last)
	}
	return out, nil
}
