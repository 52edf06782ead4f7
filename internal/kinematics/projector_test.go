package kinematics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

func TestVerticalAcceleration(t *testing.T) {
	tests := []struct {
		name     string
		a, g     motion.Vec3
		expected float64
	}{
		{"aligned with gravity", motion.Vec3{Z: -0.5}, motion.Vec3{Z: -1}, 0.5 * 9.81},
		{"against gravity", motion.Vec3{Z: 0.5}, motion.Vec3{Z: -1}, -0.5 * 9.81},
		{"perpendicular", motion.Vec3{X: 0.7}, motion.Vec3{Z: -1}, 0},
		{"scaled gravity vector", motion.Vec3{Z: -0.5}, motion.Vec3{Z: -2}, 0.5 * 9.81},
		{"tilted", motion.Vec3{X: 1, Y: 0, Z: 0}, motion.Vec3{X: 0.6, Z: 0.8}, 0.6 * 9.81},
		{"zero acceleration", motion.Vec3{}, motion.Vec3{Y: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerticalAcceleration(tt.a, tt.g, 9.81)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestVerticalAccelerationDegenerate(t *testing.T) {
	_, err := VerticalAcceleration(motion.Vec3{X: 1}, motion.Vec3{}, 9.81)
	assert.True(t, errors.Is(err, ErrDegenerateInput))

	_, err = VerticalAcceleration(motion.Vec3{X: 1}, motion.Vec3{Z: 1e-12}, 9.81)
	assert.True(t, errors.Is(err, ErrDegenerateInput))
}

func TestProjectorPush(t *testing.T) {
	p := NewProjector(9.81, 0.01, 0.05)

	v, err := p.Push(motion.Vec3{Z: -0.1}, motion.Vec3{Z: -1})
	require.NoError(t, err)
	assert.InDelta(t, 0.981*0.01/2, v, 1e-12)

	_, err = p.Push(motion.Vec3{Z: -0.1}, motion.Vec3{})
	require.Error(t, err)

	// A rejected sample leaves the vertical axis untouched.
	assert.Equal(t, 2, p.Axis().VelocitySeries().Len())
	assert.InDelta(t, v, p.Axis().Velocity(), 1e-12)
}
