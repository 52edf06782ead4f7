package kinematics

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

// ErrDegenerateInput is returned when the gravity vector is too short to
// define a vertical direction.
var ErrDegenerateInput = errors.New("degenerate input")

const gravityEpsilon = 1e-9

// VerticalAcceleration projects a onto g (both in g units) and returns the
// signed length of the projection in m/s². The sign follows dot(g, a).
func VerticalAcceleration(a, g motion.Vec3, gravity float64) (float64, error) {
	mag := g.Norm()
	if mag < gravityEpsilon {
		return 0, fmt.Errorf("%w: gravity magnitude %g", ErrDegenerateInput, mag)
	}

	dot := g.Dot(a)
	proj := g.Scale(dot / (mag * mag) * gravity)

	var sign float64
	switch {
	case dot > 0:
		sign = 1
	case dot < 0:
		sign = -1
	}
	return sign * proj.Norm(), nil
}

// Projector isolates the vertical component of each sample and integrates
// it on its own axis.
type Projector struct {
	gravity float64
	axis    *Integrator
}

// NewProjector returns a projector using gravitational constant gravity
// (m/s²) and a dedicated integrator.
func NewProjector(gravity, dt, threshold float64) *Projector {
	return &Projector{
		gravity: gravity,
		axis:    NewIntegrator(dt, threshold),
	}
}

// Vertical computes the vertical acceleration without touching state.
func (p *Projector) Vertical(a, g motion.Vec3) (float64, error) {
	return VerticalAcceleration(a, g, p.gravity)
}

// PushVertical integrates an already projected vertical acceleration.
func (p *Projector) PushVertical(vertical float64) float64 {
	return p.axis.Push(vertical)
}

// Push projects and integrates one sample. On error nothing is recorded.
func (p *Projector) Push(a, g motion.Vec3) (float64, error) {
	vertical, err := p.Vertical(a, g)
	if err != nil {
		return 0, err
	}
	return p.PushVertical(vertical), nil
}

// Axis returns the vertical integrator.
func (p *Projector) Axis() *Integrator {
	return p.axis
}
