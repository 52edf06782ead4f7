package session

import (
	"github.com/relabs-tech/velocity_gauge/internal/series"
)

// Point is one (time, value) pair of a chart trace.
type Point struct {
	T float64 `json:"t"` // s
	V float64 `json:"v"`
}

// Trace is a named, decimated chart line.
type Trace struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Charts groups the traces of one session by physical quantity.
type Charts struct {
	Acceleration []Trace `json:"acceleration"` // m/s²
	Velocity     []Trace `json:"velocity"`     // m/s
	Gravity      []Trace `json:"gravity"`      // g
	Rotation     []Trace `json:"rotation"`     // rad/s
}

func (s *State) charts(corrected []float64) *Charts {
	step := s.params.ChartDecimation
	if step < 1 {
		step = 1
	}
	dt := s.params.Dt

	return &Charts{
		Acceleration: []Trace{
			decimate("x", s.x.AccelSeries().Values(), step, dt),
			decimate("y", s.y.AccelSeries().Values(), step, dt),
			decimate("z", s.z.AccelSeries().Values(), step, dt),
			decimate("vertical", s.vertical.Axis().AccelSeries().Values(), step, dt),
		},
		Velocity: []Trace{
			decimate("x", s.x.VelocitySeries().Values(), step, dt),
			decimate("y", s.y.VelocitySeries().Values(), step, dt),
			decimate("z", s.z.VelocitySeries().Values(), step, dt),
			decimate("vertical", corrected, step, dt),
		},
		Gravity:  axisTraces(s.gravity, step, dt),
		Rotation: axisTraces(s.rotation, step, dt),
	}
}

func axisTraces(axes [3]*series.Series, step int, dt float64) []Trace {
	names := [3]string{"x", "y", "z"}
	out := make([]Trace, 0, len(axes))
	for i, a := range axes {
		out = append(out, decimate(names[i], a.Values(), step, dt))
	}
	return out
}

// decimate keeps every step-th value, always including index 0.
func decimate(name string, v []float64, step int, dt float64) Trace {
	pts := make([]Point, 0, len(v)/step+1)
	for i := 0; i < len(v); i += step {
		pts = append(pts, Point{T: float64(i) * dt, V: v[i]})
	}
	return Trace{Name: name, Points: pts}
}
