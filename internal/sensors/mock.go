// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

// MockProfile describes a repeating lift: constant upward acceleration for
// Lift samples, the same deceleration for Lift samples, then Rest samples
// at rest.
type MockProfile struct {
	Dt    float64 // s
	Lift  int
	Rest  int
	Peak  float64 // m/s²
	Noise float64 // g, standard deviation
	Seed  uint64
}

// DefaultMockProfile returns half-second lifts at 2 m/s² (about 1 m/s peak)
// separated by one second of rest.
func DefaultMockProfile(dt float64) MockProfile {
	lift := int(math.Round(0.5 / dt))
	return MockProfile{
		Dt:    dt,
		Lift:  lift,
		Rest:  2 * lift,
		Peak:  2,
		Noise: 0.002,
		Seed:  1,
	}
}

type mockSource struct {
	profile MockProfile
	noise   distuv.Normal
	seq     uint64
}

// NewMockSource creates a source that generates synthetic lifts with the
// device lying flat, face up.
func NewMockSource(p MockProfile) Source {
	return &mockSource{
		profile: p,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewPCG(p.Seed, p.Seed),
		},
	}
}

// Upward returns the upward acceleration (m/s²) at sample i of the profile.
func (p MockProfile) Upward(i int) float64 {
	period := 2*p.Lift + p.Rest
	if period <= 0 {
		return 0
	}
	switch phase := i % period; {
	case phase < p.Lift:
		return p.Peak
	case phase < 2*p.Lift:
		return -p.Peak
	default:
		return 0
	}
}

func (m *mockSource) Next() (motion.Sample, error) {
	i := int(m.seq)
	m.seq++
	t := float64(i) * m.profile.Dt

	up := m.profile.Upward(i) / 9.81
	return motion.Sample{
		Seq: m.seq,
		Accel: motion.Vec3{
			X: m.jitter(),
			Y: m.jitter(),
			Z: -up + m.jitter(),
		},
		Gravity: motion.Vec3{Z: -1},
		Rotation: motion.Vec3{
			X: 0.05 * math.Sin(t),
			Y: 0.05 * math.Cos(t*0.7),
		},
	}, nil
}

func (m *mockSource) jitter() float64 {
	if m.profile.Noise == 0 {
		return 0
	}
	return m.noise.Rand() * m.profile.Noise
}

func (m *mockSource) Close() error {
	return nil
}
