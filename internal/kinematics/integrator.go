// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package kinematics turns acceleration samples into velocity: per-axis
// trapezoidal integration, projection onto the gravity vector and
// end-of-session drift removal.
package kinematics

import (
	"math"

	"github.com/relabs-tech/velocity_gauge/internal/series"
)

// Integrator accumulates velocity from a noise-gated acceleration stream.
// The acceleration and velocity series always have the same length.
type Integrator struct {
	dt        float64
	threshold float64

	accel    *series.Series
	velocity *series.Series
}

// NewIntegrator returns an integrator with step dt (s) that zeroes
// accelerations whose magnitude is below threshold (m/s²).
func NewIntegrator(dt, threshold float64) *Integrator {
	return &Integrator{
		dt:        dt,
		threshold: threshold,
		accel:     series.New(),
		velocity:  series.New(),
	}
}

// Push integrates one acceleration sample and returns the new velocity.
func (in *Integrator) Push(a float64) float64 {
	if math.Abs(a) < in.threshold {
		a = 0
	}

	prev := in.accel.Last()
	dv := prev*in.dt + (a-prev)*(in.dt/2)
	v := in.velocity.Last() + dv

	in.accel.Append(a)
	in.velocity.Append(v)
	return v
}

// Velocity returns the latest velocity.
func (in *Integrator) Velocity() float64 {
	return in.velocity.Last()
}

// Acceleration returns the latest gated acceleration.
func (in *Integrator) Acceleration() float64 {
	return in.accel.Last()
}

// AccelSeries returns the gated acceleration series.
func (in *Integrator) AccelSeries() *series.Series {
	return in.accel
}

// VelocitySeries returns the velocity series.
func (in *Integrator) VelocitySeries() *series.Series {
	return in.velocity
}
