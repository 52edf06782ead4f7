// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package filter provides a fixed-gain g-h (alpha-beta) tracking filter.
//
// Each step predicts the next value from the current estimate and its rate
// of change, then corrects both with the residual against the measurement:
//
//	predicted = x0 + dx*dt
//	residual  = z - predicted
//	dx       += h * residual / dt
//	x0        = predicted + g*residual
package filter

import (
	"errors"
	"fmt"
	"iter"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrConfig is returned when gains or the time step are out of range.
var ErrConfig = errors.New("invalid filter configuration")

// Params is the initial state and gains of a GHFilter.
type Params struct {
	X0 float64 `json:"x0"`
	Dx float64 `json:"dx"`
	G  float64 `json:"g"`
	H  float64 `json:"h"`
	Dt float64 `json:"dt"`
}

// Validate checks g,h in [0,1] and dt > 0.
func (p Params) Validate() error {
	if p.G < 0 || p.G > 1 {
		return fmt.Errorf("%w: g must be in [0,1], got %g", ErrConfig, p.G)
	}
	if p.H < 0 || p.H > 1 {
		return fmt.Errorf("%w: h must be in [0,1], got %g", ErrConfig, p.H)
	}
	if !(p.Dt > 0) {
		return fmt.Errorf("%w: dt must be > 0, got %g", ErrConfig, p.Dt)
	}
	return nil
}

// GHFilter holds the filter state. X0 is always the latest estimate and Dx
// the latest estimated rate of change.
type GHFilter struct {
	X0 float64
	Dx float64
	G  float64
	H  float64
	Dt float64
}

// New returns a filter initialised from p.
func New(p Params) (*GHFilter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &GHFilter{X0: p.X0, Dx: p.Dx, G: p.G, H: p.H, Dt: p.Dt}, nil
}

// Filter runs one predict/correct step with measurement z and returns the
// new estimate.
func (f *GHFilter) Filter(z float64) float64 {
	predicted := f.X0 + f.Dx*f.Dt
	residual := z - predicted
	f.Dx += f.H * (residual / f.Dt)
	f.X0 = predicted + f.G*residual
	return f.X0
}

// FilterAll runs Filter over zs in order and returns one estimate per
// measurement. Earlier estimates are never revised.
func (f *GHFilter) FilterAll(zs []float64) []float64 {
	out := make([]float64, len(zs))
	for i, z := range zs {
		out[i] = f.Filter(z)
	}
	return out
}

// Reset re-seeds the state, keeping the gains.
func (f *GHFilter) Reset(x0, dx float64) {
	f.X0 = x0
	f.Dx = dx
}

// GenData returns a finite sequence of count values x0 + i*dx with
// standard-normal noise scaled by noiseFactor added to each element.
// The sequence is lazy and can be ranged over more than once; noise is
// redrawn on every pass.
func GenData(x0, dx float64, count int, noiseFactor float64) iter.Seq[float64] {
	noise := distuv.Normal{Mu: 0, Sigma: 1}
	return func(yield func(float64) bool) {
		for i := 0; i < count; i++ {
			v := x0 + float64(i)*dx
			if noiseFactor != 0 {
				v += noise.Rand() * noiseFactor
			}
			if !yield(v) {
				return
			}
		}
	}
}
