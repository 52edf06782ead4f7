// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSample is returned for samples carrying NaN or Inf components.
var ErrInvalidSample = errors.New("invalid sample")

// Vec3 is a three-component vector (x, y, z).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Dot returns the scalar product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Scale returns v multiplied by k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

func (v Vec3) finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Sample represents a single device-motion reading.
type Sample struct {
	Seq uint64 `json:"seq"`

	Accel    Vec3 `json:"accel"`    // user acceleration, g
	Gravity  Vec3 `json:"gravity"`  // gravity direction, g
	Rotation Vec3 `json:"rotation"` // rotation rate, rad/s
}

// Validate rejects samples that would poison the cumulative sums.
func (s Sample) Validate() error {
	if !s.Accel.finite() {
		return fmt.Errorf("%w: seq %d: non-finite acceleration %+v", ErrInvalidSample, s.Seq, s.Accel)
	}
	if !s.Gravity.finite() {
		return fmt.Errorf("%w: seq %d: non-finite gravity %+v", ErrInvalidSample, s.Seq, s.Gravity)
	}
	if !s.Rotation.finite() {
		return fmt.Errorf("%w: seq %d: non-finite rotation %+v", ErrInvalidSample, s.Seq, s.Rotation)
	}
	return nil
}

// Source is anything that can provide motion samples over time.
type Source interface {
	Next() (Sample, error)
}
