// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package session owns the per-recording pipeline state: the three
// Cartesian integrators, the vertical chain and the raw gravity and rotation
// traces. A State lives for exactly one recording and is never reused.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/velocity_gauge/internal/kinematics"
	"github.com/relabs-tech/velocity_gauge/internal/motion"
	"github.com/relabs-tech/velocity_gauge/internal/reps"
	"github.com/relabs-tech/velocity_gauge/internal/series"
)

// ErrOutOfOrder is returned for a sample whose sequence number does not
// increase.
var ErrOutOfOrder = errors.New("sample out of order")

// Params are the pipeline settings for one session.
type Params struct {
	Dt                float64 // s
	AccelThreshold    float64 // m/s²
	VelocityThreshold float64 // m/s
	MinRepSamples     int
	Gravity           float64 // m/s²
	OpenRepPolicy     reps.OpenRepPolicy
	ChartDecimation   int
}

// DefaultParams returns the settings for a 100 Hz device-motion stream.
func DefaultParams() Params {
	return Params{
		Dt:                0.01,
		AccelThreshold:    0.05,
		VelocityThreshold: 0.1,
		MinRepSamples:     30,
		Gravity:           9.81,
		OpenRepPolicy:     reps.DropOpen,
		ChartDecimation:   10,
	}
}

// Telemetry is the per-sample output of the pipeline.
type Telemetry struct {
	SessionID string  `json:"session_id"`
	Seq       uint64  `json:"seq"`
	Index     int     `json:"index"`
	Elapsed   float64 `json:"elapsed"` // s since session start

	Accel            motion.Vec3 `json:"accel"` // m/s², noise gated
	VerticalAccel    float64     `json:"vertical_accel"`
	Velocity         motion.Vec3 `json:"velocity"` // m/s
	VerticalVelocity float64     `json:"vertical_velocity"`
	Gravity          motion.Vec3 `json:"gravity"` // g
	Rotation         motion.Vec3 `json:"rotation"`
}

// State is the exclusively owned pipeline state of one recording.
type State struct {
	ID      string
	Started time.Time

	params   Params
	x, y, z  *kinematics.Integrator
	vertical *kinematics.Projector
	gravity  [3]*series.Series
	rotation [3]*series.Series

	accepted int
	rejected int
	lastSeq  uint64
	haveSeq  bool
}

// NewState returns a fresh state with every series seeded.
func NewState(p Params) *State {
	s := &State{
		ID:       uuid.NewString(),
		Started:  time.Now(),
		params:   p,
		x:        kinematics.NewIntegrator(p.Dt, p.AccelThreshold),
		y:        kinematics.NewIntegrator(p.Dt, p.AccelThreshold),
		z:        kinematics.NewIntegrator(p.Dt, p.AccelThreshold),
		vertical: kinematics.NewProjector(p.Gravity, p.Dt, p.AccelThreshold),
	}
	for i := range s.gravity {
		s.gravity[i] = series.New()
		s.rotation[i] = series.New()
	}
	return s
}

// Push feeds one sample through the pipeline. A rejected sample leaves every
// series untouched and is counted in Rejected.
func (s *State) Push(sample motion.Sample) (Telemetry, error) {
	vertical, err := s.check(sample)
	if err != nil {
		s.rejected++
		return Telemetry{}, err
	}
	if sample.Seq != 0 {
		s.lastSeq = sample.Seq
		s.haveSeq = true
	}
	s.accepted++

	g := s.params.Gravity
	vx := s.x.Push(sample.Accel.X * g)
	vy := s.y.Push(sample.Accel.Y * g)
	vz := s.z.Push(sample.Accel.Z * g)
	vv := s.vertical.PushVertical(vertical)

	s.gravity[0].Append(sample.Gravity.X)
	s.gravity[1].Append(sample.Gravity.Y)
	s.gravity[2].Append(sample.Gravity.Z)
	s.rotation[0].Append(sample.Rotation.X)
	s.rotation[1].Append(sample.Rotation.Y)
	s.rotation[2].Append(sample.Rotation.Z)

	return Telemetry{
		SessionID: s.ID,
		Seq:       sample.Seq,
		Index:     s.accepted,
		Elapsed:   float64(s.accepted) * s.params.Dt,
		Accel: motion.Vec3{
			X: s.x.Acceleration(),
			Y: s.y.Acceleration(),
			Z: s.z.Acceleration(),
		},
		VerticalAccel:    s.vertical.Axis().Acceleration(),
		Velocity:         motion.Vec3{X: vx, Y: vy, Z: vz},
		VerticalVelocity: vv,
		Gravity:          sample.Gravity,
		Rotation:         sample.Rotation,
	}, nil
}

func (s *State) check(sample motion.Sample) (float64, error) {
	if err := sample.Validate(); err != nil {
		return 0, err
	}
	// Seq 0 marks an unsequenced sample.
	if sample.Seq != 0 && s.haveSeq && sample.Seq <= s.lastSeq {
		return 0, fmt.Errorf("%w: seq %d after %d", ErrOutOfOrder, sample.Seq, s.lastSeq)
	}
	vertical, err := s.vertical.Vertical(sample.Accel, sample.Gravity)
	if err != nil {
		return 0, fmt.Errorf("seq %d: %w", sample.Seq, err)
	}
	return vertical, nil
}

// Accepted returns the number of samples integrated so far.
func (s *State) Accepted() int {
	return s.accepted
}

// Rejected returns the number of dropped samples.
func (s *State) Rejected() int {
	return s.rejected
}

// Len returns the length of every series, including the seed.
func (s *State) Len() int {
	return s.x.VelocitySeries().Len()
}

// Finish runs drift correction and segmentation over a snapshot of the
// vertical velocity trace.
func (s *State) Finish() (Summary, error) {
	if s.accepted == 0 {
		return Summary{}, fmt.Errorf("session %s: no samples recorded: %w", s.ID, series.ErrEmptySeries)
	}

	corrected, err := kinematics.RemoveDrift(s.vertical.Axis().VelocitySeries().Values())
	if err != nil {
		return Summary{}, fmt.Errorf("session %s: drift correction: %w", s.ID, err)
	}

	seg := reps.NewSegmenter(s.params.MinRepSamples, s.params.VelocityThreshold)
	if s.params.OpenRepPolicy != "" {
		seg.OpenPolicy = s.params.OpenRepPolicy
	}
	repetitions, err := seg.Segment(corrected)
	if err != nil {
		return Summary{}, fmt.Errorf("session %s: segmentation: %w", s.ID, err)
	}

	return Summary{
		SessionID:    s.ID,
		StartedAt:    s.Started,
		Duration:     float64(s.accepted) * s.params.Dt,
		Samples:      s.accepted,
		Rejected:     s.rejected,
		Reps:         repetitions,
		PeakVelocity: reps.Peak(repetitions),
		Charts:       s.charts(corrected),
	}, nil
}

type finishResult struct {
	summary Summary
	err     error
}

// FinishAsync runs Finish on a worker goroutine and waits for its result or
// for ctx to end. The caller must not push to s afterwards.
func FinishAsync(ctx context.Context, s *State) (Summary, error) {
	done := make(chan finishResult, 1)
	go func() {
		sum, err := s.Finish()
		done <- finishResult{summary: sum, err: err}
	}()

	select {
	case r := <-done:
		return r.summary, r.err
	case <-ctx.Done():
		return Summary{}, fmt.Errorf("session %s: aggregation: %w", s.ID, ctx.Err())
	}
}
