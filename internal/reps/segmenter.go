// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package reps splits a drift-corrected vertical velocity trace into
// repetitions: contiguous runs of positive velocity long enough to count as
// one cycle of motion.
package reps

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/relabs-tech/velocity_gauge/internal/series"
)

// OpenRepPolicy decides what happens to a repetition that is still open
// when the trace ends.
type OpenRepPolicy string

const (
	// DropOpen discards a repetition that never returns to rest.
	DropOpen OpenRepPolicy = "drop"
	// CloseOpen closes it at the end of the trace.
	CloseOpen OpenRepPolicy = "close"
)

// ParseOpenRepPolicy validates a policy name.
func ParseOpenRepPolicy(s string) (OpenRepPolicy, error) {
	switch p := OpenRepPolicy(s); p {
	case DropOpen, CloseOpen:
		return p, nil
	default:
		return "", fmt.Errorf("unknown open repetition policy %q (want %q or %q)", s, DropOpen, CloseOpen)
	}
}

// Repetition is one committed interval [StartIndex, EndIndex) of the trace.
type Repetition struct {
	StartIndex   int     `json:"start_index"`
	EndIndex     int     `json:"end_index"`
	MaxVelocity  float64 `json:"max_velocity"`
	MeanVelocity float64 `json:"mean_velocity"`
}

// Samples returns the length of the repetition in samples.
func (r Repetition) Samples() int {
	return r.EndIndex - r.StartIndex
}

// Segmenter holds the thresholds used to find repetitions.
type Segmenter struct {
	MinSamples        int
	VelocityThreshold float64
	OpenPolicy        OpenRepPolicy
}

// NewSegmenter returns a segmenter with the given thresholds and the
// default DropOpen policy.
func NewSegmenter(minSamples int, velocityThreshold float64) Segmenter {
	return Segmenter{
		MinSamples:        minSamples,
		VelocityThreshold: velocityThreshold,
		OpenPolicy:        DropOpen,
	}
}

// Segment scans v and returns the committed repetitions in the order they
// end. It does not modify v.
func (s Segmenter) Segment(v []float64) ([]Repetition, error) {
	var (
		out     []Repetition
		maximum float64
		start   int
	)

	for i, x := range v {
		value := x
		if math.Abs(x) < s.VelocityThreshold {
			value = 0
		}

		if value > 0 && maximum == 0 {
			start = i
		}
		if value > 0 && value > maximum {
			maximum = value
		}

		if value == 0 && maximum != 0 {
			rep, ok, err := s.commit(v, start, i, maximum)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, rep)
			}
			maximum = 0
		}
	}

	if maximum != 0 && s.OpenPolicy == CloseOpen {
		rep, ok, err := s.commit(v, start, len(v), maximum)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rep)
		}
	}
	return out, nil
}

// commit builds the repetition for [start, end) unless it is too short.
func (s Segmenter) commit(v []float64, start, end int, maximum float64) (Repetition, bool, error) {
	if end-start < s.MinSamples {
		return Repetition{}, false, nil
	}
	mean, err := series.Mean(v[start:end])
	if err != nil {
		return Repetition{}, false, fmt.Errorf("repetition [%d,%d): %w", start, end, err)
	}
	return Repetition{
		StartIndex:   start,
		EndIndex:     end,
		MaxVelocity:  maximum,
		MeanVelocity: mean,
	}, true, nil
}

// Peak returns the highest MaxVelocity across reps, or 0 if there are none.
func Peak(reps []Repetition) float64 {
	if len(reps) == 0 {
		return 0
	}
	maxes := make([]float64, len(reps))
	for i, r := range reps {
		maxes[i] = r.MaxVelocity
	}
	return floats.Max(maxes)
}
