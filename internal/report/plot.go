// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package report renders session summaries: PNG plots with gonum/plot for
// the archive, and an ECharts HTML page for the browser.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// ErrNoCharts is returned for a summary without chart data.
var ErrNoCharts = errors.New("summary has no chart data")

// panel is one quantity of the summary drawn on its own plot.
type panel struct {
	file   string
	title  string
	yLabel string
	traces []session.Trace
}

func panels(c *session.Charts) []panel {
	return []panel{
		{"velocity.png", "Velocity", "Velocity (m/s)", c.Velocity},
		{"acceleration.png", "Acceleration", "Acceleration (m/s²)", c.Acceleration},
		{"gravity.png", "Gravity", "Gravity (g)", c.Gravity},
		{"rotation.png", "Rotation Rate", "Rotation (rad/s)", c.Rotation},
	}
}

// WritePlot draws traces as lines and writes a PNG to w.
func WritePlot(w io.Writer, title, yLabel string, traces []session.Trace) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = yLabel

	for i, tr := range traces {
		if len(tr.Points) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(tr.Points))
		for j, pt := range tr.Points {
			pts[j] = plotter.XY{X: pt.T, Y: pt.V}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s %s: %w", title, tr.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(tr.Name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// WritePlots writes one PNG per quantity into dir/<session id>/ and returns
// the written paths.
func WritePlots(dir string, sum session.Summary) ([]string, error) {
	if sum.Charts == nil {
		return nil, ErrNoCharts
	}

	out := filepath.Join(dir, sum.SessionID)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, err
	}

	var written []string
	for _, pn := range panels(sum.Charts) {
		path := filepath.Join(out, pn.file)
		if err := writeFile(path, func(w io.Writer) error {
			return WritePlot(w, pn.title, pn.yLabel, pn.traces)
		}); err != nil {
			return written, fmt.Errorf("plot %s: %w", pn.file, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
