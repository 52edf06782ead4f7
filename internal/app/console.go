// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/sensors"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

// consoleSink prints pipeline output as text lines.
type consoleSink struct {
	w         io.Writer
	telemetry bool
}

func (c consoleSink) Sample(t session.Telemetry) {
	if c.telemetry {
		printTelemetry(c.w, t)
	}
}

func (c consoleSink) Summary(sum session.Summary) {
	printSummary(c.w, sum)
}

func printTelemetry(w io.Writer, t session.Telemetry) {
	fmt.Fprintf(w,
		"[VEL]  t=%7.2fs  a=%6.2f m/s²  v=%6.2f m/s  g=(%5.2f %5.2f %5.2f)\n",
		t.Elapsed, t.VerticalAccel, t.VerticalVelocity,
		t.Gravity.X, t.Gravity.Y, t.Gravity.Z,
	)
}

func printStatus(w io.Writer, s StatusMessage) {
	if s.SessionID == "" {
		fmt.Fprintf(w, "[STAT] %s\n", s.State)
		return
	}
	fmt.Fprintf(w, "[STAT] %s  session=%s\n", s.State, s.SessionID)
}

func printSummary(w io.Writer, sum session.Summary) {
	if sum.Failed() {
		fmt.Fprintf(w, "[SUM]  session %s failed: %s\n", sum.SessionID, sum.Error)
		return
	}
	fmt.Fprintf(w, "[SUM]  session %s  %d samples (%d rejected)  %.2fs  reps=%d  peak=%.2f m/s\n",
		sum.SessionID, sum.Samples, sum.Rejected, sum.Duration, len(sum.Reps), sum.PeakVelocity)
	for i, r := range sum.Results() {
		fmt.Fprintf(w, "[REP %2d]  max=%5.2f m/s  mean=%5.2f m/s  samples=%d\n",
			i+1, r.MaxVelocity, r.MeanVelocity, sum.Reps[i].Samples())
	}
}

// RunConsole records one session from the configured source without MQTT
// and prints it. A zero duration records until Ctrl+C.
func RunConsole(duration time.Duration) error {
	cfg := config.Get()

	src, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	out := os.Stdout
	rec := session.NewRecorder(cfg.SessionParams(), consoleSink{w: out, telemetry: true})

	ticker := time.NewTicker(cfg.ActiveInterval())
	defer ticker.Stop()

	c := &controller{
		rec:    rec,
		src:    src,
		status: func(s StatusMessage) { printStatus(out, s) },
		active: cfg.ActiveInterval(),
		idle:   cfg.ActiveInterval(),
		ticker: ticker,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	if err := c.handle(ctx, ActionStart); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return c.handle(context.Background(), ActionStop)
		case <-ticker.C:
			if err := c.tick(); err != nil {
				if errors.Is(err, io.EOF) {
					return c.handle(context.Background(), ActionStop)
				}
				log.Printf("console: sample source: %v", err)
			}
		}
	}
}
