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
	"github.com/relabs-tech/velocity_gauge/internal/motion"
	"github.com/relabs-tech/velocity_gauge/internal/report"
	"github.com/relabs-tech/velocity_gauge/internal/sensors"
	"github.com/relabs-tech/velocity_gauge/internal/session"
)

const aggregationTimeout = 10 * time.Second

// controller couples a sample source to a session recorder and switches the
// sampling rate with the recording state.
type controller struct {
	rec    *session.Recorder
	src    motion.Source
	status func(StatusMessage)

	active, idle time.Duration
	ticker       *time.Ticker

	rejected int
}

func (c *controller) setInterval(d time.Duration) {
	if c.ticker != nil {
		c.ticker.Reset(d)
	}
}

// handle applies one control action.
func (c *controller) handle(ctx context.Context, action string) error {
	switch action {
	case ActionStart:
		id, err := c.rec.Start()
		if err != nil {
			return err
		}
		c.rejected = 0
		c.setInterval(c.active)
		c.status(StatusMessage{State: StateRecording, SessionID: id})
		return nil

	case ActionStop:
		c.setInterval(c.idle)
		ctx, cancel := context.WithTimeout(ctx, aggregationTimeout)
		defer cancel()
		sum, err := c.rec.Stop(ctx)
		c.status(StatusMessage{State: StateIdle, SessionID: sum.SessionID})
		return err

	default:
		return fmt.Errorf("unknown control action %q", action)
	}
}

// tick reads one sample and feeds it to the active session. Samples read
// while idle are discarded. Only source errors are returned.
func (c *controller) tick() error {
	sample, err := c.src.Next()
	if err != nil {
		return err
	}
	if err := c.rec.Push(sample); err != nil {
		if errors.Is(err, session.ErrNotRecording) {
			return nil
		}
		c.rejected++
		log.Printf("recorder: dropped sample %d: %v (%d dropped this session)", sample.Seq, err, c.rejected)
	}
	return nil
}

// stopIfRecording closes the active session, if any.
func (c *controller) stopIfRecording(ctx context.Context) {
	if _, ok := c.rec.Recording(); !ok {
		return
	}
	if err := c.handle(ctx, ActionStop); err != nil {
		log.Printf("recorder: stop: %v", err)
	}
}

// RunRecorder samples the configured source, records sessions on MQTT
// control messages and publishes telemetry, summaries and status.
func RunRecorder() error {
	cfg := config.Get()

	src, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDRecorder)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	sinks := []session.Sink{&mqttSink{
		client:         client,
		telemetryTopic: cfg.TopicTelemetry,
		summaryTopic:   cfg.TopicSummary,
	}}
	if cfg.PlotOutputDir != "" {
		sinks = append(sinks, report.PlotSink{Dir: cfg.PlotOutputDir})
	}
	rec := session.NewRecorder(cfg.SessionParams(), sinks...)

	controlCh := make(chan string, 8)
	if err := subscribeJSON(client, cfg.TopicControl, func(m ControlMessage) {
		select {
		case controlCh <- m.Action:
		default:
			log.Printf("recorder: control queue full, dropping %q", m.Action)
		}
	}); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.IdleInterval())
	defer ticker.Stop()

	c := &controller{
		rec: rec,
		src: src,
		status: func(s StatusMessage) {
			if err := publishJSON(client, cfg.TopicStatus, 1, true, s); err != nil {
				log.Printf("recorder: %v", err)
			}
		},
		active: cfg.ActiveInterval(),
		idle:   cfg.IdleInterval(),
		ticker: ticker,
	}
	c.status(StatusMessage{State: StateIdle})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("recorder: waiting for control messages on %s", cfg.TopicControl)
	for {
		select {
		case <-ctx.Done():
			log.Println("recorder: shutting down")
			c.stopIfRecording(context.Background())
			return nil

		case action := <-controlCh:
			if err := c.handle(ctx, action); err != nil {
				log.Printf("recorder: %s: %v", action, err)
			}

		case <-ticker.C:
			if err := c.tick(); err != nil {
				if errors.Is(err, io.EOF) {
					log.Println("recorder: sample source exhausted")
					c.stopIfRecording(ctx)
					return nil
				}
				log.Printf("recorder: sample source: %v", err)
			}
		}
	}
}
