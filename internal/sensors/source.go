// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors provides the device-motion sample sources: the MPU9250
// over SPI, a CSV stream on a serial port, a CSV replay file and a mock.
package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

// Source is a motion.Source that holds a device or file open.
type Source interface {
	motion.Source
	Close() error
}

// Open returns the source selected by cfg.SampleSource.
func Open(cfg *config.Config) (Source, error) {
	log.Printf("sensors: opening %s source", cfg.SampleSource)
	switch cfg.SampleSource {
	case "mock":
		return NewMockSource(DefaultMockProfile(cfg.SampleInterval)), nil
	case "mpu9250":
		return NewMPU9250Source(cfg)
	case "serial":
		return NewSerialSource(cfg.SerialPort, cfg.SerialBaudRate)
	case "replay":
		return NewReplaySource(cfg.ReplayFile)
	default:
		return nil, fmt.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}
