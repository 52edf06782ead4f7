// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"math"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/velocity_gauge/internal/config"
	"github.com/relabs-tech/velocity_gauge/internal/filter"
	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

// LSB per unit at the narrowest range; each range step halves it.
const (
	accelLSBPerG   = 16384.0 // ±2g
	gyroLSBPerDegS = 131.0   // ±250°/s
)

// RawReading is one accelerometer and gyroscope read in chip units.
type RawReading struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

// GravityTracker separates gravity from user acceleration with one g-h
// filter per axis. The filters are seeded from the first reading.
type GravityTracker struct {
	params filter.Params
	axes   [3]*filter.GHFilter
	seeded bool
}

// NewGravityTracker validates p and builds the per-axis filters.
func NewGravityTracker(p filter.Params) (*GravityTracker, error) {
	t := &GravityTracker{params: p}
	for i := range t.axes {
		f, err := filter.New(p)
		if err != nil {
			return nil, err
		}
		t.axes[i] = f
	}
	return t, nil
}

// Update feeds one total-acceleration reading (g) and returns the gravity
// estimate and the user acceleration left over.
func (t *GravityTracker) Update(total motion.Vec3) (gravity, user motion.Vec3) {
	if !t.seeded {
		t.axes[0].Reset(total.X, 0)
		t.axes[1].Reset(total.Y, 0)
		t.axes[2].Reset(total.Z, 0)
		t.seeded = true
	}
	gravity = motion.Vec3{
		X: t.axes[0].Filter(total.X),
		Y: t.axes[1].Filter(total.Y),
		Z: t.axes[2].Filter(total.Z),
	}
	return gravity, total.Sub(gravity)
}

// imuConverter turns raw chip readings into motion samples.
type imuConverter struct {
	accelLSB float64
	gyroLSB  float64
	tracker  *GravityTracker
	seq      uint64
}

func newIMUConverter(accelRange, gyroRange byte, p filter.Params) (*imuConverter, error) {
	tracker, err := NewGravityTracker(p)
	if err != nil {
		return nil, err
	}
	return &imuConverter{
		accelLSB: accelLSBPerG / float64(int(1)<<accelRange),
		gyroLSB:  gyroLSBPerDegS / float64(int(1)<<gyroRange),
		tracker:  tracker,
	}, nil
}

func (c *imuConverter) convert(r RawReading) motion.Sample {
	// The chip reports specific force (+1g up at rest); samples carry
	// gravity pointing down.
	total := motion.Vec3{
		X: -float64(r.Ax) / c.accelLSB,
		Y: -float64(r.Ay) / c.accelLSB,
		Z: -float64(r.Az) / c.accelLSB,
	}
	gravity, user := c.tracker.Update(total)

	toRad := math.Pi / 180 / c.gyroLSB
	c.seq++
	return motion.Sample{
		Seq:     c.seq,
		Accel:   user,
		Gravity: gravity,
		Rotation: motion.Vec3{
			X: float64(r.Gx) * toRad,
			Y: float64(r.Gy) * toRad,
			Z: float64(r.Gz) * toRad,
		},
	}
}

// MPU9250Source reads device motion from an MPU9250 over SPI.
type MPU9250Source struct {
	imu  *mpu9250.MPU9250
	conv *imuConverter
}

// NewMPU9250Source initializes the MPU9250 on cfg.IMUSPIDevice.
func NewMPU9250Source(cfg *config.Config) (*MPU9250Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	imu, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}
	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := imu.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	if err := imu.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	log.Printf("IMU: gyroscope range set to %d (±%d°/s)", cfg.IMUGyroRange, []int{250, 500, 1000, 2000}[cfg.IMUGyroRange])

	if res, err := imu.SelfTest(); err != nil {
		log.Printf("Warning: IMU self-test failed: %v", err)
	} else {
		log.Printf("IMU self-test: %+v", res)
	}

	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Printf("IMU calibration complete")
	}

	conv, err := newIMUConverter(cfg.IMUAccelRange, cfg.IMUGyroRange, cfg.GH)
	if err != nil {
		return nil, fmt.Errorf("IMU: gravity tracker: %w", err)
	}
	return &MPU9250Source{imu: imu, conv: conv}, nil
}

// ReadRaw reads accelerometer and gyroscope registers.
func (s *MPU9250Source) ReadRaw() (RawReading, error) {
	var r RawReading
	var err error
	if r.Ax, err = s.imu.GetAccelerationX(); err != nil {
		return RawReading{}, fmt.Errorf("IMU accel X: %w", err)
	}
	if r.Ay, err = s.imu.GetAccelerationY(); err != nil {
		return RawReading{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	if r.Az, err = s.imu.GetAccelerationZ(); err != nil {
		return RawReading{}, fmt.Errorf("IMU accel Z: %w", err)
	}
	if r.Gx, err = s.imu.GetRotationX(); err != nil {
		return RawReading{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	if r.Gy, err = s.imu.GetRotationY(); err != nil {
		return RawReading{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	if r.Gz, err = s.imu.GetRotationZ(); err != nil {
		return RawReading{}, fmt.Errorf("IMU gyro Z: %w", err)
	}
	return r, nil
}

// Next reads one sample.
func (s *MPU9250Source) Next() (motion.Sample, error) {
	r, err := s.ReadRaw()
	if err != nil {
		return motion.Sample{}, err
	}
	return s.conv.convert(r), nil
}

// Close is a no-op; the SPI port stays owned by the periph host.
func (s *MPU9250Source) Close() error {
	return nil
}
