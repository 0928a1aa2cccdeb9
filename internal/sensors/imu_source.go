// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/imu_computer/internal/config"
	"github.com/relabs-tech/imu_computer/internal/imu"
	"github.com/relabs-tech/imu_computer/internal/ism330dhcx"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// IMUReader defines the interface for reading converted IMU data.
type IMUReader interface {
	Read() (imu.Sample, error)
}

// IMUSource owns one ISM330DHCX on the configured I2C bus.
type IMUSource struct {
	name string
	dev  *ism330dhcx.Dev
}

// NewIMUSource opens the configured I2C bus, probes the ISM330DHCX and
// brings both subsystems up at the configured rates and ranges.
func NewIMUSource() (*IMUSource, error) {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		return nil, fmt.Errorf("IMU: I2C bus %q open: %w", cfg.IMUI2CBus, err)
	}

	accelODR, err := ism330dhcx.AccelODRFromHz(cfg.IMUAccelODRHz)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU: accel ODR: %w", err)
	}
	gyroODR, err := ism330dhcx.GyroODRFromHz(cfg.IMUGyroODRHz)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU: gyro ODR: %w", err)
	}
	accelFS, err := ism330dhcx.AccelFullScaleFromG(cfg.IMUAccelRangeG)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU: accel range: %w", err)
	}
	gyroFS, err := ism330dhcx.GyroFullScaleFromDPS(cfg.IMUGyroRangeDPS)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU: gyro range: %w", err)
	}

	tr := ism330dhcx.NewI2CTransport(bus, cfg.IMUI2CAddr)
	dev := ism330dhcx.New(tr, &ism330dhcx.Opts{
		AccelODR: accelODR,
		AccelFS:  accelFS,
		GyroODR:  gyroODR,
		GyroFS:   gyroFS,
	})

	if err := dev.Begin(); err != nil {
		tr.Close()
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}
	log.Printf("IMU: ISM330DHCX found at 0x%02X on bus %q", cfg.IMUI2CAddr, cfg.IMUI2CBus)

	if err := dev.SetAccelMode(ism330dhcx.HighPerformance); err != nil {
		tr.Close()
		return nil, fmt.Errorf("IMU: accel mode: %w", err)
	}
	if err := dev.SetGyroMode(ism330dhcx.HighPerformance); err != nil {
		tr.Close()
		return nil, fmt.Errorf("IMU: gyro mode: %w", err)
	}

	if err := dev.EnableAccel(); err != nil {
		tr.Close()
		return nil, fmt.Errorf("IMU: accel enable: %w", err)
	}
	log.Printf("IMU: accelerometer enabled (%g Hz, ±%dg)", cfg.IMUAccelODRHz, cfg.IMUAccelRangeG)

	if err := dev.EnableGyro(); err != nil {
		tr.Close()
		return nil, fmt.Errorf("IMU: gyro enable: %w", err)
	}
	log.Printf("IMU: gyroscope enabled (%g Hz, ±%d°/s)", cfg.IMUGyroODRHz, cfg.IMUGyroRangeDPS)

	return &IMUSource{name: "ism330dhcx", dev: dev}, nil
}

// Read reads one combined accel+gyro+temperature sample.
func (s *IMUSource) Read() (imu.Sample, error) {
	data, err := s.dev.ReadIMU(true)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU read: %w", err)
	}
	return imu.Sample{
		Source:  s.name,
		Ax:      data.Accel.X,
		Ay:      data.Accel.Y,
		Az:      data.Accel.Z,
		Gx:      data.Gyro.X,
		Gy:      data.Gyro.Y,
		Gz:      data.Gyro.Z,
		TempC:   data.TempC,
		HasTemp: data.HasTemp,
	}, nil
}

// Device exposes the underlying driver for the register debug tooling.
func (s *IMUSource) Device() *ism330dhcx.Dev {
	return s.dev
}

// Close releases the I2C bus.
func (s *IMUSource) Close() error {
	return s.dev.Close()
}
