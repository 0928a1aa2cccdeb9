package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicIMU  string
	TopicPose string

	// IMU Hardware
	// Bus name as understood by periph i2creg ("1" → /dev/i2c-1).
	IMUI2CBus string
	// 7-bit device address, 0x6A (SA0 low) or 0x6B (SA0 high).
	IMUI2CAddr uint16

	// IMU Sensor Configuration
	// Accelerometer: 2, 4, 8 or 16 g
	IMUAccelRangeG int
	// Gyroscope: 125, 250, 500, 1000, 2000 or 4000 °/s
	IMUGyroRangeDPS int
	// Output data rates in Hz; must be rates the chip supports.
	IMUAccelODRHz float64
	IMUGyroODRHz  float64

	// Timing
	IMUSampleInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds

	// Calibration
	CalibrationFile    string
	CalibrationSamples int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access.
//
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config pre-loaded with the documented defaults; the
// config file only needs to override what differs.
func defaults() *Config {
	return &Config{
		MQTTClientIDProducer:  "imu-producer",
		MQTTClientIDConsole:   "imu-console-subscriber",
		MQTTClientIDWeb:       "imu-web-subscriber",
		MQTTClientIDDisplay:   "imu-display-subscriber",
		TopicIMU:              "imu/sample",
		TopicPose:             "imu/pose",
		IMUI2CBus:             "1",
		IMUI2CAddr:            0x6B,
		IMUAccelRangeG:        2,
		IMUGyroRangeDPS:       2000,
		IMUAccelODRHz:         104,
		IMUGyroODRHz:          104,
		WebServerPort:         8080,
		DisplayUpdateInterval: 250,
		CalibrationFile:       "imu_calibration.json",
		CalibrationSamples:    500,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_POSE":
		c.TopicPose = value

	// IMU Hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		if addr != 0x6A && addr != 0x6B {
			return fmt.Errorf("IMU_I2C_ADDR must be 0x6A or 0x6B, got 0x%02X", addr)
		}
		c.IMUI2CAddr = uint16(addr)

	// IMU Sensor Configuration
	case "IMU_ACCEL_RANGE_G":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE_G %q: %w", value, err)
		}
		switch rangeVal {
		case 2, 4, 8, 16:
		default:
			return fmt.Errorf("IMU_ACCEL_RANGE_G must be 2, 4, 8 or 16, got %d", rangeVal)
		}
		c.IMUAccelRangeG = rangeVal
	case "IMU_GYRO_RANGE_DPS":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE_DPS %q: %w", value, err)
		}
		switch rangeVal {
		case 125, 250, 500, 1000, 2000, 4000:
		default:
			return fmt.Errorf("IMU_GYRO_RANGE_DPS must be 125, 250, 500, 1000, 2000 or 4000, got %d", rangeVal)
		}
		c.IMUGyroRangeDPS = rangeVal
	case "IMU_ACCEL_ODR_HZ":
		hz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_ODR_HZ %q: %w", value, err)
		}
		c.IMUAccelODRHz = hz
	case "IMU_GYRO_ODR_HZ":
		hz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_ODR_HZ %q: %w", value, err)
		}
		c.IMUGyroODRHz = hz

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	// Calibration
	case "CALIBRATION_FILE":
		c.CalibrationFile = value
	case "CALIBRATION_SAMPLES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALIBRATION_SAMPLES %q: %w", value, err)
		}
		if n <= 0 {
			return fmt.Errorf("CALIBRATION_SAMPLES must be positive, got %d", n)
		}
		c.CalibrationSamples = n

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMUSampleInterval == 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
