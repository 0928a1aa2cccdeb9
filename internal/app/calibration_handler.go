// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/imu_computer/internal/config"
	"github.com/relabs-tech/imu_computer/internal/imu"
)

// CalibrationSession holds the state of an active calibration
type CalibrationSession struct {
	Conn         *websocket.Conn
	mu           sync.Mutex
	currentPhase string
	currentStep  int
	results      CalibrationResult
}

// CalibrationResult is what gets written to the calibration file.
// Gyro biases are in mdps, accel biases in g.
type CalibrationResult struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	// Gyroscope calibration
	GyroBiasX        float64 `json:"gyro_bias_x"`
	GyroBiasY        float64 `json:"gyro_bias_y"`
	GyroBiasZ        float64 `json:"gyro_bias_z"`
	GyroConfidence   float64 `json:"gyro_confidence"`
	GyroStaticStdDev float64 `json:"gyro_static_stddev"`

	// Accelerometer calibration
	AccelBiasX      float64 `json:"accel_bias_x"`
	AccelBiasY      float64 `json:"accel_bias_y"`
	AccelBiasZ      float64 `json:"accel_bias_z"`
	AccelScaleX     float64 `json:"accel_scale_x"`
	AccelScaleY     float64 `json:"accel_scale_y"`
	AccelScaleZ     float64 `json:"accel_scale_z"`
	AccelConfidence float64 `json:"accel_confidence"`
	AccelAvgStdDev  float64 `json:"accel_avg_stddev"`

	TotalSamples int `json:"total_samples"`
}

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // init, next, cancel
}

type WSResponse struct {
	Type     string                 `json:"type"` // phase, step, progress, stats, complete, error
	Phase    string                 `json:"phase,omitempty"`
	Step     string                 `json:"step,omitempty"`
	Progress float64                `json:"progress,omitempty"`
	Stats    map[string]interface{} `json:"stats,omitempty"`
	Results  interface{}            `json:"results,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// HandleCalibrationWS handles the WebSocket connection for calibration
func HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &CalibrationSession{
		Conn: conn,
		results: CalibrationResult{
			Version:     1,
			Timestamp:   time.Now(),
			AccelScaleX: 1.0,
			AccelScaleY: 1.0,
			AccelScaleZ: 1.0,
		},
	}

	// Main message loop
	for {
		var msg WSMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			log.Printf("calibration: websocket read error: %v", err)
			break
		}

		switch msg.Action {
		case "init":
			log.Println("calibration: session initialized")

		case "next":
			session.mu.Lock()
			err := session.runNextStep()
			session.mu.Unlock()
			if err != nil {
				session.sendError(err.Error())
			}

		case "cancel":
			log.Printf("calibration: cancelled by user")
			return
		}
	}
}

func (s *CalibrationSession) runNextStep() error {
	// State machine for calibration phases
	switch s.currentPhase {
	case "":
		// Start with gyroscope
		s.currentPhase = "gyro"
		s.currentStep = 0
		return s.runGyroStep()

	case "gyro":
		// Move to accelerometer
		s.currentPhase = "accel"
		s.currentStep = 0
		return s.runAccelStep()

	case "accel":
		s.currentStep++
		if s.currentStep >= 6 {
			return s.complete()
		}
		return s.runAccelStep()
	}

	return nil
}

func (s *CalibrationSession) runGyroStep() error {
	s.sendPhase("gyro")
	s.sendStep("gyro-static", "gyro")

	src := imuSource()
	if src == nil {
		return fmt.Errorf("IMU not available")
	}

	cfg := config.Get()

	s.sendProgress(5)
	time.Sleep(1 * time.Second) // Give user time to place device

	n := cfg.CalibrationSamples
	samples := make([][3]float64, 0, n)
	for i := 0; i < n; i++ {
		reading, err := src.Read()
		if err != nil {
			return err
		}
		samples = append(samples, [3]float64{reading.Gx, reading.Gy, reading.Gz})
		s.sendProgress(5 + float64(i)*95.0/float64(n))
		time.Sleep(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	}

	// At rest the gyro should read zero; the mean is the bias.
	s.results.GyroBiasX = mean(samples, 0)
	s.results.GyroBiasY = mean(samples, 1)
	s.results.GyroBiasZ = mean(samples, 2)
	s.results.GyroStaticStdDev = (stddev(samples, 0) + stddev(samples, 1) + stddev(samples, 2)) / 3.0
	s.results.TotalSamples += len(samples)

	// Calculate confidence
	if s.results.GyroStaticStdDev > 0 {
		s.results.GyroConfidence = 100.0 / (1.0 + s.results.GyroStaticStdDev/100.0)
	}

	s.sendStats()
	s.sendActionReady()
	return nil
}

func (s *CalibrationSession) runAccelStep() error {
	s.sendPhase("accel")

	src := imuSource()
	if src == nil {
		return fmt.Errorf("IMU not available")
	}

	cfg := config.Get()

	steps := []string{"accel-up", "accel-down", "accel-right", "accel-left", "accel-forward", "accel-back"}
	stepID := steps[s.currentStep]
	s.sendStep(stepID, "accel")
	s.sendProgress(float64(s.currentStep) * 16.67)

	time.Sleep(2 * time.Second) // Give user time to position device

	// Collect samples for this orientation, converted from mg to g
	n := cfg.CalibrationSamples
	samples := make([][3]float64, 0, n)
	for i := 0; i < n; i++ {
		reading, err := src.Read()
		if err != nil {
			return err
		}
		samples = append(samples, [3]float64{
			reading.Ax / 1000.0,
			reading.Ay / 1000.0,
			reading.Az / 1000.0,
		})
		s.sendProgress(float64(s.currentStep)*16.67 + float64(i)*16.67/float64(n))
		time.Sleep(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	}

	meanX := mean(samples, 0)
	meanY := mean(samples, 1)
	meanZ := mean(samples, 2)

	// Opposing orientation pairs give scale from the +1g face and bias
	// from the residual on the -1g face.
	switch s.currentStep {
	case 0: // Z+ up
		s.results.AccelScaleZ = 1.0 / meanZ
	case 1: // Z- down
		s.results.AccelBiasZ = (meanZ/s.results.AccelScaleZ + 1.0) / 2.0
	case 2: // X+ right
		s.results.AccelScaleX = 1.0 / meanX
	case 3: // X- left
		s.results.AccelBiasX = (meanX/s.results.AccelScaleX + 1.0) / 2.0
	case 4: // Y+ forward
		s.results.AccelScaleY = 1.0 / meanY
	case 5: // Y- back
		s.results.AccelBiasY = (meanY/s.results.AccelScaleY + 1.0) / 2.0
	}

	s.results.TotalSamples += len(samples)

	// Running average of per-orientation noise
	avgStdDev := (stddev(samples, 0) + stddev(samples, 1) + stddev(samples, 2)) / 3.0
	if s.currentStep == 0 {
		s.results.AccelAvgStdDev = avgStdDev
	} else {
		s.results.AccelAvgStdDev = (s.results.AccelAvgStdDev*float64(s.currentStep) + avgStdDev) / float64(s.currentStep+1)
	}

	// Calculate confidence
	if s.results.AccelAvgStdDev > 0 {
		s.results.AccelConfidence = 100.0 / (1.0 + s.results.AccelAvgStdDev*100.0)
	}

	s.sendStats()
	s.sendActionReady()
	return nil
}

func (s *CalibrationSession) complete() error {
	cfg := config.Get()

	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calibration results: %w", err)
	}

	if err := os.WriteFile(cfg.CalibrationFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}

	log.Printf("calibration: saved results to %s", cfg.CalibrationFile)

	// Send completion message
	s.Conn.WriteJSON(WSResponse{
		Type:    "complete",
		Results: map[string]interface{}{"filename": cfg.CalibrationFile},
	})

	return nil
}

// LoadCalibration reads a previously saved calibration file.
func LoadCalibration(path string) (*CalibrationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result CalibrationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse calibration file %s: %w", path, err)
	}
	return &result, nil
}

// Apply corrects a sample in place using the stored biases and scales.
func (c *CalibrationResult) Apply(s *imu.Sample) {
	s.Gx -= c.GyroBiasX
	s.Gy -= c.GyroBiasY
	s.Gz -= c.GyroBiasZ

	s.Ax = (s.Ax/1000.0*c.AccelScaleX - c.AccelBiasX) * 1000.0
	s.Ay = (s.Ay/1000.0*c.AccelScaleY - c.AccelBiasY) * 1000.0
	s.Az = (s.Az/1000.0*c.AccelScaleZ - c.AccelBiasZ) * 1000.0
}

func (s *CalibrationSession) sendPhase(phase string) {
	s.Conn.WriteJSON(WSResponse{
		Type:  "phase",
		Phase: phase,
	})
}

func (s *CalibrationSession) sendStep(step, phase string) {
	s.Conn.WriteJSON(WSResponse{
		Type:  "step",
		Step:  step,
		Phase: phase,
	})
}

func (s *CalibrationSession) sendProgress(progress float64) {
	s.Conn.WriteJSON(WSResponse{
		Type:     "progress",
		Progress: progress,
	})
}

func (s *CalibrationSession) sendStats() {
	stats := map[string]interface{}{
		"gyro":    s.results.GyroConfidence,
		"accel":   s.results.AccelConfidence,
		"samples": s.results.TotalSamples,
	}
	s.Conn.WriteJSON(WSResponse{
		Type:  "stats",
		Stats: stats,
	})
}

func (s *CalibrationSession) sendActionReady() {
	s.Conn.WriteJSON(WSResponse{
		Type:    "action",
		Message: "ready",
	})
}

func (s *CalibrationSession) sendError(message string) {
	s.Conn.WriteJSON(WSResponse{
		Type:    "error",
		Message: message,
	})
}

// Helper functions for statistics
func mean(data [][3]float64, axis int) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v[axis]
	}
	return sum / float64(len(data))
}

func stddev(data [][3]float64, axis int) float64 {
	if len(data) == 0 {
		return 0
	}
	m := mean(data, axis)
	variance := 0.0
	for _, v := range data {
		diff := v[axis] - m
		variance += diff * diff
	}
	variance /= float64(len(data))
	return math.Sqrt(variance)
}
