package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/imu_computer/internal/config"
	"github.com/relabs-tech/imu_computer/internal/orientation"
	"github.com/relabs-tech/imu_computer/internal/sensors"
)

// RunIMUProducer reads the ISM330DHCX on a fixed interval and publishes
// the converted sample plus a derived pose over MQTT.
func RunIMUProducer(useMock bool) error {
	log.Println("starting imu-computer producer (ISM330DHCX → MQTT)")

	cfg := config.Get()

	var (
		src     sensors.IMUReader
		mockSrc orientation.Source
		cal     *CalibrationResult
	)
	if c, err := LoadCalibration(cfg.CalibrationFile); err == nil {
		cal = c
		log.Printf("loaded calibration from %s (gyro bias %.1f/%.1f/%.1f mdps)",
			cfg.CalibrationFile, cal.GyroBiasX, cal.GyroBiasY, cal.GyroBiasZ)
	} else {
		log.Printf("no calibration loaded (%v), publishing uncorrected samples", err)
	}
	if useMock {
		log.Println("using mock orientation source")
		mockSrc = orientation.NewMockSource()
	} else {
		s, err := sensors.NewIMUSource()
		if err != nil {
			return err
		}
		defer s.Close()
		src = s
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	var prevPose orientation.Pose
	var lastTickTime time.Time

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		// Delta time for gyro yaw integration.
		var deltaTime float64
		if lastTickTime.IsZero() {
			deltaTime = float64(cfg.IMUSampleInterval) / 1000.0
		} else {
			deltaTime = t.Sub(lastTickTime).Seconds()
		}
		lastTickTime = t

		var pose orientation.Pose
		if useMock {
			var err error
			pose, err = mockSrc.Next()
			if err != nil {
				log.Printf("error from mock orientation source: %v", err)
				continue
			}
			prevPose = pose

			if payload, err := json.Marshal(pose); err != nil {
				log.Printf("json marshal error (pose): %v", err)
			} else {
				client.Publish(cfg.TopicPose, 0, true, payload)
			}
			continue
		}

		sample, err := src.Read()
		if err != nil {
			log.Printf("error reading IMU: %v", err)
			continue
		}
		if cal != nil {
			cal.Apply(&sample)
		}
		pose = orientation.ComputePoseFromSample(sample, prevPose, deltaTime)
		prevPose = pose

		if payload, err := json.Marshal(sample); err != nil {
			log.Printf("sample marshal error: %v", err)
			continue
		} else {
			if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (imu): %v", token.Error())
				continue
			}
		}

		if payload, err := json.Marshal(pose); err != nil {
			log.Printf("json marshal error (pose): %v", err)
		} else {
			if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose): %v", token.Error())
				continue
			}
		}

		log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel ax=%.1f ay=%.1f az=%.1f mg | gyro gx=%.1f gy=%.1f gz=%.1f mdps | temp=%.2f°C",
			t.Format(time.RFC3339),
			pose.Roll, pose.Pitch, pose.Yaw,
			sample.Ax, sample.Ay, sample.Az,
			sample.Gx, sample.Gy, sample.Gz,
			sample.TempC,
		)
	}
	return nil
}
