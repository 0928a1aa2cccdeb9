package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imu_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
# minimal config
MQTT_BROKER=tcp://localhost:1883
IMU_SAMPLE_INTERVAL=100
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IMUI2CAddr != 0x6B {
		t.Errorf("IMUI2CAddr = 0x%02X, want default 0x6B", cfg.IMUI2CAddr)
	}
	if cfg.IMUI2CBus != "1" {
		t.Errorf("IMUI2CBus = %q, want default \"1\"", cfg.IMUI2CBus)
	}
	if cfg.IMUAccelODRHz != 104 || cfg.IMUGyroODRHz != 104 {
		t.Errorf("ODR defaults = %v/%v Hz, want 104/104", cfg.IMUAccelODRHz, cfg.IMUGyroODRHz)
	}
	if cfg.IMUAccelRangeG != 2 || cfg.IMUGyroRangeDPS != 2000 {
		t.Errorf("range defaults = %dg/%ddps, want 2g/2000dps", cfg.IMUAccelRangeG, cfg.IMUGyroRangeDPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://broker:1883
IMU_SAMPLE_INTERVAL=50
IMU_I2C_BUS=0
IMU_I2C_ADDR=0x6A
IMU_ACCEL_RANGE_G=16
IMU_GYRO_RANGE_DPS=4000
IMU_ACCEL_ODR_HZ=1.6
TOPIC_IMU=lab/imu
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IMUI2CAddr != 0x6A || cfg.IMUI2CBus != "0" {
		t.Errorf("bus/addr = %q/0x%02X, want \"0\"/0x6A", cfg.IMUI2CBus, cfg.IMUI2CAddr)
	}
	if cfg.IMUAccelRangeG != 16 || cfg.IMUGyroRangeDPS != 4000 {
		t.Errorf("ranges = %dg/%ddps, want 16g/4000dps", cfg.IMUAccelRangeG, cfg.IMUGyroRangeDPS)
	}
	if cfg.IMUAccelODRHz != 1.6 {
		t.Errorf("accel ODR = %v Hz, want 1.6", cfg.IMUAccelODRHz)
	}
	if cfg.TopicIMU != "lab/imu" {
		t.Errorf("TopicIMU = %q, want lab/imu", cfg.TopicIMU)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"bad address", "IMU_I2C_ADDR=0x42", "0x6A or 0x6B"},
		{"bad accel range", "IMU_ACCEL_RANGE_G=3", "must be 2, 4, 8 or 16"},
		{"bad gyro range", "IMU_GYRO_RANGE_DPS=300", "must be 125"},
		{"unknown key", "BOGUS=1", "unknown config key"},
		{"malformed line", "JUSTAKEY", "invalid config line"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\nIMU_SAMPLE_INTERVAL=100\n"+c.line+"\n")
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("Load = %v, want error containing %q", err, c.want)
			}
		})
	}
}

func TestLoadRequiresBroker(t *testing.T) {
	path := writeConfig(t, "IMU_SAMPLE_INTERVAL=100\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "MQTT_BROKER") {
		t.Errorf("Load = %v, want missing-broker error", err)
	}
}
