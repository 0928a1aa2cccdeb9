package orientation

import (
	"math"
	"testing"

	"github.com/relabs-tech/imu_computer/internal/imu"
)

func TestComputePoseFromAccelLevel(t *testing.T) {
	// Gravity straight down the Z axis: level attitude.
	p := ComputePoseFromAccel(0, 0, 1000)
	if math.Abs(p.Roll) > 1e-9 || math.Abs(p.Pitch) > 1e-9 {
		t.Errorf("level pose = %+v, want zero roll/pitch", p)
	}
}

func TestComputePoseFromAccelTilt(t *testing.T) {
	// Gravity along -X: nose up 90°.
	p := ComputePoseFromAccel(-1000, 0, 0)
	if math.Abs(p.Pitch-90) > 1e-9 {
		t.Errorf("pitch = %v, want 90", p.Pitch)
	}
	// Gravity along +Y: rolled 90°.
	p = ComputePoseFromAccel(0, 1000, 0)
	if math.Abs(p.Roll-90) > 1e-9 {
		t.Errorf("roll = %v, want 90", p.Roll)
	}
}

func TestYawIntegrationAndWrap(t *testing.T) {
	s := imu.Sample{Az: 1000, Gz: 90_000} // 90 °/s in mdps
	p := ComputePoseFromSample(s, Pose{Yaw: 350}, 1.0)
	if math.Abs(p.Yaw-80) > 1e-9 {
		t.Errorf("yaw = %v, want 80 after wrapping past 360", p.Yaw)
	}

	s.Gz = -90_000
	p = ComputePoseFromSample(s, Pose{Yaw: 10}, 1.0)
	if math.Abs(p.Yaw-280) > 1e-9 {
		t.Errorf("yaw = %v, want 280 after wrapping below 0", p.Yaw)
	}
}
