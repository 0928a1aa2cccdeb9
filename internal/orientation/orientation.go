package orientation

import (
	"math"

	"github.com/relabs-tech/imu_computer/internal/imu"
)

// Pose is the canonical representation of orientation, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data
// only, using simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Units cancel out, so mg works as well as g. Yaw cannot be observed from
// gravity and is left at 0.
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// ComputePoseFromSample derives roll/pitch from the accelerometer and
// integrates the gyro Z rate (mdps) on top of the previous yaw. Without a
// magnetometer the yaw drifts; it is wrapped to [0, 360).
func ComputePoseFromSample(s imu.Sample, prev Pose, dt float64) Pose {
	pose := ComputePoseFromAccel(s.Ax, s.Ay, s.Az)
	pose.Yaw = math.Mod(prev.Yaw+s.Gz/1000.0*dt, 360.0)
	if pose.Yaw < 0 {
		pose.Yaw += 360.0
	}
	return pose
}
