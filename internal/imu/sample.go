package imu

// Sample is a single converted IMU reading as published over MQTT.
// Accelerometer axes are in mg, gyroscope axes in mdps.
type Sample struct {
	Source string `json:"source"`

	Ax float64 `json:"ax"` // accel, mg
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // gyro, mdps
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	TempC   float64 `json:"temp_c"` // die temperature, °C
	HasTemp bool    `json:"has_temp"`
}

type SampleSource interface {
	Next() (Sample, error)
}
