// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock orientation source that generates a smooth
// rocking motion, for running the pipeline without the sensor attached.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := time.Since(m.start).Seconds()

	return Pose{
		Roll:  25 * math.Sin(elapsed*0.9),
		Pitch: 10 * math.Cos(elapsed*0.5),
		Yaw:   math.Mod(elapsed*45, 360),
	}, nil
}
