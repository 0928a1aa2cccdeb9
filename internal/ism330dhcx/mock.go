// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

// Mock is an in-memory Transport for driving the sensor logic without
// hardware. It keeps a keyed register file, defaults WHO_AM_I to the real
// identity byte, and offers bulk setters that inject raw sensor readings by
// writing the corresponding output registers.
type Mock struct {
	regs   map[byte]byte
	closed bool

	// Err, when set, is returned unmodified by every bus operation.
	// Simulates a NACK/bus fault for error-propagation tests.
	Err error

	// HoldReset keeps SW_RESET latched so reset-timeout paths can be
	// exercised. By default the mock clears the bit after a couple of
	// polls, like the device does.
	HoldReset bool

	resetReads int
}

// NewMock returns a mock transport with a fresh register file.
func NewMock() *Mock {
	return &Mock{
		regs: map[byte]byte{RegWhoAmI: WhoAmIValue},
	}
}

func (m *Mock) ReadByte(reg byte) (byte, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	v := m.regs[reg]
	if reg == RegCtrl3C && v&ctrl3SWReset != 0 && !m.HoldReset {
		m.resetReads--
		if m.resetReads <= 0 {
			m.regs[reg] = v &^ ctrl3SWReset
		}
	}
	return v, nil
}

func (m *Mock) ReadWord(reg byte) (uint16, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return uint16(m.regs[reg]) | uint16(m.regs[reg+1])<<8, nil
}

func (m *Mock) ReadBlock(reg byte, n int) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = m.regs[reg+byte(i)]
	}
	return buf, nil
}

func (m *Mock) WriteByte(reg byte, val byte) error {
	if m.Err != nil {
		return m.Err
	}
	if reg == RegCtrl3C && val&ctrl3SWReset != 0 {
		m.resetReads = 2
	}
	m.regs[reg] = val
	return nil
}

func (m *Mock) WriteWord(reg byte, val uint16) error {
	if m.Err != nil {
		return m.Err
	}
	m.regs[reg] = byte(val)
	m.regs[reg+1] = byte(val >> 8)
	return nil
}

func (m *Mock) WriteBlock(reg byte, buf []byte) error {
	if m.Err != nil {
		return m.Err
	}
	for i, b := range buf {
		m.regs[reg+byte(i)] = b
	}
	return nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool { return m.closed }

// Register returns the current value of a register for assertions.
func (m *Mock) Register(reg byte) byte { return m.regs[reg] }

// SetRegister overwrites a register, bypassing the bus path.
func (m *Mock) SetRegister(reg byte, val byte) { m.regs[reg] = val }

// SetAccelRaw injects a raw accelerometer vector into the output registers.
func (m *Mock) SetAccelRaw(x, y, z int16) { m.setVector(RegOutXLA, x, y, z) }

// SetGyroRaw injects a raw gyroscope vector into the output registers.
func (m *Mock) SetGyroRaw(x, y, z int16) { m.setVector(RegOutXLG, x, y, z) }

// SetTempRaw injects a raw temperature reading.
func (m *Mock) SetTempRaw(t int16) {
	m.regs[RegOutTempL] = byte(uint16(t))
	m.regs[RegOutTempH] = byte(uint16(t) >> 8)
}

// SetDataReady sets the three STATUS_REG ready flags.
func (m *Mock) SetDataReady(accel, gyro, temp bool) {
	var v byte
	if accel {
		v |= statusAccelReady
	}
	if gyro {
		v |= statusGyroReady
	}
	if temp {
		v |= statusTempReady
	}
	m.regs[RegStatus] = v
}

func (m *Mock) setVector(reg byte, x, y, z int16) {
	for i, v := range []int16{x, y, z} {
		m.regs[reg+byte(2*i)] = byte(uint16(v))
		m.regs[reg+byte(2*i)+1] = byte(uint16(v) >> 8)
	}
}
