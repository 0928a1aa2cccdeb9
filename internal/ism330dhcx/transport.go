// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Transport is the bus capability the driver consumes. All operations are
// synchronous and register-address relative. Words are little-endian, the
// device's native output order. Close releases the underlying bus and must
// be called at most once.
type Transport interface {
	ReadByte(reg byte) (byte, error)
	ReadWord(reg byte) (uint16, error)
	ReadBlock(reg byte, n int) ([]byte, error)
	WriteByte(reg byte, val byte) error
	WriteWord(reg byte, val uint16) error
	WriteBlock(reg byte, buf []byte) error
	Close() error
}

// I2CTransport talks to the sensor over a periph I2C bus. The device-side
// IF_INC bit makes multi-byte transactions walk consecutive registers.
type I2CTransport struct {
	dev i2c.Dev
	bus i2c.BusCloser
}

// NewI2CTransport wraps an opened bus and a 7-bit device address
// (AddrLow or AddrHigh). The transport takes ownership of the bus.
func NewI2CTransport(bus i2c.BusCloser, addr uint16) *I2CTransport {
	return &I2CTransport{
		dev: i2c.Dev{Addr: addr, Bus: bus},
		bus: bus,
	}
}

func (t *I2CTransport) ReadByte(reg byte) (byte, error) {
	var buf [1]byte
	if err := t.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (t *I2CTransport) ReadWord(reg byte) (uint16, error) {
	var buf [2]byte
	if err := t.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

func (t *I2CTransport) ReadBlock(reg byte, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("ism330dhcx: invalid block length %d", n)
	}
	buf := make([]byte, n)
	if err := t.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *I2CTransport) WriteByte(reg byte, val byte) error {
	return t.dev.Tx([]byte{reg, val}, nil)
}

func (t *I2CTransport) WriteWord(reg byte, val uint16) error {
	return t.dev.Tx([]byte{reg, byte(val), byte(val >> 8)}, nil)
}

func (t *I2CTransport) WriteBlock(reg byte, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, reg)
	w = append(w, buf...)
	return t.dev.Tx(w, nil)
}

// Close releases the bus.
func (t *I2CTransport) Close() error {
	return t.bus.Close()
}
