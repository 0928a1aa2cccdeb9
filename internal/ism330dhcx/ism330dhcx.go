// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ism330dhcx drives the ST ISM330DHCX 6-axis IMU (accelerometer,
// gyroscope, die temperature) over a register-addressed bus capability.
//
// The driver is fully synchronous and owns its Transport exclusively.
// It is not safe for concurrent use without external locking; all stored
// configuration (ODR, full scale, enabled flags) is mutated in place.
// Transport failures are surfaced to the caller unmodified, never retried.
package ism330dhcx

import (
	"errors"
	"fmt"
)

// resetPollBudget bounds the SW_RESET completion poll in Reset.
const resetPollBudget = 100

// ErrResetTimeout is returned when SW_RESET does not self-clear within the
// poll budget.
var ErrResetTimeout = errors.New("ism330dhcx: software reset did not complete")

// RawVector is one sample as read from the output registers.
type RawVector struct {
	X, Y, Z int16
}

// Vector is a converted sample in physical units (mg, g, mdps or dps
// depending on the read call).
type Vector struct {
	X, Y, Z float64
}

// Status holds the three independent data-ready flags from STATUS_REG.
type Status struct {
	AccelReady bool
	GyroReady  bool
	TempReady  bool
}

// Data is a combined reading. Accel is in mg, Gyro in mdps. TempC is only
// populated (and HasTemp set) when the read requested temperature.
type Data struct {
	Accel   Vector
	Gyro    Vector
	TempC   float64
	HasTemp bool
}

// Opts holds construction-time configuration. Fields are taken verbatim:
// several zero codes are real selections (ODR off, ±2 g, ±250 dps), so New
// never substitutes defaults field by field. Start from a copy of
// DefaultOpts and override what differs. The device address and bus belong
// to the Transport (see NewI2CTransport).
type Opts struct {
	AccelODR AccelODR
	AccelFS  AccelFullScale
	GyroODR  GyroODR
	GyroFS   GyroFullScale
}

// DefaultOpts is the recommended starting configuration: 104 Hz ODR on both
// subsystems, ±2 g, ±2000 dps. Passing nil to New selects it.
var DefaultOpts = Opts{
	AccelODR: AccelODR104Hz,
	AccelFS:  AccelFS2G,
	GyroODR:  GyroODR104Hz,
	GyroFS:   GyroFS2000DPS,
}

// Dev represents one ISM330DHCX behind a Transport.
//
// Lifecycle: New → Begin (identity check + baseline config, both subsystems
// powered down) → enable/configure/read → Close. Using the device after
// Close is a caller error. Begin is not idempotent in effect: calling it
// again re-runs every configuration write.
type Dev struct {
	t Transport

	accelODR AccelODR
	accelFS  AccelFullScale
	gyroODR  GyroODR
	gyroFS   GyroFullScale

	accelOn bool
	gyroOn  bool
}

// New wraps a Transport. A nil opts selects DefaultOpts; a non-nil opts is
// stored as given. No bus traffic happens until Begin.
func New(t Transport, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	return &Dev{
		t:        t,
		accelODR: opts.AccelODR,
		accelFS:  opts.AccelFS,
		gyroODR:  opts.GyroODR,
		gyroFS:   opts.GyroFS,
	}
}

// Begin verifies the device identity and applies the baseline
// configuration: I3C disabled, register auto-increment on, block data
// update on, FIFO bypassed, both subsystems powered down with their
// configured full scales latched into the control registers.
//
// A failed intermediate write is not rolled back; the device may be left
// partially configured and the caller should reset and retry from scratch.
func (d *Dev) Begin() error {
	id, err := d.t.ReadByte(RegWhoAmI)
	if err != nil {
		return err
	}
	if id != WhoAmIValue {
		return fmt.Errorf("ism330dhcx: unexpected WHO_AM_I 0x%02X (expected 0x%02X)", id, WhoAmIValue)
	}
	if err := d.setBit(RegCtrl9XL, ctrl9I3CDis); err != nil {
		return err
	}
	if err := d.setBit(RegCtrl3C, ctrl3IFInc); err != nil {
		return err
	}
	if err := d.setBit(RegCtrl3C, ctrl3BDU); err != nil {
		return err
	}
	if err := d.SetFIFOMode(FIFOBypass); err != nil {
		return err
	}
	if err := d.writeAccelConfig(AccelODROff, d.accelFS); err != nil {
		return err
	}
	if err := d.writeGyroConfig(GyroODROff, d.gyroFS); err != nil {
		return err
	}
	d.accelOn = false
	d.gyroOn = false
	return nil
}

// Close releases the transport. Call at most once.
func (d *Dev) Close() error {
	return d.t.Close()
}

// EnableAccel powers the accelerometer up at the stored ODR and full scale.
func (d *Dev) EnableAccel() error {
	if err := d.writeAccelConfig(d.accelODR, d.accelFS); err != nil {
		return err
	}
	d.accelOn = true
	return nil
}

// DisableAccel powers the accelerometer down. The stored ODR and full scale
// are kept and reapplied on the next EnableAccel.
func (d *Dev) DisableAccel() error {
	if err := d.writeAccelConfig(AccelODROff, d.accelFS); err != nil {
		return err
	}
	d.accelOn = false
	return nil
}

// EnableGyro powers the gyroscope up at the stored ODR and full scale.
func (d *Dev) EnableGyro() error {
	if err := d.writeGyroConfig(d.gyroODR, d.gyroFS); err != nil {
		return err
	}
	d.gyroOn = true
	return nil
}

// DisableGyro powers the gyroscope down, keeping the stored settings.
func (d *Dev) DisableGyro() error {
	if err := d.writeGyroConfig(GyroODROff, d.gyroFS); err != nil {
		return err
	}
	d.gyroOn = false
	return nil
}

// SetAccelODR stores the rate and, only while the accelerometer is enabled,
// rewrites CTRL1_XL immediately.
func (d *Dev) SetAccelODR(odr AccelODR) error {
	d.accelODR = odr
	if !d.accelOn {
		return nil
	}
	return d.writeAccelConfig(odr, d.accelFS)
}

// SetAccelFullScale stores the range and, only while the accelerometer is
// enabled, rewrites CTRL1_XL immediately. While disabled the hardware
// register keeps its old range, but converted reads already use the new
// sensitivity.
func (d *Dev) SetAccelFullScale(fs AccelFullScale) error {
	d.accelFS = fs
	if !d.accelOn {
		return nil
	}
	return d.writeAccelConfig(d.accelODR, fs)
}

// SetGyroODR stores the rate and, only while the gyroscope is enabled,
// rewrites CTRL2_G immediately.
func (d *Dev) SetGyroODR(odr GyroODR) error {
	d.gyroODR = odr
	if !d.gyroOn {
		return nil
	}
	return d.writeGyroConfig(odr, d.gyroFS)
}

// SetGyroFullScale stores the range and, only while the gyroscope is
// enabled, rewrites CTRL2_G immediately. See SetAccelFullScale for the
// disabled-subsystem caveat.
func (d *Dev) SetGyroFullScale(fs GyroFullScale) error {
	d.gyroFS = fs
	if !d.gyroOn {
		return nil
	}
	return d.writeGyroConfig(d.gyroODR, fs)
}

// SetAccelMode switches the accelerometer between high-performance and
// low-power/normal operation (CTRL6_C XL_HM_MODE).
func (d *Dev) SetAccelMode(m OperatingMode) error {
	if m == HighPerformance {
		return d.clearBit(RegCtrl6C, ctrl6XLHM)
	}
	return d.setBit(RegCtrl6C, ctrl6XLHM)
}

// SetGyroMode switches the gyroscope between high-performance and
// low-power/normal operation (CTRL7_G G_HM_MODE).
func (d *Dev) SetGyroMode(m OperatingMode) error {
	if m == HighPerformance {
		return d.clearBit(RegCtrl7G, ctrl7GHM)
	}
	return d.setBit(RegCtrl7G, ctrl7GHM)
}

// SetFIFOMode writes the 3-bit FIFO_MODE field of FIFO_CTRL4.
func (d *Dev) SetFIFOMode(m FIFOMode) error {
	v, err := d.t.ReadByte(RegFIFOCtrl4)
	if err != nil {
		return err
	}
	return d.t.WriteByte(RegFIFOCtrl4, v&^fifoModeMask|byte(m)&fifoModeMask)
}

// AccelODR returns the stored accelerometer rate.
func (d *Dev) AccelODR() AccelODR { return d.accelODR }

// AccelFullScale returns the stored accelerometer range.
func (d *Dev) AccelFullScale() AccelFullScale { return d.accelFS }

// GyroODR returns the stored gyroscope rate.
func (d *Dev) GyroODR() GyroODR { return d.gyroODR }

// GyroFullScale returns the stored gyroscope range.
func (d *Dev) GyroFullScale() GyroFullScale { return d.gyroFS }

// AccelEnabled reports whether the accelerometer is powered up.
func (d *Dev) AccelEnabled() bool { return d.accelOn }

// GyroEnabled reports whether the gyroscope is powered up.
func (d *Dev) GyroEnabled() bool { return d.gyroOn }

// ReadAccelRaw reads one raw accelerometer sample, six consecutive
// registers in a single transaction.
func (d *Dev) ReadAccelRaw() (RawVector, error) {
	return d.readVector(RegOutXLA)
}

// ReadAccelMG reads the accelerometer in mg. The conversion uses the stored
// full scale at read time, not the one latched at enable time.
func (d *Dev) ReadAccelMG() (Vector, error) {
	raw, err := d.ReadAccelRaw()
	if err != nil {
		return Vector{}, err
	}
	return raw.scale(d.accelFS.SensitivityMG()), nil
}

// ReadAccelG reads the accelerometer in g.
func (d *Dev) ReadAccelG() (Vector, error) {
	v, err := d.ReadAccelMG()
	if err != nil {
		return Vector{}, err
	}
	return v.scale(1.0 / 1000.0), nil
}

// ReadGyroRaw reads one raw gyroscope sample.
func (d *Dev) ReadGyroRaw() (RawVector, error) {
	return d.readVector(RegOutXLG)
}

// ReadGyroMDPS reads the gyroscope in mdps, scaled by the stored full scale
// at read time.
func (d *Dev) ReadGyroMDPS() (Vector, error) {
	raw, err := d.ReadGyroRaw()
	if err != nil {
		return Vector{}, err
	}
	return raw.scale(d.gyroFS.SensitivityMDPS()), nil
}

// ReadGyroDPS reads the gyroscope in dps.
func (d *Dev) ReadGyroDPS() (Vector, error) {
	v, err := d.ReadGyroMDPS()
	if err != nil {
		return Vector{}, err
	}
	return v.scale(1.0 / 1000.0), nil
}

// ReadTempRaw reads the raw die temperature.
func (d *Dev) ReadTempRaw() (int16, error) {
	w, err := d.t.ReadWord(RegOutTempL)
	if err != nil {
		return 0, err
	}
	return int16(w), nil
}

// ReadTempC reads the die temperature in °C (256 LSB/°C, 25 °C offset).
func (d *Dev) ReadTempC() (float64, error) {
	raw, err := d.ReadTempRaw()
	if err != nil {
		return 0, err
	}
	return 25.0 + float64(raw)/256.0, nil
}

// ReadStatus reads STATUS_REG and decodes the three data-ready flags.
func (d *Dev) ReadStatus() (Status, error) {
	b, err := d.t.ReadByte(RegStatus)
	if err != nil {
		return Status{}, err
	}
	return Status{
		AccelReady: b&statusAccelReady != 0,
		GyroReady:  b&statusGyroReady != 0,
		TempReady:  b&statusTempReady != 0,
	}, nil
}

// ReadIMU reads a combined accel (mg) + gyro (mdps) sample, plus the die
// temperature when withTemp is set.
func (d *Dev) ReadIMU(withTemp bool) (Data, error) {
	accel, err := d.ReadAccelMG()
	if err != nil {
		return Data{}, err
	}
	gyro, err := d.ReadGyroMDPS()
	if err != nil {
		return Data{}, err
	}
	data := Data{Accel: accel, Gyro: gyro}
	if withTemp {
		t, err := d.ReadTempC()
		if err != nil {
			return Data{}, err
		}
		data.TempC = t
		data.HasTemp = true
	}
	return data, nil
}

// Reset triggers a software reset and polls CTRL3_C until SW_RESET
// self-clears, up to resetPollBudget reads with no delay between polls.
// Returns ErrResetTimeout when the budget is exhausted.
func (d *Dev) Reset() error {
	if err := d.setBit(RegCtrl3C, ctrl3SWReset); err != nil {
		return err
	}
	for i := 0; i < resetPollBudget; i++ {
		v, err := d.t.ReadByte(RegCtrl3C)
		if err != nil {
			return err
		}
		if v&ctrl3SWReset == 0 {
			return nil
		}
	}
	return ErrResetTimeout
}

// ReadRegister reads a single register directly, bypassing all state
// tracking. Callers are responsible for keeping the driver's stored
// configuration consistent with what they poke.
func (d *Dev) ReadRegister(reg byte) (byte, error) {
	return d.t.ReadByte(reg)
}

// WriteRegister writes a single register directly, bypassing all state
// tracking.
func (d *Dev) WriteRegister(reg byte, val byte) error {
	return d.t.WriteByte(reg, val)
}

// ReadRegisters reads n consecutive registers directly.
func (d *Dev) ReadRegisters(reg byte, n int) ([]byte, error) {
	return d.t.ReadBlock(reg, n)
}

// CTRL1_XL: ODR in the high nibble, FS_XL in bits 3:2, low 2 bits zero.
func (d *Dev) writeAccelConfig(odr AccelODR, fs AccelFullScale) error {
	return d.t.WriteByte(RegCtrl1XL, (byte(odr)&0x0F)<<4|(byte(fs)&0x03)<<2)
}

// CTRL2_G: ODR in the high nibble, FS_G in the low nibble.
func (d *Dev) writeGyroConfig(odr GyroODR, fs GyroFullScale) error {
	return d.t.WriteByte(RegCtrl2G, (byte(odr)&0x0F)<<4|byte(fs)&0x0F)
}

func (d *Dev) readVector(reg byte) (RawVector, error) {
	buf, err := d.t.ReadBlock(reg, 6)
	if err != nil {
		return RawVector{}, err
	}
	return RawVector{
		X: int16(uint16(buf[0]) | uint16(buf[1])<<8),
		Y: int16(uint16(buf[2]) | uint16(buf[3])<<8),
		Z: int16(uint16(buf[4]) | uint16(buf[5])<<8),
	}, nil
}

func (d *Dev) setBit(reg, mask byte) error {
	v, err := d.t.ReadByte(reg)
	if err != nil {
		return err
	}
	return d.t.WriteByte(reg, v|mask)
}

func (d *Dev) clearBit(reg, mask byte) error {
	v, err := d.t.ReadByte(reg)
	if err != nil {
		return err
	}
	return d.t.WriteByte(reg, v&^mask)
}

func (r RawVector) scale(k float64) Vector {
	return Vector{
		X: float64(r.X) * k,
		Y: float64(r.Y) * k,
		Z: float64(r.Z) * k,
	}
}

func (v Vector) scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}
