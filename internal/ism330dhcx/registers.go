// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ism330dhcx

import "fmt"

// I2C register map for the ST ISM330DHCX 6-axis IMU.
const (
	RegFuncCfgAccess  = 0x01
	RegPinCtrl        = 0x02
	RegFIFOCtrl1      = 0x07
	RegFIFOCtrl2      = 0x08
	RegFIFOCtrl3      = 0x09
	RegFIFOCtrl4      = 0x0A // FIFO_MODE[2:0]
	RegCounterBDRReg1 = 0x0B
	RegCounterBDRReg2 = 0x0C
	RegInt1Ctrl       = 0x0D
	RegInt2Ctrl       = 0x0E
	RegWhoAmI         = 0x0F
	RegCtrl1XL        = 0x10 // ODR_XL[3:0]<<4 | FS_XL[1:0]<<2
	RegCtrl2G         = 0x11 // ODR_G[3:0]<<4 | FS_G[3:0]
	RegCtrl3C         = 0x12 // BDU bit6, IF_INC bit2, SW_RESET bit0
	RegCtrl4C         = 0x13
	RegCtrl5C         = 0x14
	RegCtrl6C         = 0x15 // XL_HM_MODE bit4
	RegCtrl7G         = 0x16 // G_HM_MODE bit7
	RegCtrl8XL        = 0x17
	RegCtrl9XL        = 0x18 // I3C_DISABLE bit1
	RegCtrl10C        = 0x19
	RegAllIntSrc      = 0x1A
	RegWakeUpSrc      = 0x1B
	RegStatus         = 0x1E // XLDA bit0, GDA bit1, TDA bit2
	RegOutTempL       = 0x20
	RegOutTempH       = 0x21
	RegOutXLG         = 0x22 // gyro X low, then XH YL YH ZL ZH
	RegOutXLA         = 0x28 // accel X low, then XH YL YH ZL ZH
	RegFIFOStatus1    = 0x3A
	RegFIFOStatus2    = 0x3B
	RegInternalFreq   = 0x63
	RegFIFODataOutTag = 0x78
)

// Control bits used by the driver.
const (
	ctrl3SWReset = 0x01
	ctrl3IFInc   = 0x04
	ctrl3BDU     = 0x40
	ctrl6XLHM    = 0x10
	ctrl7GHM     = 0x80
	ctrl9I3CDis  = 0x02

	statusAccelReady = 0x01
	statusGyroReady  = 0x02
	statusTempReady  = 0x04

	fifoModeMask = 0x07
)

// Device identity and addressing.
const (
	WhoAmIValue = 0x6B // expected WHO_AM_I reply

	AddrLow  = 0x6A // SDO/SA0 strapped low
	AddrHigh = 0x6B // SDO/SA0 strapped high (default)
)

// AccelODR selects the accelerometer output data rate (CTRL1_XL ODR_XL).
type AccelODR byte

const (
	AccelODROff    AccelODR = 0x00
	AccelODR12Hz5  AccelODR = 0x01
	AccelODR26Hz   AccelODR = 0x02
	AccelODR52Hz   AccelODR = 0x03
	AccelODR104Hz  AccelODR = 0x04
	AccelODR208Hz  AccelODR = 0x05
	AccelODR416Hz  AccelODR = 0x06
	AccelODR833Hz  AccelODR = 0x07
	AccelODR1666Hz AccelODR = 0x08
	AccelODR3332Hz AccelODR = 0x09
	AccelODR6664Hz AccelODR = 0x0A
	AccelODR1Hz6   AccelODR = 0x0B // low-power only rate, accel has it, gyro does not
)

// GyroODR selects the gyroscope output data rate (CTRL2_G ODR_G).
type GyroODR byte

const (
	GyroODROff    GyroODR = 0x00
	GyroODR12Hz5  GyroODR = 0x01
	GyroODR26Hz   GyroODR = 0x02
	GyroODR52Hz   GyroODR = 0x03
	GyroODR104Hz  GyroODR = 0x04
	GyroODR208Hz  GyroODR = 0x05
	GyroODR416Hz  GyroODR = 0x06
	GyroODR833Hz  GyroODR = 0x07
	GyroODR1666Hz GyroODR = 0x08
	GyroODR3332Hz GyroODR = 0x09
	GyroODR6664Hz GyroODR = 0x0A
)

// AccelFullScale selects the accelerometer range (CTRL1_XL FS_XL).
// The bit codes are not ordinal: ±16 g sits between ±2 g and ±4 g.
type AccelFullScale byte

const (
	AccelFS2G  AccelFullScale = 0x00
	AccelFS16G AccelFullScale = 0x01
	AccelFS4G  AccelFullScale = 0x02
	AccelFS8G  AccelFullScale = 0x03
)

// GyroFullScale selects the gyroscope range (CTRL2_G low nibble).
// FS_G[1:0] live in bits 3:2, FS_125 is bit 1 and FS_4000 is bit 0, so the
// nibble values are non-contiguous. Never reorder these.
type GyroFullScale byte

const (
	GyroFS250DPS  GyroFullScale = 0x00
	GyroFS4000DPS GyroFullScale = 0x01
	GyroFS125DPS  GyroFullScale = 0x02
	GyroFS500DPS  GyroFullScale = 0x04
	GyroFS1000DPS GyroFullScale = 0x08
	GyroFS2000DPS GyroFullScale = 0x0C
)

// FIFOMode selects the FIFO_CTRL4 FIFO_MODE[2:0] field.
type FIFOMode byte

const (
	FIFOBypass             FIFOMode = 0x00
	FIFOStopWhenFull       FIFOMode = 0x01
	FIFOContinuousToFIFO   FIFOMode = 0x03
	FIFOBypassToContinuous FIFOMode = 0x04
	FIFOContinuous         FIFOMode = 0x06
	FIFOBypassToFIFO       FIFOMode = 0x07
)

// OperatingMode toggles the high-performance bit of a subsystem.
type OperatingMode byte

const (
	HighPerformance OperatingMode = iota
	LowPowerNormal
)

// Sensitivity tables, datasheet fixed-point constants. Do not derive these.
var accelSensitivityMG = map[AccelFullScale]float64{
	AccelFS2G:  0.061,
	AccelFS4G:  0.122,
	AccelFS8G:  0.244,
	AccelFS16G: 0.488,
}

var gyroSensitivityMDPS = map[GyroFullScale]float64{
	GyroFS125DPS:  4.37,
	GyroFS250DPS:  8.75,
	GyroFS500DPS:  17.50,
	GyroFS1000DPS: 35.0,
	GyroFS2000DPS: 70.0,
	GyroFS4000DPS: 140.0,
}

var accelODRHz = map[AccelODR]float64{
	AccelODROff:    0,
	AccelODR1Hz6:   1.6,
	AccelODR12Hz5:  12.5,
	AccelODR26Hz:   26,
	AccelODR52Hz:   52,
	AccelODR104Hz:  104,
	AccelODR208Hz:  208,
	AccelODR416Hz:  416,
	AccelODR833Hz:  833,
	AccelODR1666Hz: 1666,
	AccelODR3332Hz: 3332,
	AccelODR6664Hz: 6664,
}

var gyroODRHz = map[GyroODR]float64{
	GyroODROff:    0,
	GyroODR12Hz5:  12.5,
	GyroODR26Hz:   26,
	GyroODR52Hz:   52,
	GyroODR104Hz:  104,
	GyroODR208Hz:  208,
	GyroODR416Hz:  416,
	GyroODR833Hz:  833,
	GyroODR1666Hz: 1666,
	GyroODR3332Hz: 3332,
	GyroODR6664Hz: 6664,
}

// SensitivityMG returns the accel scale factor in mg/LSB.
func (fs AccelFullScale) SensitivityMG() float64 { return accelSensitivityMG[fs] }

// SensitivityMDPS returns the gyro scale factor in mdps/LSB.
func (fs GyroFullScale) SensitivityMDPS() float64 { return gyroSensitivityMDPS[fs] }

// Hz returns the nominal sample rate for the ODR code.
func (o AccelODR) Hz() float64 { return accelODRHz[o] }

// Hz returns the nominal sample rate for the ODR code.
func (o GyroODR) Hz() float64 { return gyroODRHz[o] }

// AccelODRFromHz maps a nominal rate in Hz to its ODR code.
func AccelODRFromHz(hz float64) (AccelODR, error) {
	for code, v := range accelODRHz {
		if v == hz {
			return code, nil
		}
	}
	return AccelODROff, fmt.Errorf("ism330dhcx: unsupported accel ODR %g Hz", hz)
}

// GyroODRFromHz maps a nominal rate in Hz to its ODR code.
func GyroODRFromHz(hz float64) (GyroODR, error) {
	for code, v := range gyroODRHz {
		if v == hz {
			return code, nil
		}
	}
	return GyroODROff, fmt.Errorf("ism330dhcx: unsupported gyro ODR %g Hz", hz)
}

// AccelFullScaleFromG maps a range in g to its full-scale code.
func AccelFullScaleFromG(g int) (AccelFullScale, error) {
	switch g {
	case 2:
		return AccelFS2G, nil
	case 4:
		return AccelFS4G, nil
	case 8:
		return AccelFS8G, nil
	case 16:
		return AccelFS16G, nil
	}
	return AccelFS2G, fmt.Errorf("ism330dhcx: unsupported accel range ±%dg", g)
}

// GyroFullScaleFromDPS maps a range in dps to its full-scale code.
func GyroFullScaleFromDPS(dps int) (GyroFullScale, error) {
	switch dps {
	case 125:
		return GyroFS125DPS, nil
	case 250:
		return GyroFS250DPS, nil
	case 500:
		return GyroFS500DPS, nil
	case 1000:
		return GyroFS1000DPS, nil
	case 2000:
		return GyroFS2000DPS, nil
	case 4000:
		return GyroFS4000DPS, nil
	}
	return GyroFS250DPS, fmt.Errorf("ism330dhcx: unsupported gyro range ±%d°/s", dps)
}
