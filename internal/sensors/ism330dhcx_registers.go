// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// RegisterInfo describes one register for the debug tooling.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes one field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// GetISM330DHCXRegisterMap returns metadata for the ISM330DHCX registers the
// tooling cares about: names, access types, and bit field definitions.
func GetISM330DHCXRegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Configuration Registers
		{Address: "0x01", Name: "FUNC_CFG_ACCESS", Description: "Embedded functions configuration access", Access: "RW", Default: "0x00"},
		{Address: "0x0A", Name: "FIFO_CTRL4", Description: "FIFO control 4", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "DEC_TS_BATCH", Description: "Timestamp batching decimation", Values: "0=Off"},
				{Bits: "5:4", Name: "ODR_T_BATCH", Description: "Temperature batching rate", Values: "0=Off, 1=1.6Hz, 2=12.5Hz, 3=52Hz"},
				{Bits: "2:0", Name: "FIFO_MODE", Description: "FIFO mode", Values: "0=Bypass, 1=FIFO, 3=Continuous-to-FIFO, 4=Bypass-to-Continuous, 6=Continuous, 7=Bypass-to-FIFO"},
			}},
		{Address: "0x10", Name: "CTRL1_XL", Description: "Accelerometer control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "ODR_XL", Description: "Accel output data rate", Values: "0=Off, 1=12.5Hz ... 10=6664Hz, 11=1.6Hz (low power)"},
				{Bits: "3:2", Name: "FS_XL", Description: "Accel full scale", Values: "0=±2g, 1=±16g, 2=±4g, 3=±8g"},
				{Bits: "1", Name: "LPF2_XL_EN", Description: "Accel LPF2 path enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x11", Name: "CTRL2_G", Description: "Gyroscope control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "ODR_G", Description: "Gyro output data rate", Values: "0=Off, 1=12.5Hz ... 10=6664Hz"},
				{Bits: "3:2", Name: "FS_G", Description: "Gyro full scale", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
				{Bits: "1", Name: "FS_125", Description: "±125°/s override", Values: "0=Per FS_G, 1=±125°/s"},
				{Bits: "0", Name: "FS_4000", Description: "±4000°/s override", Values: "0=Per FS_G, 1=±4000°/s"},
			}},
		{Address: "0x12", Name: "CTRL3_C", Description: "Control register 3", Access: "RW", Default: "0x04",
			BitFields: []BitField{
				{Bits: "7", Name: "BOOT", Description: "Reboot memory content", Values: "1=Reboot"},
				{Bits: "6", Name: "BDU", Description: "Block data update", Values: "0=Continuous, 1=Held until MSB+LSB read"},
				{Bits: "2", Name: "IF_INC", Description: "Register auto-increment", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "SW_RESET", Description: "Software reset", Values: "1=Reset, self-clearing"},
			}},
		{Address: "0x15", Name: "CTRL6_C", Description: "Control register 6", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "XL_HM_MODE", Description: "Accel high-performance disable", Values: "0=High performance, 1=Low power/normal"},
				{Bits: "2:0", Name: "FTYPE", Description: "Gyro LPF1 bandwidth", Values: "0-7"},
			}},
		{Address: "0x16", Name: "CTRL7_G", Description: "Control register 7", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "G_HM_MODE", Description: "Gyro high-performance disable", Values: "0=High performance, 1=Low power/normal"},
				{Bits: "6", Name: "HP_EN_G", Description: "Gyro high-pass filter enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x18", Name: "CTRL9_XL", Description: "Control register 9", Access: "RW", Default: "0xE0",
			BitFields: []BitField{
				{Bits: "1", Name: "I3C_DISABLE", Description: "Disable I3C interface", Values: "0=I3C enabled, 1=I3C disabled"},
			}},

		// Status
		{Address: "0x1E", Name: "STATUS_REG", Description: "Data ready status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2", Name: "TDA", Description: "Temperature data available", Values: ""},
				{Bits: "1", Name: "GDA", Description: "Gyroscope data available", Values: ""},
				{Bits: "0", Name: "XLDA", Description: "Accelerometer data available", Values: ""},
			}},

		// Sensor Data Registers (Read-Only)
		{Address: "0x20", Name: "OUT_TEMP_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x21", Name: "OUT_TEMP_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x22", Name: "OUTX_L_G", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x23", Name: "OUTX_H_G", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x24", Name: "OUTY_L_G", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x25", Name: "OUTY_H_G", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x26", Name: "OUTZ_L_G", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},
		{Address: "0x27", Name: "OUTZ_H_G", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x28", Name: "OUTX_L_A", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x29", Name: "OUTX_H_A", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x2A", Name: "OUTY_L_A", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x2B", Name: "OUTY_H_A", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x2C", Name: "OUTZ_L_A", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x2D", Name: "OUTZ_H_A", Description: "Accelerometer Z-Axis High Byte", Access: "R"},

		// FIFO Status
		{Address: "0x3A", Name: "FIFO_STATUS1", Description: "FIFO Status 1 (unread words low byte)", Access: "R"},
		{Address: "0x3B", Name: "FIFO_STATUS2", Description: "FIFO Status 2", Access: "R"},

		// Device Identification
		{Address: "0x0F", Name: "WHO_AM_I", Description: "Device ID (should be 0x6B)", Access: "R", Default: "0x6B"},
	}
}
