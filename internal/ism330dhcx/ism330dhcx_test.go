package ism330dhcx

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func newTestDev(t *testing.T, opts *Opts) (*Dev, *Mock) {
	t.Helper()
	m := NewMock()
	d := New(m, opts)
	if err := d.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return d, m
}

func TestBeginAppliesBaseline(t *testing.T) {
	opts := DefaultOpts
	opts.AccelFS = AccelFS8G
	opts.GyroFS = GyroFS1000DPS
	d, m := newTestDev(t, &opts)

	if v := m.Register(RegCtrl9XL); v&ctrl9I3CDis == 0 {
		t.Errorf("CTRL9_XL = 0x%02X, I3C_DISABLE not set", v)
	}
	if v := m.Register(RegCtrl3C); v&ctrl3IFInc == 0 || v&ctrl3BDU == 0 {
		t.Errorf("CTRL3_C = 0x%02X, want IF_INC and BDU set", v)
	}
	if v := m.Register(RegFIFOCtrl4); v&fifoModeMask != byte(FIFOBypass) {
		t.Errorf("FIFO_CTRL4 = 0x%02X, want bypass mode", v)
	}
	// Both subsystems powered down, configured full scale already latched.
	if v := m.Register(RegCtrl1XL); v != 0x0C {
		t.Errorf("CTRL1_XL = 0x%02X, want 0x0C (ODR off, ±8g)", v)
	}
	if v := m.Register(RegCtrl2G); v != 0x08 {
		t.Errorf("CTRL2_G = 0x%02X, want 0x08 (ODR off, ±1000dps)", v)
	}
	if d.AccelEnabled() || d.GyroEnabled() {
		t.Error("subsystems should start disabled after Begin")
	}
}

func TestBeginRejectsWrongIdentity(t *testing.T) {
	m := NewMock()
	m.SetRegister(RegWhoAmI, 0x00)
	d := New(m, nil)

	err := d.Begin()
	if err == nil {
		t.Fatal("Begin should fail on WHO_AM_I mismatch")
	}
	if !strings.Contains(err.Error(), "0x00") || !strings.Contains(err.Error(), "0x6B") {
		t.Errorf("identity error should report observed and expected bytes, got %q", err)
	}
	// No configuration must have been written.
	if v := m.Register(RegCtrl3C); v != 0 {
		t.Errorf("CTRL3_C = 0x%02X after failed Begin, want 0x00", v)
	}
}

func TestBeginPropagatesTransportError(t *testing.T) {
	m := NewMock()
	busErr := errors.New("i2c: NACK")
	m.Err = busErr
	d := New(m, nil)

	if err := d.Begin(); !errors.Is(err, busErr) {
		t.Errorf("Begin = %v, want the bus error unmodified", err)
	}
}

func TestEnableAccelPacksConfig(t *testing.T) {
	d, m := newTestDev(t, nil) // defaults: 104 Hz, ±2 g

	if err := d.EnableAccel(); err != nil {
		t.Fatalf("EnableAccel: %v", err)
	}
	if v := m.Register(RegCtrl1XL); v != 0x40 {
		t.Errorf("CTRL1_XL = 0x%02X, want 0x40 (ODR=104Hz, FS=±2g)", v)
	}
	if !d.AccelEnabled() {
		t.Error("accel should be marked enabled")
	}
}

func TestEnableGyroPacksConfig(t *testing.T) {
	d, m := newTestDev(t, nil) // defaults: 104 Hz, ±2000 dps

	if err := d.EnableGyro(); err != nil {
		t.Fatalf("EnableGyro: %v", err)
	}
	if v := m.Register(RegCtrl2G); v != 0x4C {
		t.Errorf("CTRL2_G = 0x%02X, want 0x4C (ODR=104Hz, FS=±2000dps)", v)
	}
	if !d.GyroEnabled() {
		t.Error("gyro should be marked enabled")
	}
}

// ±250 dps and ±2 g carry bit code 0, so construction must store them as
// given rather than treating them as unset.
func TestNewKeepsZeroCodedFullScale(t *testing.T) {
	opts := DefaultOpts
	opts.GyroFS = GyroFS250DPS
	d, m := newTestDev(t, &opts)

	if d.GyroFullScale() != GyroFS250DPS {
		t.Fatalf("stored gyro FS = %d, want %d (±250dps)", d.GyroFullScale(), GyroFS250DPS)
	}
	if err := d.EnableGyro(); err != nil {
		t.Fatalf("EnableGyro: %v", err)
	}
	if v := m.Register(RegCtrl2G); v != 0x40 {
		t.Errorf("CTRL2_G = 0x%02X, want 0x40 (ODR=104Hz, FS=±250dps)", v)
	}

	m.SetGyroRaw(1000, 0, 0)
	mdps, err := d.ReadGyroMDPS()
	if err != nil {
		t.Fatalf("ReadGyroMDPS: %v", err)
	}
	if math.Abs(mdps.X-8750) > eps {
		t.Errorf("gyro X = %v mdps, want 8750 (8.75 mdps/LSB at ±250dps)", mdps.X)
	}
}

func TestNewHonorsExplicitODROff(t *testing.T) {
	d, m := newTestDev(t, &Opts{
		AccelODR: AccelODROff,
		AccelFS:  AccelFS2G,
		GyroODR:  GyroODROff,
		GyroFS:   GyroFS250DPS,
	})

	if d.AccelODR() != AccelODROff || d.GyroODR() != GyroODROff {
		t.Fatalf("stored ODRs = %d/%d, want both off", d.AccelODR(), d.GyroODR())
	}
	// Enabling with ODR off keeps the rate nibble at zero.
	if err := d.EnableAccel(); err != nil {
		t.Fatalf("EnableAccel: %v", err)
	}
	if v := m.Register(RegCtrl1XL); v != 0x00 {
		t.Errorf("CTRL1_XL = 0x%02X, want 0x00 (ODR off, ±2g)", v)
	}
}

func TestDisablePreservesFullScale(t *testing.T) {
	opts := DefaultOpts
	opts.AccelFS = AccelFS8G
	opts.GyroFS = GyroFS4000DPS
	d, m := newTestDev(t, &opts)

	if err := d.EnableAccel(); err != nil {
		t.Fatalf("EnableAccel: %v", err)
	}
	if err := d.EnableGyro(); err != nil {
		t.Fatalf("EnableGyro: %v", err)
	}
	if err := d.DisableAccel(); err != nil {
		t.Fatalf("DisableAccel: %v", err)
	}
	if err := d.DisableGyro(); err != nil {
		t.Fatalf("DisableGyro: %v", err)
	}

	if v := m.Register(RegCtrl1XL); v != 0x0C {
		t.Errorf("CTRL1_XL = 0x%02X after disable, want 0x0C (ODR nibble 0, ±8g kept)", v)
	}
	if v := m.Register(RegCtrl2G); v != 0x01 {
		t.Errorf("CTRL2_G = 0x%02X after disable, want 0x01 (ODR nibble 0, ±4000dps kept)", v)
	}
	if d.AccelEnabled() || d.GyroEnabled() {
		t.Error("subsystems should be marked disabled")
	}
	// Stored settings survive for the next enable.
	if d.AccelFullScale() != AccelFS8G || d.GyroFullScale() != GyroFS4000DPS {
		t.Error("stored full scales must survive disable")
	}
	if d.AccelODR() != AccelODR104Hz || d.GyroODR() != GyroODR104Hz {
		t.Error("stored ODRs must survive disable")
	}
}

func TestSetODRWhileDisabledDefersWrite(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.SetAccelODR(AccelODR208Hz); err != nil {
		t.Fatalf("SetAccelODR: %v", err)
	}
	if v := m.Register(RegCtrl1XL); v != 0x00 {
		t.Errorf("CTRL1_XL = 0x%02X, setter on a disabled subsystem must not touch the bus", v)
	}
	if err := d.EnableAccel(); err != nil {
		t.Fatalf("EnableAccel: %v", err)
	}
	if v := m.Register(RegCtrl1XL); v != 0x50 {
		t.Errorf("CTRL1_XL = 0x%02X after enable, want 0x50 (ODR=208Hz)", v)
	}
}

func TestSetFullScaleWhileEnabledRewrites(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.EnableGyro(); err != nil {
		t.Fatalf("EnableGyro: %v", err)
	}
	if err := d.SetGyroFullScale(GyroFS500DPS); err != nil {
		t.Fatalf("SetGyroFullScale: %v", err)
	}
	if v := m.Register(RegCtrl2G); v != 0x44 {
		t.Errorf("CTRL2_G = 0x%02X, want 0x44 (ODR=104Hz, FS=±500dps)", v)
	}
}

// Changing full scale on a disabled subsystem updates only stored state,
// yet conversions already use the new sensitivity. That mismatch is the
// documented behavior and must not be "fixed".
func TestSetFullScaleWhileDisabledAffectsConversionOnly(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.SetAccelFullScale(AccelFS4G); err != nil {
		t.Fatalf("SetAccelFullScale: %v", err)
	}
	if v := m.Register(RegCtrl1XL); v != 0x00 {
		t.Errorf("CTRL1_XL = 0x%02X, hardware register must stay untouched", v)
	}

	m.SetAccelRaw(1000, -1000, 256)
	v, err := d.ReadAccelMG()
	if err != nil {
		t.Fatalf("ReadAccelMG: %v", err)
	}
	if math.Abs(v.X-122.0) > eps || math.Abs(v.Y+122.0) > eps || math.Abs(v.Z-31.232) > eps {
		t.Errorf("converted accel = %+v, want ±4g sensitivity (0.122 mg/LSB) applied", v)
	}
}

func TestAccelRoundTrip(t *testing.T) {
	d, m := newTestDev(t, nil)
	if err := d.EnableAccel(); err != nil {
		t.Fatalf("EnableAccel: %v", err)
	}

	m.SetAccelRaw(16384, -16384, 1)
	raw, err := d.ReadAccelRaw()
	if err != nil {
		t.Fatalf("ReadAccelRaw: %v", err)
	}
	if raw != (RawVector{16384, -16384, 1}) {
		t.Errorf("raw accel = %+v, want {16384 -16384 1}", raw)
	}

	mg, err := d.ReadAccelMG()
	if err != nil {
		t.Fatalf("ReadAccelMG: %v", err)
	}
	want := Vector{16384 * 0.061, -16384 * 0.061, 0.061}
	if math.Abs(mg.X-want.X) > eps || math.Abs(mg.Y-want.Y) > eps || math.Abs(mg.Z-want.Z) > eps {
		t.Errorf("accel mg = %+v, want %+v", mg, want)
	}

	g, err := d.ReadAccelG()
	if err != nil {
		t.Fatalf("ReadAccelG: %v", err)
	}
	if math.Abs(g.X-want.X/1000) > eps {
		t.Errorf("accel g = %+v, want mg/1000", g)
	}
}

func TestGyroRoundTrip(t *testing.T) {
	d, m := newTestDev(t, nil) // ±2000 dps, 70 mdps/LSB
	if err := d.EnableGyro(); err != nil {
		t.Fatalf("EnableGyro: %v", err)
	}

	m.SetGyroRaw(100, -100, 0)
	raw, err := d.ReadGyroRaw()
	if err != nil {
		t.Fatalf("ReadGyroRaw: %v", err)
	}
	if raw != (RawVector{100, -100, 0}) {
		t.Errorf("raw gyro = %+v, want {100 -100 0}", raw)
	}

	mdps, err := d.ReadGyroMDPS()
	if err != nil {
		t.Fatalf("ReadGyroMDPS: %v", err)
	}
	if math.Abs(mdps.X-7000) > eps || math.Abs(mdps.Y+7000) > eps || mdps.Z != 0 {
		t.Errorf("gyro mdps = %+v, want {7000 -7000 0}", mdps)
	}

	dps, err := d.ReadGyroDPS()
	if err != nil {
		t.Fatalf("ReadGyroDPS: %v", err)
	}
	if math.Abs(dps.X-7.0) > eps {
		t.Errorf("gyro dps X = %v, want 7", dps.X)
	}
}

func TestStatusDecoding(t *testing.T) {
	d, m := newTestDev(t, nil)

	m.SetRegister(RegStatus, 0x07)
	s, err := d.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if !s.AccelReady || !s.GyroReady || !s.TempReady {
		t.Errorf("status 0x07 = %+v, want all ready", s)
	}

	m.SetRegister(RegStatus, 0x00)
	s, err = d.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if s.AccelReady || s.GyroReady || s.TempReady {
		t.Errorf("status 0x00 = %+v, want none ready", s)
	}

	m.SetDataReady(false, true, false)
	s, err = d.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if s.AccelReady || !s.GyroReady || s.TempReady {
		t.Errorf("status = %+v, want gyro only", s)
	}
}

func TestTemperatureConversion(t *testing.T) {
	d, m := newTestDev(t, nil)

	m.SetTempRaw(0)
	c, err := d.ReadTempC()
	if err != nil {
		t.Fatalf("ReadTempC: %v", err)
	}
	if c != 25.0 {
		t.Errorf("temp(raw=0) = %v °C, want exactly 25.0", c)
	}

	m.SetTempRaw(256)
	c, err = d.ReadTempC()
	if err != nil {
		t.Fatalf("ReadTempC: %v", err)
	}
	if c != 26.0 {
		t.Errorf("temp(raw=256) = %v °C, want exactly 26.0", c)
	}

	m.SetTempRaw(-512)
	c, err = d.ReadTempC()
	if err != nil {
		t.Fatalf("ReadTempC: %v", err)
	}
	if c != 23.0 {
		t.Errorf("temp(raw=-512) = %v °C, want exactly 23.0", c)
	}
}

func TestReadIMUTempInclusion(t *testing.T) {
	d, m := newTestDev(t, nil)
	m.SetTempRaw(256)

	data, err := d.ReadIMU(false)
	if err != nil {
		t.Fatalf("ReadIMU(false): %v", err)
	}
	if data.HasTemp || data.TempC != 0 {
		t.Errorf("ReadIMU(false) populated temperature: %+v", data)
	}

	data, err = d.ReadIMU(true)
	if err != nil {
		t.Fatalf("ReadIMU(true): %v", err)
	}
	if !data.HasTemp || data.TempC != 26.0 {
		t.Errorf("ReadIMU(true) = %+v, want HasTemp and 26.0 °C", data)
	}
}

func TestResetCompletes(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if v := m.Register(RegCtrl3C); v&ctrl3SWReset != 0 {
		t.Errorf("CTRL3_C = 0x%02X, SW_RESET should have cleared", v)
	}
}

func TestResetTimeout(t *testing.T) {
	d, m := newTestDev(t, nil)
	m.HoldReset = true

	if err := d.Reset(); !errors.Is(err, ErrResetTimeout) {
		t.Errorf("Reset = %v, want ErrResetTimeout", err)
	}
}

func TestReadErrorsPropagateUnmodified(t *testing.T) {
	d, m := newTestDev(t, nil)
	busErr := errors.New("i2c: bus fault")
	m.Err = busErr

	if _, err := d.ReadAccelMG(); !errors.Is(err, busErr) {
		t.Errorf("ReadAccelMG = %v, want bus error", err)
	}
	if _, err := d.ReadStatus(); !errors.Is(err, busErr) {
		t.Errorf("ReadStatus = %v, want bus error", err)
	}
	if err := d.EnableGyro(); !errors.Is(err, busErr) {
		t.Errorf("EnableGyro = %v, want bus error", err)
	}
	if d.GyroEnabled() {
		t.Error("gyro must not be marked enabled after a failed write")
	}
}

func TestRegisterEscapeHatch(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.WriteRegister(RegCtrl8XL, 0xA5); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	v, err := d.ReadRegister(RegCtrl8XL)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != 0xA5 {
		t.Errorf("ReadRegister = 0x%02X, want 0xA5", v)
	}

	m.SetAccelRaw(1, 2, 3)
	buf, err := d.ReadRegisters(RegOutXLA, 6)
	if err != nil {
		t.Fatalf("ReadRegisters: %v", err)
	}
	if len(buf) != 6 || buf[0] != 1 || buf[2] != 2 || buf[4] != 3 {
		t.Errorf("block read = %v, want little-endian 1,2,3 vector", buf)
	}
}

func TestSetOperatingModes(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.SetAccelMode(LowPowerNormal); err != nil {
		t.Fatalf("SetAccelMode: %v", err)
	}
	if v := m.Register(RegCtrl6C); v&ctrl6XLHM == 0 {
		t.Errorf("CTRL6_C = 0x%02X, XL_HM_MODE should be set in low-power mode", v)
	}
	if err := d.SetAccelMode(HighPerformance); err != nil {
		t.Fatalf("SetAccelMode: %v", err)
	}
	if v := m.Register(RegCtrl6C); v&ctrl6XLHM != 0 {
		t.Errorf("CTRL6_C = 0x%02X, XL_HM_MODE should be clear in high-performance mode", v)
	}

	if err := d.SetGyroMode(LowPowerNormal); err != nil {
		t.Fatalf("SetGyroMode: %v", err)
	}
	if v := m.Register(RegCtrl7G); v&ctrl7GHM == 0 {
		t.Errorf("CTRL7_G = 0x%02X, G_HM_MODE should be set in low-power mode", v)
	}
}

func TestSetFIFOMode(t *testing.T) {
	d, m := newTestDev(t, nil)

	// Upper FIFO_CTRL4 bits must survive the 3-bit field update.
	m.SetRegister(RegFIFOCtrl4, 0x50)
	if err := d.SetFIFOMode(FIFOContinuous); err != nil {
		t.Fatalf("SetFIFOMode: %v", err)
	}
	if v := m.Register(RegFIFOCtrl4); v != 0x56 {
		t.Errorf("FIFO_CTRL4 = 0x%02X, want 0x56 (upper bits kept, mode=continuous)", v)
	}
}

func TestCloseReleasesTransport(t *testing.T) {
	d, m := newTestDev(t, nil)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !m.Closed() {
		t.Error("Close must release the transport")
	}
}

func TestMockWordEndianness(t *testing.T) {
	m := NewMock()
	if err := m.WriteWord(RegOutTempL, 0x1234); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	if m.Register(RegOutTempL) != 0x34 || m.Register(RegOutTempH) != 0x12 {
		t.Error("words must be stored little-endian like the device outputs them")
	}
	w, err := m.ReadWord(RegOutTempL)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if w != 0x1234 {
		t.Errorf("ReadWord = 0x%04X, want 0x1234", w)
	}
}
