package riscv

import "testing"

func TestWordStoreLoadRoundTrip(t *testing.T) {
	m := NewMachine()
	addr := uint32(40)
	m.Store(addr, 0xCAFEBABE)
	if got := m.Load(addr); got != 0xCAFEBABE {
		t.Fatalf("Load = 0x%X, want 0xCAFEBABE", got)
	}
}

func TestByteStoreLoadRoundTrip(t *testing.T) {
	m := NewMachine()
	addr := uint32(41)
	m.storeByte(addr, 0xFE)
	if got := m.loadByte(addr); got != 0xFE {
		t.Fatalf("loadByte = 0x%X, want 0xFE", got)
	}
	signed := signExtend(m.loadByte(addr), 8)
	if int32(signed) != -2 {
		t.Fatalf("sign-extended LB = %d, want -2", int32(signed))
	}
}

func TestHalfStoreLoadRoundTrip(t *testing.T) {
	m := NewMachine()
	addr := uint32(44)
	m.storeHalf(addr, 0xBEEF)
	if got := m.loadHalf(addr); got != 0xBEEF {
		t.Fatalf("loadHalf = 0x%X, want 0xBEEF", got)
	}
}

func TestDeviceAbsentDefaults(t *testing.T) {
	m := NewMachine()
	if got := m.readIO(IOStart + ioSPIData); got != 255 {
		t.Fatalf("absent SPI read = %d, want 255", got)
	}
	if got := m.readIO(IOStart + ioSerialData); got != 0 {
		t.Fatalf("absent serial read = %d, want 0", got)
	}
	// writes to absent devices must not panic
	m.writeIO(IOStart+ioSwitchesLED, 1)
	m.writeIO(IOStart+ioSerialData, 1)
}

func TestUndefinedIOReadsZero(t *testing.T) {
	m := NewMachine()
	if got := m.readIO(IOStart + 36); got != 0 {
		t.Fatalf("undefined IO read = %d, want 0", got)
	}
}

type fakeSPI struct {
	data uint32
}

func (f *fakeSPI) ReadData() uint32   { return f.data }
func (f *fakeSPI) WriteData(v uint32) { f.data = v }

func TestSPISelection(t *testing.T) {
	m := NewMachine()
	dev1 := &fakeSPI{data: 11}
	dev2 := &fakeSPI{data: 22}
	m.SetSPI(1, dev1)
	m.SetSPI(2, dev2)

	m.writeIO(IOStart+ioSPICtrl, 1)
	if got := m.readIO(IOStart + ioSPIData); got != 11 {
		t.Fatalf("channel 1 read = %d, want 11", got)
	}
	m.writeIO(IOStart+ioSPICtrl, 2)
	if got := m.readIO(IOStart + ioSPIData); got != 22 {
		t.Fatalf("channel 2 read = %d, want 22", got)
	}
}

func TestSetSPIIgnoresInvalidChannel(t *testing.T) {
	m := NewMachine()
	dev := &fakeSPI{data: 99}
	m.SetSPI(0, dev)
	m.SetSPI(3, dev)
	if m.spi[0] != nil || m.spi[3] != nil {
		t.Fatalf("SetSPI installed a device on a disallowed channel")
	}
}
