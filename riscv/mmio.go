package riscv

// MMIO register offsets relative to IOStart (spec section 4.C).
const (
	ioTimer       = 0
	ioSwitchesLED = 4
	ioSerialData  = 8
	ioSerialStat  = 12
	ioSPIData     = 16
	ioSPICtrl     = 20
	ioMouseKbd    = 24
	ioKbdPop      = 28
	ioTrace       = 32
	ioClipCtrl    = 40
	ioClipData    = 44
)

// readIO dispatches a load against an address outside RAM: the MMIO
// register file, and (since the data bus never special-cases the ROM
// address range — only instruction fetch does) anything else in the
// top of the address space reads back as undefined IO.
func (m *Machine) readIO(addr uint32) uint32 {
	switch addr - IOStart {
	case ioTimer:
		m.progress--
		return m.currentTick
	case ioSwitchesLED:
		return m.sw
	case ioSerialData:
		if m.serial != nil {
			return m.serial.ReadData()
		}
		return 0
	case ioSerialStat:
		if m.serial != nil {
			return m.serial.ReadStatus()
		}
		return 0
	case ioSPIData:
		dev := m.spi[m.spiSelect]
		if dev != nil {
			return dev.ReadData()
		}
		return 255
	case ioSPICtrl:
		return 1
	case ioMouseKbd:
		v := m.mouse
		if m.keyLen > 0 {
			v |= 1 << 28
		} else {
			m.progress--
		}
		return v
	case ioKbdPop:
		if m.keyLen == 0 {
			return 0
		}
		b := m.keyBuf[0]
		copy(m.keyBuf[:], m.keyBuf[1:m.keyLen])
		m.keyLen--
		return uint32(b)
	case ioClipCtrl:
		if m.clipboard != nil {
			return m.clipboard.ReadControl()
		}
		return 0
	case ioClipData:
		if m.clipboard != nil {
			return m.clipboard.ReadData()
		}
		return 0
	default:
		m.logger.Logf("riscv: read from undefined IO address 0x%08X", addr)
		return 0
	}
}

// writeIO dispatches a store against an address outside RAM.
func (m *Machine) writeIO(addr uint32, value uint32) {
	switch addr - IOStart {
	case ioSwitchesLED:
		if m.led != nil {
			m.led.Write(value)
		}
	case ioSerialData:
		if m.serial != nil {
			m.serial.WriteData(value)
		}
	case ioSPIData:
		if dev := m.spi[m.spiSelect]; dev != nil {
			dev.WriteData(value)
		}
	case ioSPICtrl:
		m.spiSelect = value & 3
	case ioTrace:
		m.traceWrite(value)
	case ioClipCtrl:
		if m.clipboard != nil {
			m.clipboard.WriteControl(value)
		}
	case ioClipData:
		if m.clipboard != nil {
			m.clipboard.WriteData(value)
		}
	case ioTimer, ioSerialStat, ioMouseKbd, ioKbdPop:
		// Read-only registers; writes are silently discarded, matching
		// the original's store dispatch which has no case for them.
	default:
		m.logger.Logf("riscv: write to undefined IO address 0x%08X (value 0x%08X)", addr, value)
	}
}
