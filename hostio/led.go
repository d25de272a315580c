package hostio

import "log"

// LED implements riscv.LED by logging each write, standing in for a
// physical LED bank the way a headless build of the teacher's devices
// stands in for real hardware.
type LED struct {
	logger *log.Logger
	last   uint32
}

// NewLED builds an LED sink that logs through l (or the standard
// logger, if l is nil).
func NewLED(l *log.Logger) *LED {
	if l == nil {
		l = log.Default()
	}
	return &LED{logger: l}
}

// Write logs the new LED value if it changed from the last write.
func (d *LED) Write(value uint32) {
	if value == d.last {
		return
	}
	d.last = value
	d.logger.Printf("led: 0x%08X", value)
}
