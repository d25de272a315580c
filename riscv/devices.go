// Package riscv implements the RV32IM core: decoder, executor, unified
// bus, MMIO register file, framebuffer damage tracker, and call-trace
// sidechannel for an Oberon-station-style workstation.
package riscv

// LED is the single-register LED peripheral. A Machine with no LED
// installed treats writes as no-ops.
type LED interface {
	Write(value uint32)
}

// Serial models the RS-232 port. A Machine with no Serial installed
// returns 0 from both reads and discards writes.
type Serial interface {
	ReadStatus() uint32
	ReadData() uint32
	WriteData(value uint32)
}

// SPI models one of the four SPI channels (typically an SD-card style
// block device behind channel 1 or 2). An absent channel reads back 255.
type SPI interface {
	ReadData() uint32
	WriteData(value uint32)
}

// Clipboard models the host clipboard bridge's control/data register
// pair. An absent Clipboard returns 0 from reads and discards writes.
type Clipboard interface {
	ReadControl() uint32
	WriteControl(value uint32)
	ReadData() uint32
	WriteData(value uint32)
}

// Logger receives diagnostic output from the core: unknown instructions,
// undefined IO accesses, trace-stack misuse, and the call-trace dump.
// It is the generalization of the teacher's logging-bool/write_log gate
// (see original_source's cpu.c write_log) into a narrow interface so a
// host can route it anywhere.
type Logger interface {
	Logf(format string, args ...any)
}

// discardLogger is the default Logger; it drops everything.
type discardLogger struct{}

func (discardLogger) Logf(string, ...any) {}
