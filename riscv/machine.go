package riscv

import (
	"fmt"

	"github.com/solbjorg/oberon-riscv-emu/riscv/rom"
)

// Address-space constants (spec section 6).
const (
	DefaultMemSize      = 0x00100000 // 1 MiB, word-addressable
	DefaultDisplayStart = 0x000E7F00

	ROMStart  = 0xFFFFF800
	ROMWords  = rom.Words
	IOStart   = 0xFFFFFFC0
	NumRegs   = 32
	NumCSRs   = 4096
	TraceSize = 500

	// Framebuffer geometry: 1024x768 pixels, 1bpp, 32 pixels per word.
	FBWidth  = 1024 / 32
	FBHeight = 768

	keyboardCapacity = 16

	// CSR addresses the core actually reads/writes.
	csrCycle  = 0xC00
	csrCycleH = 0xC80

	startProgress = 20
)

// Frame is one entry in the call-trace stack (spec section 4.G).
type Frame struct {
	file string
	pos  uint32
}

// Machine is a complete emulated workstation: CPU registers, CSRs, RAM,
// ROM, the MMIO register file, the damage tracker, and the call-trace
// stack. A Machine is single-threaded and cooperatively scheduled by its
// host — see spec section 5; there is no internal locking.
type Machine struct {
	pc        uint32
	registers [NumRegs]uint32
	csr       [NumCSRs]uint32

	ram  []uint32 // word-indexed, length memSize/4
	rom  [ROMWords]uint32

	memSize      uint32
	displayStart uint32
	fbWidth      int
	fbHeight     int
	damage       Rect

	led       LED
	serial    Serial
	spi       [4]SPI
	spiSelect uint32
	clipboard Clipboard

	keyBuf [keyboardCapacity]byte
	keyLen int
	mouse  uint32
	sw     uint32

	currentTick uint32
	progress    int
	instrCount  uint64
	watchMem    *uint32

	trace      [TraceSize]Frame
	traceDepth int
	buildName  [maxFrameNameLen]byte
	buildLen   int

	logger Logger
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithMemSize overrides the default 1 MiB RAM size. Must be a multiple
// of 4; otherwise the default is kept.
func WithMemSize(size uint32) Option {
	return func(m *Machine) {
		if size != 0 && size%4 == 0 {
			m.memSize = size
		}
	}
}

// WithDisplayStart overrides the byte address at which the framebuffer
// subregion of RAM begins.
func WithDisplayStart(addr uint32) Option {
	return func(m *Machine) { m.displayStart = addr }
}

// WithLogger installs the diagnostic sink used for unknown instructions,
// undefined IO, and call-trace protocol errors.
func WithLogger(l Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithWatchAddress arms the debugger watchpoint: a store to this byte
// address halts the current slice (spec section 4.F).
func WithWatchAddress(addr uint32) Option {
	return func(m *Machine) {
		a := addr
		m.watchMem = &a
	}
}

// NewMachine constructs a Machine and resets it to its post-reset state.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		memSize:      DefaultMemSize,
		displayStart: DefaultDisplayStart,
		fbWidth:      FBWidth,
		fbHeight:     FBHeight,
		logger:       discardLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ram = make([]uint32, m.memSize/4)
	m.rom = rom.Load()
	m.Reset()
	return m
}

// Reset restores the Machine to its power-on state: PC at ROMStart,
// registers/CSRs/RAM zeroed, ROM reloaded, damage set to full-screen so
// the first render repaints everything, call-trace stack cleared.
func (m *Machine) Reset() {
	m.pc = ROMStart
	m.registers = [NumRegs]uint32{}
	m.csr = [NumCSRs]uint32{}
	for i := range m.ram {
		m.ram[i] = 0
	}
	m.rom = rom.Load()
	m.damage = Rect{X1: 0, Y1: 0, X2: m.fbWidth - 1, Y2: m.fbHeight - 1}
	m.traceDepth = 0
	m.buildLen = 0
	m.instrCount = 0
	m.keyLen = 0
	m.mouse = 0
	m.spiSelect = 0
}

// PC returns the current program counter.
func (m *Machine) PC() uint32 { return m.pc }

// Register returns the current value of general-purpose register r
// (0..31). x0 always reads as 0.
func (m *Machine) Register(r int) uint32 {
	if r == 0 {
		return 0
	}
	return m.registers[r&0x1F]
}

// InstrCount returns the informational retired-instruction count (spec
// section 3; subject to the LED-write instruction-count correction in
// section 4.F).
func (m *Machine) InstrCount() uint64 { return m.instrCount }

func (m *Machine) writeReg(r uint32, v uint32) {
	if r != 0 {
		m.registers[r&0x1F] = v
	}
}

// SetLED installs (or, with nil, removes) the LED device.
func (m *Machine) SetLED(d LED) { m.led = d }

// SetSerial installs (or, with nil, removes) the RS-232 device.
func (m *Machine) SetSerial(d Serial) { m.serial = d }

// SetClipboard installs (or, with nil, removes) the clipboard bridge.
func (m *Machine) SetClipboard(d Clipboard) { m.clipboard = d }

// SetSPI installs an SPI device at the given channel. Only channels 1
// and 2 are installable, matching the host wiring in the reference
// implementation (original_source/src/emu/cpu.c riscv_set_spi); other
// indices are silently ignored.
func (m *Machine) SetSPI(index int, d SPI) {
	if index == 1 || index == 2 {
		m.spi[index] = d
	}
}

// SetSwitches sets the 32-bit switch register read at MMIO offset 4.
func (m *Machine) SetSwitches(value uint32) { m.sw = value }

// SetTick installs the millisecond counter the host advances once per
// scheduling slice. The spec requires current_tick be monotonically
// non-decreasing over the Machine's lifetime; a regression is logged
// rather than rejected, since a wrapping host clock is a host bug, not
// a core error.
func (m *Machine) SetTick(tick uint32) {
	if tick < m.currentTick {
		m.logger.Logf("riscv: tick went backwards: %d -> %d", m.currentTick, tick)
	}
	m.currentTick = tick
}

// Tick returns the last value installed by SetTick.
func (m *Machine) Tick() uint32 { return m.currentTick }

// MouseMoved updates the x/y fields of the mouse register. Coordinates
// outside [0,4096) are ignored for that axis (original_source/cpu.c
// riscv_mouse_moved).
func (m *Machine) MouseMoved(x, y int) {
	if x >= 0 && x < 4096 {
		m.mouse = (m.mouse &^ 0x00000FFF) | uint32(x)
	}
	if y >= 0 && y < 4096 {
		m.mouse = (m.mouse &^ 0x00FFF000) | (uint32(y) << 12)
	}
}

// MouseButton sets or clears one of the three button bits. button must
// be 1, 2, or 3 — the only values spec section 6's "1 << (27 - button)"
// formula is defined for; any other value returns an error and leaves
// the mouse register untouched.
func (m *Machine) MouseButton(button int, down bool) error {
	if button < 1 || button > 3 {
		return fmt.Errorf("riscv: mouse button %d out of range [1,3]", button)
	}
	bit := uint32(1) << uint(27-button)
	if down {
		m.mouse |= bit
	} else {
		m.mouse &^= bit
	}
	return nil
}

// KeyboardInput appends scancodes to the keyboard FIFO. Bytes that
// would overflow the 16-byte capacity are dropped (the whole batch is
// dropped if it doesn't fit, matching the original's all-or-nothing
// memmove guard).
func (m *Machine) KeyboardInput(scancodes []byte) {
	if keyboardCapacity-m.keyLen < len(scancodes) {
		return
	}
	copy(m.keyBuf[m.keyLen:], scancodes)
	m.keyLen += len(scancodes)
}

// FramebufferView returns a read-only little-endian word view of the
// framebuffer subregion of RAM: ram[displayStart/4 :].
func (m *Machine) FramebufferView() []uint32 {
	return m.ram[m.displayStart/4:]
}

// TakeDamage returns the accumulated dirty rectangle and resets the
// tracker to the empty sentinel. The host must call this, and read the
// implied framebuffer words, only between calls to Execute (spec
// section 5).
func (m *Machine) TakeDamage() Rect {
	d := m.damage
	m.damage = emptyRect(m.fbWidth, m.fbHeight)
	return d
}
