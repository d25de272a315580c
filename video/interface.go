// Package video defines the host-side display contract for the
// emulator and its pluggable backends, generalizing the teacher's
// multi-backend VideoOutput abstraction (video_interface.go) from an
// RGBA compositor down to the 1bpp, damage-driven framebuffer this
// core exports.
package video

import "fmt"

// Error carries detailed context for a video-backend failure, the
// same Operation/Details/Err shape as the teacher's VideoError.
type Error struct {
	Operation string
	Details   string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

func (e *Error) Unwrap() error { return e.Err }

// Damage is the backend-facing mirror of riscv.Rect: an inclusive
// dirty rectangle in framebuffer-word coordinates. Backends receive it
// as a plain struct so this package never imports riscv, keeping the
// dependency direction host-bridge -> core.
type Damage struct {
	X1, Y1, X2, Y2 int
}

// Empty reports whether d covers no words.
func (d Damage) Empty() bool { return d.X1 > d.X2 || d.Y1 > d.Y2 }

// FrameSource is what a backend pulls from on each tick: the full
// framebuffer as packed little-endian 1bpp words, its dimensions in
// words/lines, and the accumulated damage since the last pull.
type FrameSource interface {
	FramebufferWords() []uint32
	FramebufferDims() (words, lines int)
	TakeDamage() Damage
}

// Stats is the subset of Machine state the debug overlay displays. It
// lives here, rather than behind the ebiten build tag, because it is
// plain data with no dependency on golang.org/x/image.
type Stats struct {
	InstrCount uint64
	TraceDepth int
	Tick       uint32
}

// StatsSource is implemented by a FrameSource that can also report
// Stats for the on-screen debug overlay. A backend type-asserts for
// it rather than requiring every FrameSource to carry stats.
type StatsSource interface {
	Stats() Stats
}

// InputSink receives host input and forwards it to the emulated
// machine; backends call these instead of depending on *riscv.Machine
// directly.
type InputSink interface {
	MouseMoved(x, y int)
	MouseButton(button int, down bool)
	KeyboardInput(scancodes []byte)
}

// Output is the interface every display backend implements (spec
// section 1's "host windowing/input" collaborator), mirroring the
// shape of the teacher's VideoOutput: lifecycle plus a per-tick
// render pull.
type Output interface {
	Start() error
	Stop() error
	Close() error
	IsStarted() bool

	// Render pulls the current damage/framebuffer from src and blits
	// it, only the dirty rectangle, to the host surface.
	Render(src FrameSource) error

	// SetInputSink wires host keyboard/mouse events to sink. Backends
	// that cannot capture input (headless) accept this as a no-op.
	SetInputSink(sink InputSink)

	FrameCount() uint64
}

// Backend selects a concrete Output implementation by name, mirroring
// the teacher's NewVideoOutput(backend int) factory but keyed by the
// CLI's -video flag instead of a compiled-in constant.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendVulkan Backend = "vulkan"
)

// New constructs the named backend.
func New(name Backend, title string, width, height, scale int) (Output, error) {
	switch name {
	case BackendEbiten, "":
		return newEbitenOutput(title, width, height, scale)
	case BackendVulkan:
		return newVulkanOutput(title, width, height, scale)
	default:
		return nil, &Error{Operation: "backend creation", Details: fmt.Sprintf("unknown backend %q", name)}
	}
}
