package hostio

import (
	"sync"

	"golang.design/x/clipboard"
)

const (
	clipCmdCopy  = 1 // flush the outgoing byte buffer to the host clipboard
	clipCmdPaste = 2 // pull the host clipboard into the incoming byte buffer
)

// Clipboard bridges the guest's control/data register pair to the
// host OS clipboard via golang.design/x/clipboard, the same library
// the teacher wires for its own Ctrl+Shift+V paste shortcut
// (video_backend_ebiten.go's handleClipboardPaste). The protocol is a
// length-prefixed byte stream: ReadControl reports how many bytes of
// a pasted string remain, ReadData pops them one at a time; WriteData
// accumulates bytes to copy out, and WriteControl(1) flushes them.
type Clipboard struct {
	mu  sync.Mutex
	out []byte
	in  []byte
}

// NewClipboard initializes the host clipboard backend. It returns an
// error if the host has no clipboard support (e.g. a headless X11
// session with no selection owner).
func NewClipboard() (*Clipboard, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return &Clipboard{}, nil
}

// ReadControl returns the number of bytes remaining in the pending
// paste buffer.
func (c *Clipboard) ReadControl() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint32(len(c.in))
}

// WriteControl dispatches a clipboard command.
func (c *Clipboard) WriteControl(value uint32) {
	c.mu.Lock()
	switch value {
	case clipCmdCopy:
		buf := append([]byte(nil), c.out...)
		c.out = c.out[:0]
		c.mu.Unlock()
		clipboard.Write(clipboard.FmtText, buf)
		return
	case clipCmdPaste:
		c.mu.Unlock()
		data := clipboard.Read(clipboard.FmtText)
		c.mu.Lock()
		c.in = data
	}
	c.mu.Unlock()
}

// ReadData pops the next byte of the pending paste buffer, or 0 if
// empty.
func (c *Clipboard) ReadData() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.in) == 0 {
		return 0
	}
	b := c.in[0]
	c.in = c.in[1:]
	return uint32(b)
}

// WriteData appends the low byte of value to the outgoing copy
// buffer.
func (c *Clipboard) WriteData(value uint32) {
	c.mu.Lock()
	c.out = append(c.out, byte(value))
	c.mu.Unlock()
}
