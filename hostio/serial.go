package hostio

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Serial is a host RS-232 bridge implementing riscv.Serial over a
// raw-mode terminal: bytes typed at the host terminal become guest
// serial input, bytes the guest writes are echoed straight to the
// host's stdout. The buffered-input-and-mutex shape follows the
// teacher's TerminalMMIO (terminal_io.go), narrowed from its line-mode
// /echo-flag protocol down to the core's plain read_status/read_data
// /write_data register triple.
type Serial struct {
	mu    sync.Mutex
	inBuf []byte
	out   io.Writer

	restore func() error
}

// NewSerial wires stdin/stdout as the RS-232 bridge. If stdin is a
// terminal, it is put into raw mode so individual keystrokes arrive
// immediately instead of being line-buffered by the host shell;
// Close restores the original terminal state.
func NewSerial() (*Serial, error) {
	s := &Serial{out: os.Stdout}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		prev, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		s.restore = func() error { return term.Restore(fd, prev) }
		go s.readLoop(fd)
	}
	return s, nil
}

func (s *Serial) readLoop(fd int) {
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.inBuf = append(s.inBuf, buf[:n]...)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Close restores cooked terminal mode, if it was changed.
func (s *Serial) Close() error {
	if s.restore != nil {
		return s.restore()
	}
	return nil
}

// ReadStatus reports bit 0 set when input is available.
func (s *Serial) ReadStatus() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inBuf) > 0 {
		return 1
	}
	return 0
}

// ReadData pops the next buffered input byte, or 0 if none is ready.
func (s *Serial) ReadData() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inBuf) == 0 {
		return 0
	}
	b := s.inBuf[0]
	s.inBuf = s.inBuf[1:]
	return uint32(b)
}

// WriteData writes the low byte of value straight to the host's
// output stream.
func (s *Serial) WriteData(value uint32) {
	s.out.Write([]byte{byte(value)})
}
