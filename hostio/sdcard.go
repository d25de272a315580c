package hostio

import (
	"fmt"
	"os"
)

const blockSize = 512

type sdState int

const (
	sdIdle sdState = iota
	sdCommand
	sdWritingToken
	sdWritingBlock
)

// SDCard is a file-backed SPI block device implementing riscv.SPI,
// speaking the reduced SD/MMC SPI-mode command set (CMD0 go-idle,
// CMD17 single-block read, CMD24 single-block write) that a guest
// disk driver bit-bangs over the SPI channel. This is the one host
// bridge the pack's examples don't already model byte-for-byte —
// original_source's RISC_SPI vtable (risc-io.h) only carries
// read_data/write_data, leaving the wire protocol itself to whatever
// backing device is plugged in — so this follows the well-known public
// SD SPI command framing rather than a specific example file.
type SDCard struct {
	file *os.File
	size int64

	state      sdState
	cmdBuf     [6]byte
	cmdLen     int
	blockBuf   [blockSize]byte
	blockPos   int
	blockIndex uint32
	pendingOut []byte
}

// OpenSDCard opens (or creates, sized to size bytes if it doesn't
// exist) a raw disk image file to back an SPI channel.
func OpenSDCard(path string, size int64) (*SDCard, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("hostio: open SD image %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("hostio: stat SD image %s: %w", path, err)
	}
	if info.Size() == 0 && size > 0 {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("hostio: truncate SD image %s: %w", path, err)
		}
	}
	return &SDCard{file: f, size: size}, nil
}

// Close releases the backing file.
func (s *SDCard) Close() error { return s.file.Close() }

// ReadData returns the next byte of whatever response is pending: idle
// is 0xFF (the SPI line floats high when the host has nothing to say).
func (s *SDCard) ReadData() uint32 {
	if len(s.pendingOut) == 0 {
		return 0xFF
	}
	b := s.pendingOut[0]
	s.pendingOut = s.pendingOut[1:]
	return uint32(b)
}

// WriteData feeds one SPI byte from the guest into the command/data
// state machine.
func (s *SDCard) WriteData(value uint32) {
	b := byte(value)
	switch s.state {
	case sdIdle, sdCommand:
		s.feedCommand(b)
	case sdWritingToken:
		if b == 0xFE {
			s.state = sdWritingBlock
			s.blockPos = 0
		}
	case sdWritingBlock:
		s.blockBuf[s.blockPos] = b
		s.blockPos++
		if s.blockPos == blockSize {
			s.commitBlock()
			s.state = sdIdle
		}
	}
}

func (s *SDCard) feedCommand(b byte) {
	if s.cmdLen == 0 && b&0xC0 != 0x40 {
		return // not a command frame start; ignore framing/idle bytes
	}
	s.cmdBuf[s.cmdLen] = b
	s.cmdLen++
	if s.cmdLen < 6 {
		s.state = sdCommand
		return
	}
	s.dispatchCommand()
	s.cmdLen = 0
}

func (s *SDCard) dispatchCommand() {
	index := s.cmdBuf[0] & 0x3F
	arg := uint32(s.cmdBuf[1])<<24 | uint32(s.cmdBuf[2])<<16 | uint32(s.cmdBuf[3])<<8 | uint32(s.cmdBuf[4])

	switch index {
	case 0: // CMD0: GO_IDLE_STATE
		s.pendingOut = []byte{0x01}
		s.state = sdIdle
	case 17: // CMD17: READ_SINGLE_BLOCK
		s.startRead(arg)
	case 24: // CMD24: WRITE_BLOCK
		s.blockIndex = arg
		s.pendingOut = []byte{0x00}
		s.state = sdWritingToken
	default:
		s.pendingOut = []byte{0x05} // illegal command
		s.state = sdIdle
	}
}

func (s *SDCard) startRead(blockAddr uint32) {
	buf := make([]byte, blockSize)
	_, err := s.file.ReadAt(buf, int64(blockAddr)*blockSize)
	resp := []byte{0x00, 0xFE}
	if err != nil {
		resp = []byte{0x01}
	} else {
		resp = append(resp, buf...)
		resp = append(resp, 0x00, 0x00) // dummy CRC
	}
	s.pendingOut = resp
	s.state = sdIdle
}

func (s *SDCard) commitBlock() {
	s.file.WriteAt(s.blockBuf[:], int64(s.blockIndex)*blockSize)
	s.pendingOut = []byte{0x05, 0xFF}
}
