package hostio

import (
	"log"
	"path/filepath"
	"testing"

	"github.com/solbjorg/oberon-riscv-emu/riscv"
)

var (
	_ riscv.SPI       = (*SDCard)(nil)
	_ riscv.LED       = (*LED)(nil)
	_ riscv.Serial    = (*Serial)(nil)
	_ riscv.Clipboard = (*Clipboard)(nil)
)

func TestLEDLogsOnlyOnChange(t *testing.T) {
	var buf logBuf
	l := log.New(&buf, "", 0)
	led := NewLED(l)
	led.Write(1)
	led.Write(1)
	led.Write(2)
	if buf.n != 2 {
		t.Fatalf("log write count = %d, want 2", buf.n)
	}
}

type logBuf struct{ n int }

func (b *logBuf) Write(p []byte) (int, error) {
	b.n++
	return len(p), nil
}

func TestSDCardReadWriteBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	card, err := OpenSDCard(path, 1024*1024)
	if err != nil {
		t.Fatalf("OpenSDCard: %v", err)
	}
	defer card.Close()

	// CMD24 write block 0
	sendCommand(card, 24, 0)
	card.WriteData(0xFE) // data token
	for i := 0; i < blockSize; i++ {
		card.WriteData(uint32(byte(i)))
	}

	// CMD17 read block 0
	sendCommand(card, 17, 0)
	if r1 := card.ReadData(); r1 != 0x00 {
		t.Fatalf("R1 = 0x%X, want 0x00", r1)
	}
	if tok := card.ReadData(); tok != 0xFE {
		t.Fatalf("data token = 0x%X, want 0xFE", tok)
	}
	for i := 0; i < blockSize; i++ {
		got := card.ReadData()
		if got != uint32(byte(i)) {
			t.Fatalf("byte %d = %d, want %d", i, got, byte(i))
		}
	}
}

func sendCommand(card *SDCard, index byte, arg uint32) {
	card.WriteData(uint32(0x40 | index))
	card.WriteData(uint32(byte(arg >> 24)))
	card.WriteData(uint32(byte(arg >> 16)))
	card.WriteData(uint32(byte(arg >> 8)))
	card.WriteData(uint32(byte(arg)))
	card.WriteData(0x95) // CRC byte (ignored outside CMD0)
}
