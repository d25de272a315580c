// Package rom carries the opaque boot image compiled into the emulator.
//
// The core has no dependency on the image's contents beyond its fixed
// size of 512 words (2048 bytes) — see spec section 6, "Boot ROM". The
// bundled image here is a deterministic placeholder (word 0 is a
// JAL x0,0 self-loop so a machine built against it halts cleanly rather
// than running off into zeroed memory); a real deployment swaps this
// file for an actual Oberon station boot image of the same shape.
package rom

import (
	"embed"
	"encoding/binary"
)

//go:embed rom.bin
var image embed.FS

// Words is the number of 32-bit words in the boot image.
const Words = 512

// Load decodes the embedded boot image into 512 little-endian words.
func Load() [Words]uint32 {
	data, err := image.ReadFile("rom.bin")
	if err != nil {
		panic("rom: embedded image missing: " + err.Error())
	}
	if len(data) != Words*4 {
		panic("rom: embedded image has the wrong size")
	}
	var words [Words]uint32
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return words
}
