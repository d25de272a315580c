package riscv

// Rect is an inclusive dirty rectangle over the framebuffer, in
// framebuffer-word coordinates: (0,0) is the top-left word, columns
// run 0..fb_width-1, rows 0..fb_height-1 (spec section 3/4.D). This is
// the Go-native shape of the teacher's screen-buffer damage tracking
// (see video_chip.go's dirty-region accumulation) narrowed to the
// core's word-granular bus writes, matching original_source/risc-io.h's
// Damage struct.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// Empty reports whether the rectangle covers no words.
func (r Rect) Empty() bool {
	return r.X1 > r.X2 || r.Y1 > r.Y2
}

// emptyRect returns the sentinel "nothing dirty yet" rectangle for a
// framebuffer of the given word dimensions (spec section 4.D).
func emptyRect(fbWidth, fbHeight int) Rect {
	return Rect{X1: fbWidth, Y1: fbHeight, X2: 0, Y2: 0}
}

// grow extends r, in place semantics via return value, to also cover
// the single word at (col, row).
func (r Rect) grow(col, row int) Rect {
	if col < r.X1 {
		r.X1 = col
	}
	if col > r.X2 {
		r.X2 = col
	}
	if row < r.Y1 {
		r.Y1 = row
	}
	if row > r.Y2 {
		r.Y2 = row
	}
	return r
}

// markWord records a store to framebuffer word column col, row row,
// growing the accumulated damage rectangle (spec section 4.D). Rows at
// or past fb_height are the scratch region past the visible screen and
// are not tracked.
func (m *Machine) markWord(col, row int) {
	if row >= m.fbHeight {
		return
	}
	m.damage = m.damage.grow(col, row)
}
