//go:build !headless

package video

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay renders a small debug HUD — instruction count, call-trace
// depth, and the current tick — into the top-left corner of a frame,
// the toggleable on-screen debug layer the teacher's debug_overlay.go
// provides for its own machine state, generalized to this core's
// stats and rendered with golang.org/x/image/font/basicfont instead
// of the teacher's bitmap font assets.
type Overlay struct {
	Enabled bool
}

// Draw writes the overlay text onto img starting at (x, y).
func (o *Overlay) Draw(img *image.RGBA, x, y int, s Stats) {
	if !o.Enabled {
		return
	}
	text := fmt.Sprintf("instr=%d trace=%d tick=%d", s.InstrCount, s.TraceDepth, s.Tick)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
