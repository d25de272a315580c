//go:build !headless

package video

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenOutput is a windowed Output backend rendering the core's 1bpp
// framebuffer via an ebiten.Image, redrawing only the damage
// rectangle each tick and forwarding keyboard/mouse input to the
// wired InputSink. Grounded on the teacher's EbitenOutput
// (video_backend_ebiten.go), narrowed from an RGBA compositor down to
// a single monochrome surface.
type ebitenOutput struct {
	mu      sync.Mutex
	title   string
	scale   int
	words   int
	lines   int
	img     *ebiten.Image
	pixbuf  []byte // RGBA row scratch, reused across Render calls
	started bool
	sink    InputSink
	frames  atomic.Uint64
	ready   chan struct{}

	overlay    Overlay
	overlayImg *ebiten.Image
	overlayBuf *image.RGBA
	stats      Stats
}

const (
	overlayWidth  = 260
	overlayHeight = 16
)

func newEbitenOutput(title string, width, height, scale int) (Output, error) {
	if scale < 1 {
		scale = 1
	}
	return &ebitenOutput{
		title: title,
		scale: scale,
		words: width,
		lines: height,
		ready: make(chan struct{}, 1),
	}, nil
}

func (e *ebitenOutput) Start() error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	w, h := e.words*32, e.lines
	e.mu.Unlock()

	ebiten.SetWindowSize(w*e.scale, h*e.scale)
	ebiten.SetWindowTitle(e.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		if err := ebiten.RunGame(e); err != nil {
			fmt.Printf("video: ebiten backend exited: %v\n", err)
		}
	}()
	return nil
}

func (e *ebitenOutput) Stop() error {
	e.mu.Lock()
	e.started = false
	e.mu.Unlock()
	return nil
}

func (e *ebitenOutput) Close() error { return e.Stop() }

func (e *ebitenOutput) IsStarted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

func (e *ebitenOutput) FrameCount() uint64 { return e.frames.Load() }

func (e *ebitenOutput) SetInputSink(sink InputSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// Render unpacks the dirty rectangle of 1bpp words into RGBA and
// writes it into the backing ebiten.Image; the actual presentation
// happens on ebiten's own Draw callback.
func (e *ebitenOutput) Render(src FrameSource) error {
	words, lines := src.FramebufferDims()
	damage := src.TakeDamage()

	if ss, ok := src.(StatsSource); ok {
		e.mu.Lock()
		e.stats = ss.Stats()
		e.mu.Unlock()
	}
	if damage.Empty() {
		return nil
	}
	fb := src.FramebufferWords()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.img == nil || e.words != words || e.lines != lines {
		e.words, e.lines = words, lines
		e.img = ebiten.NewImage(words*32, lines)
		e.pixbuf = make([]byte, words*32*4)
	}

	width := (damage.X2 - damage.X1 + 1) * 32
	rowBytes := width * 4
	buf := e.pixbuf[:rowBytes]
	for row := damage.Y1; row <= damage.Y2; row++ {
		base := row*words + damage.X1
		for col := 0; col < damage.X2-damage.X1+1; col++ {
			word := fb[base+col]
			for bit := 0; bit < 32; bit++ {
				var v byte
				if word&(1<<uint(bit)) != 0 {
					v = 0xFF
				}
				o := (col*32 + bit) * 4
				buf[o], buf[o+1], buf[o+2], buf[o+3] = v, v, v, 0xFF
			}
		}
		rect := image.Rect(damage.X1*32, row, (damage.X2+1)*32, row+1)
		e.writePixels(rect, buf)
	}
	return nil
}

// writePixels isolates the ebiten API surface this file depends on so
// a future ebiten major version bump touches one call site.
func (e *ebitenOutput) writePixels(rect image.Rectangle, pix []byte) {
	e.img.SubImage(rect).(*ebiten.Image).WritePixels(pix)
}

func (e *ebitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	e.mu.Lock()
	started := e.started
	sink := e.sink
	e.mu.Unlock()
	if !started {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		e.mu.Lock()
		e.overlay.Enabled = !e.overlay.Enabled
		e.mu.Unlock()
	}
	if sink != nil {
		e.pollInput(sink)
	}
	return nil
}

func (e *ebitenOutput) Draw(screen *ebiten.Image) {
	e.mu.Lock()
	img := e.img
	enabled := e.overlay.Enabled
	stats := e.stats
	e.mu.Unlock()
	if img != nil {
		screen.DrawImage(img, nil)
	}
	if enabled {
		e.drawOverlay(screen, stats)
	}
	e.frames.Add(1)
	select {
	case e.ready <- struct{}{}:
	default:
	}
}

// drawOverlay renders the debug HUD into a small scratch RGBA buffer
// and blits it over the top-left corner of screen.
func (e *ebitenOutput) drawOverlay(screen *ebiten.Image, stats Stats) {
	if e.overlayBuf == nil {
		e.overlayBuf = image.NewRGBA(image.Rect(0, 0, overlayWidth, overlayHeight))
		e.overlayImg = ebiten.NewImage(overlayWidth, overlayHeight)
	}
	draw.Draw(e.overlayBuf, e.overlayBuf.Bounds(), image.NewUniform(color.RGBA{A: 0xC0}), image.Point{}, draw.Src)
	e.overlay.Draw(e.overlayBuf, 2, overlayHeight-4, stats)
	e.overlayImg.WritePixels(e.overlayBuf.Pix)
	screen.DrawImage(e.overlayImg, nil)
}

func (e *ebitenOutput) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.words * 32, e.lines
}

func (e *ebitenOutput) pollInput(sink InputSink) {
	x, y := ebiten.CursorPosition()
	sink.MouseMoved(x, y)
	sink.MouseButton(1, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	sink.MouseButton(2, ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle))
	sink.MouseButton(3, ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight))

	var scancodes []byte
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 128 {
			scancodes = append(scancodes, byte(r))
		}
	}
	for _, k := range specialKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			scancodes = append(scancodes, k.code)
		}
	}
	if len(scancodes) > 0 {
		sink.KeyboardInput(scancodes)
	}
}

var specialKeys = []struct {
	key  ebiten.Key
	code byte
}{
	{ebiten.KeyEnter, 0x0D},
	{ebiten.KeyBackspace, 0x08},
	{ebiten.KeyTab, 0x09},
	{ebiten.KeyEscape, 0x1B},
	{ebiten.KeyArrowUp, 0x80},
	{ebiten.KeyArrowDown, 0x81},
	{ebiten.KeyArrowLeft, 0x82},
	{ebiten.KeyArrowRight, 0x83},
}
