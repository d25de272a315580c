// Command riscv-emu drives the RV32IM Oberon-station core: it parses
// flags, constructs a Machine, wires the host device bridges, and runs
// the fetch/decode/execute loop against a display backend. Flag
// parsing and process exit live here and nowhere else in the module,
// following the teacher's main.go convention of keeping os.Exit out of
// library code.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/solbjorg/oberon-riscv-emu/hostio"
	"github.com/solbjorg/oberon-riscv-emu/riscv"
	"github.com/solbjorg/oberon-riscv-emu/video"
)

const cyclesPerSlice = 1_000_000

func main() {
	memSize := flag.Uint("mem", riscv.DefaultMemSize, "RAM size in bytes")
	displayStart := flag.Uint("display-start", riscv.DefaultDisplayStart, "framebuffer byte offset within RAM")
	switches := flag.Uint("switches", 0, "initial value of the switches register")
	spi1Image := flag.String("spi1", "", "path to a raw disk image backing SPI channel 1")
	spi2Image := flag.String("spi2", "", "path to a raw disk image backing SPI channel 2")
	spiImageSize := flag.Int64("spi-image-size", 64<<20, "size to create a new SPI disk image at, in bytes")
	serialMode := flag.Bool("serial", false, "bridge RS-232 to the host terminal")
	clip := flag.Bool("clipboard", false, "bridge the clipboard register pair to the host OS clipboard")
	videoBackend := flag.String("video", string(video.BackendEbiten), "display backend: ebiten or vulkan")
	scale := flag.Int("scale", 1, "integer window scale factor")
	flag.Parse()

	opts := []riscv.Option{
		riscv.WithMemSize(uint32(*memSize)),
		riscv.WithDisplayStart(uint32(*displayStart)),
		riscv.WithLogger(stdLogger{}),
	}
	m := riscv.NewMachine(opts...)
	m.SetSwitches(uint32(*switches))

	if *serialMode {
		serial, err := hostio.NewSerial()
		if err != nil {
			fmt.Fprintf(os.Stderr, "riscv-emu: serial bridge: %v\n", err)
			os.Exit(1)
		}
		defer serial.Close()
		m.SetSerial(serial)
	}

	if *spi1Image != "" {
		card, err := hostio.OpenSDCard(*spi1Image, *spiImageSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "riscv-emu: spi1: %v\n", err)
			os.Exit(1)
		}
		defer card.Close()
		m.SetSPI(1, card)
	}
	if *spi2Image != "" {
		card, err := hostio.OpenSDCard(*spi2Image, *spiImageSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "riscv-emu: spi2: %v\n", err)
			os.Exit(1)
		}
		defer card.Close()
		m.SetSPI(2, card)
	}

	if *clip {
		cb, err := hostio.NewClipboard()
		if err != nil {
			fmt.Fprintf(os.Stderr, "riscv-emu: clipboard unavailable: %v\n", err)
		} else {
			m.SetClipboard(cb)
		}
	}

	m.SetLED(hostio.NewLED(nil))

	out, err := video.New(video.Backend(*videoBackend), "Oberon RISC-V station", riscv.FBWidth, riscv.FBHeight, *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riscv-emu: %v\n", err)
		os.Exit(1)
	}
	out.SetInputSink(&inputSink{m: m})
	if err := out.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "riscv-emu: video start: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	run(m, out)
}

func run(m *riscv.Machine, out video.Output) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()

	for range ticker.C {
		if !out.IsStarted() {
			return
		}
		m.SetTick(uint32(time.Since(start).Milliseconds()))

		res, err := m.Execute(cyclesPerSlice)
		if err != nil {
			var fatal *riscv.FatalError
			if errors.As(err, &fatal) {
				fmt.Fprintln(os.Stderr, fatal.Error())
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "riscv-emu: %v\n", err)
			os.Exit(1)
		}
		if res.Terminated {
			fmt.Printf("riscv-emu: halted at PC=0x%08X, %d instructions retired\n", m.PC(), m.InstrCount())
			os.Exit(1)
		}

		if err := out.Render(&frameSource{m: m}); err != nil {
			fmt.Fprintf(os.Stderr, "riscv-emu: render: %v\n", err)
		}
	}
}

// frameSource adapts *riscv.Machine to video.FrameSource.
type frameSource struct{ m *riscv.Machine }

func (f *frameSource) FramebufferWords() []uint32 { return f.m.FramebufferView() }

func (f *frameSource) FramebufferDims() (words, lines int) {
	return riscv.FBWidth, riscv.FBHeight
}

func (f *frameSource) TakeDamage() video.Damage {
	d := f.m.TakeDamage()
	return video.Damage{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2}
}

// Stats implements video.StatsSource so the ebiten backend's debug
// overlay (toggled with F12) can show live core state.
func (f *frameSource) Stats() video.Stats {
	return video.Stats{
		InstrCount: f.m.InstrCount(),
		TraceDepth: f.m.TraceDepth(),
		Tick:       f.m.Tick(),
	}
}

// inputSink adapts *riscv.Machine to video.InputSink.
type inputSink struct{ m *riscv.Machine }

func (s *inputSink) MouseMoved(x, y int) { s.m.MouseMoved(x, y) }

func (s *inputSink) MouseButton(button int, down bool) {
	_ = s.m.MouseButton(button, down)
}

func (s *inputSink) KeyboardInput(scancodes []byte) { s.m.KeyboardInput(scancodes) }

// stdLogger adapts the standard log package to riscv.Logger.
type stdLogger struct{}

func (stdLogger) Logf(format string, args ...any) { log.Printf(format, args...) }
