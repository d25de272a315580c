//go:build headless

package video

import "sync/atomic"

// headlessOutput is the no-window stand-in for CI and tests, the same
// role the teacher's HeadlessVideoOutput (video_backend_headless.go)
// plays for both of its real backends: both constructors below route
// here under the headless build tag.
type headlessOutput struct {
	started atomic.Bool
	frames  atomic.Uint64
	sink    InputSink
}

func newEbitenOutput(title string, width, height, scale int) (Output, error) {
	return &headlessOutput{}, nil
}

func newVulkanOutput(title string, width, height, scale int) (Output, error) {
	return &headlessOutput{}, nil
}

func (h *headlessOutput) Start() error { h.started.Store(true); return nil }
func (h *headlessOutput) Stop() error  { h.started.Store(false); return nil }
func (h *headlessOutput) Close() error { return h.Stop() }

func (h *headlessOutput) IsStarted() bool { return h.started.Load() }

func (h *headlessOutput) FrameCount() uint64 { return h.frames.Load() }

func (h *headlessOutput) SetInputSink(sink InputSink) { h.sink = sink }

func (h *headlessOutput) Render(src FrameSource) error {
	if !src.TakeDamage().Empty() {
		h.frames.Add(1)
	}
	return nil
}
