// Package headless provides a scripted graphics host for benchmarks and tests.
// It drives a manual clock from a list of frame deltas, replays scripted input,
// renders into a core.Screen, and asks the loop to close when the script ends.
package headless

import (
	"fmt"
	"time"

	"github.com/vovakirdan/sandbox/internal/core"
)

// Frame is one scripted frame: the wall time it takes and the input held during it.
type Frame struct {
	Dt      float64 // seconds the clock advances before the frame is sampled
	Keys    []int   // key codes held
	Buttons []int   // mouse buttons held
	Cursor  *core.Vec
}

// Host implements core.GraphicsHost over a script.
type Host struct {
	clock  *core.ManualClock
	screen *core.Screen
	frames []Frame

	next     int // index of the frame the next PollEvents applies
	keys     []bool
	buttons  []bool
	x, y     float64
	inFrame  bool
	presents int

	onPresent func(frame int, s *core.Screen)
}

// Options configures a headless host.
type Options struct {
	Cols, Rows int // screen size in cells; defaults 80×24
	Width      int // viewport in pixels reported to the scene; defaults to Cols
	Height     int // defaults to Rows
	Start      time.Time
}

// New creates a host that plays frames in order.
func New(frames []Frame, opts Options) *Host {
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	screen := core.NewScreen(opts.Cols, opts.Rows)
	if opts.Width > 0 && opts.Height > 0 {
		screen.SetViewport(opts.Width, opts.Height)
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Host{
		clock:   core.NewManualClock(opts.Start),
		screen:  screen,
		frames:  frames,
		keys:    make([]bool, core.KeyCount),
		buttons: make([]bool, core.ButtonCount),
	}
}

// Steady returns n frames of dt seconds each.
func Steady(n int, dt float64) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i].Dt = dt
	}
	return frames
}

// Stalling returns n frames of dt seconds where every every-th frame takes stall
// seconds instead. every <= 0 means no stalls.
func Stalling(n int, dt float64, every int, stall float64) []Frame {
	frames := Steady(n, dt)
	if every <= 0 {
		return frames
	}
	for i := every - 1; i < n; i += every {
		frames[i].Dt = stall
	}
	return frames
}

// Clock returns the manual clock the host advances; the loop must use it.
func (h *Host) Clock() *core.ManualClock { return h.clock }

// Screen returns the render target.
func (h *Host) Screen() *core.Screen { return h.screen }

// Canvas returns the render target as a core.Canvas.
func (h *Host) Canvas() core.Canvas { return h.screen }

// OnPresent registers fn to observe each presented frame.
func (h *Host) OnPresent(fn func(frame int, s *core.Screen)) { h.onPresent = fn }

// Presents returns the number of presented frames.
func (h *Host) Presents() int { return h.presents }

// Remaining returns the number of scripted frames not yet polled.
func (h *Host) Remaining() int { return len(h.frames) - h.next }

// PollEvents advances the clock and applies the next scripted frame's input.
func (h *Host) PollEvents() error {
	if h.next >= len(h.frames) {
		return nil
	}
	f := h.frames[h.next]
	h.next++

	if f.Dt < 0 {
		return fmt.Errorf("headless: frame %d has negative dt %v", h.next-1, f.Dt)
	}
	h.clock.AdvanceSeconds(f.Dt)

	clear(h.keys)
	clear(h.buttons)
	for _, k := range f.Keys {
		if k >= 0 && k < len(h.keys) {
			h.keys[k] = true
		}
	}
	for _, b := range f.Buttons {
		if b >= 0 && b < len(h.buttons) {
			h.buttons[b] = true
		}
	}
	if f.Cursor != nil {
		h.x, h.y = f.Cursor.X, f.Cursor.Y
	}
	return nil
}

// ShouldClose reports whether the script is exhausted.
func (h *Host) ShouldClose() bool { return h.next >= len(h.frames) }

func (h *Host) ViewportSize() (int, int) { return h.screen.Size() }

func (h *Host) BeginFrame() error {
	if h.inFrame {
		return fmt.Errorf("headless: BeginFrame inside a frame")
	}
	h.inFrame = true
	return nil
}

func (h *Host) EndFrame() error {
	if !h.inFrame {
		return fmt.Errorf("headless: EndFrame outside a frame")
	}
	h.inFrame = false
	return nil
}

// Present counts the frame and hands the screen to the observer.
func (h *Host) Present() error {
	h.presents++
	if h.onPresent != nil {
		h.onPresent(h.presents, h.screen)
	}
	return nil
}

func (h *Host) KeyDown(i int) bool {
	return i >= 0 && i < len(h.keys) && h.keys[i]
}

func (h *Host) ButtonDown(i int) bool {
	return i >= 0 && i < len(h.buttons) && h.buttons[i]
}

func (h *Host) CursorPosition() (float64, float64) { return h.x, h.y }

var _ core.GraphicsHost = (*Host)(nil)
