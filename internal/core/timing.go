package core

import (
	"math"
	"sort"
	"time"
)

// Telemetry sizes.
const (
	FPSRingSize      = 120 // ~2 seconds of samples at 60fps
	DefaultFPSWindow = 60
)

// Timing is one subsystem's accumulated cost for a frame.
type Timing struct {
	Name string
	Ms   float64
}

// Recorder tracks per-subsystem frame cost and a rolling FPS ring for the HUD.
// It belongs to the loop goroutine; other goroutines read status through a StatusBoard.
type Recorder struct {
	current map[string]float64
	last    map[string]float64

	ring    [FPSRingSize]float64
	index   int // next write position
	written int // samples written, saturating at FPSRingSize
	window  int

	fpsNow float64
	fpsAvg float64
	lastDt float64
	frames uint64

	hudVisible bool
}

// NewRecorder creates a recorder averaging FPS over window samples.
// The window is clamped to [1, FPSRingSize]; 0 selects DefaultFPSWindow.
func NewRecorder(window int) *Recorder {
	r := &Recorder{
		current: make(map[string]float64),
		last:    make(map[string]float64),
	}
	if window == 0 {
		window = DefaultFPSWindow
	}
	r.SetWindow(window)
	return r
}

// SetWindow changes the averaging window, clamped to [1, FPSRingSize].
func (r *Recorder) SetWindow(w int) {
	r.window = Clamp(w, 1, FPSRingSize)
	r.fpsAvg = r.average()
}

// Window returns the averaging window.
func (r *Recorder) Window() int {
	return r.window
}

// Record adds ms to name's bucket for the current frame. Samples for the same
// name within one frame sum. Negative and NaN samples are ignored.
func (r *Recorder) Record(name string, ms float64) {
	if ms < 0 || math.IsNaN(ms) {
		return
	}
	r.current[name] += ms
}

// FrameStart flips the timing buffers and pushes the new frame's FPS sample.
// The current bucket becomes the last-frame snapshot and is cleared; dt below
// 1µs pushes 0 FPS. toggleHUD flips HUD visibility.
func (r *Recorder) FrameStart(dt float64, toggleHUD bool) {
	r.last, r.current = r.current, r.last
	clear(r.current)

	fps := 0.0
	if dt >= 1e-6 {
		fps = 1 / dt
	}
	r.ring[r.index] = fps
	r.index = (r.index + 1) % FPSRingSize
	if r.written < FPSRingSize {
		r.written++
	}

	r.fpsNow = fps
	r.fpsAvg = r.average()
	r.lastDt = dt
	r.frames++

	if toggleHUD {
		r.hudVisible = !r.hudVisible
	}
}

// average returns the mean of the most recent min(window, written) samples.
func (r *Recorder) average() float64 {
	n := min(r.window, r.written)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 1; i <= n; i++ {
		sum += r.ring[(r.index-i+FPSRingSize)%FPSRingSize]
	}
	return sum / float64(n)
}

// LastTimings returns a copy of the previous frame's per-subsystem cost.
func (r *Recorder) LastTimings() map[string]float64 {
	out := make(map[string]float64, len(r.last))
	for k, v := range r.last {
		out[k] = v
	}
	return out
}

// Last returns name's cost in the previous frame.
func (r *Recorder) Last(name string) (float64, bool) {
	ms, ok := r.last[name]
	return ms, ok
}

// Current returns name's cost accumulated so far in the current frame.
func (r *Recorder) Current(name string) (float64, bool) {
	ms, ok := r.current[name]
	return ms, ok
}

// SortedLast returns the previous frame's timings, most expensive first.
// Ties are ordered by name so the HUD does not flicker.
func (r *Recorder) SortedLast() []Timing {
	out := make([]Timing, 0, len(r.last))
	for name, ms := range r.last {
		out = append(out, Timing{Name: name, Ms: ms})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ms != out[j].Ms {
			return out[i].Ms > out[j].Ms
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Samples returns the written FPS samples, oldest first.
func (r *Recorder) Samples() []float64 {
	out := make([]float64, 0, r.written)
	start := (r.index - r.written + FPSRingSize) % FPSRingSize
	for i := 0; i < r.written; i++ {
		out = append(out, r.ring[(start+i)%FPSRingSize])
	}
	return out
}

// FPS returns the most recent instantaneous FPS sample.
func (r *Recorder) FPS() float64 { return r.fpsNow }

// FPSAvg returns the windowed FPS average.
func (r *Recorder) FPSAvg() float64 { return r.fpsAvg }

// LastDt returns the clamped frame delta passed to the latest FrameStart.
func (r *Recorder) LastDt() float64 { return r.lastDt }

// Frames returns how many frames have started.
func (r *Recorder) Frames() uint64 { return r.frames }

// HUDVisible reports whether the performance HUD is toggled on.
func (r *Recorder) HUDVisible() bool { return r.hudVisible }

// SetHUDVisible forces HUD visibility, e.g. from configuration.
func (r *Recorder) SetHUDVisible(v bool) { r.hudVisible = v }

func msSince(c Clock, start time.Time) float64 {
	return float64(c.Now().Sub(start)) / float64(time.Millisecond)
}
