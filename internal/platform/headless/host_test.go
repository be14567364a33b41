package headless

import (
	"testing"
	"time"

	"github.com/vovakirdan/sandbox/internal/core"
)

func TestStalling(t *testing.T) {
	frames := Stalling(7, 0.01, 3, 0.2)
	want := []float64{0.01, 0.01, 0.2, 0.01, 0.01, 0.2, 0.01}
	for i, f := range frames {
		if f.Dt != want[i] {
			t.Errorf("frame %d dt = %v, expected %v", i, f.Dt, want[i])
		}
	}
	for _, f := range Stalling(3, 0.01, 0, 1) {
		if f.Dt != 0.01 {
			t.Error("every=0 should produce no stalls")
		}
	}
}

func TestPollAppliesScript(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	h := New([]Frame{
		{Dt: 0.5, Keys: []int{core.KeySpace}, Cursor: &core.Vec{X: 3, Y: 4}},
		{Dt: 0.25, Buttons: []int{core.ButtonRight}},
	}, Options{Start: start})

	if h.ShouldClose() {
		t.Fatal("should not close before the script runs")
	}

	h.PollEvents()
	if got := h.Clock().Now().Sub(start); got != 500*time.Millisecond {
		t.Errorf("clock advanced %v, expected 500ms", got)
	}
	if !h.KeyDown(core.KeySpace) || h.ButtonDown(core.ButtonRight) {
		t.Error("frame 1 input not applied")
	}
	if x, y := h.CursorPosition(); x != 3 || y != 4 {
		t.Errorf("cursor = (%v, %v)", x, y)
	}

	h.PollEvents()
	if h.KeyDown(core.KeySpace) || !h.ButtonDown(core.ButtonRight) {
		t.Error("frame 2 input should replace frame 1")
	}
	if x, y := h.CursorPosition(); x != 3 || y != 4 {
		t.Error("cursor should persist when a frame does not move it")
	}
	if !h.ShouldClose() || h.Remaining() != 0 {
		t.Error("should close once the script is exhausted")
	}

	// Polling past the end is harmless.
	if err := h.PollEvents(); err != nil {
		t.Fatal(err)
	}
	if h.KeyDown(-1) || h.KeyDown(core.KeyCount) || h.ButtonDown(99) {
		t.Error("out-of-range codes should read as up")
	}
}

func TestNegativeDtFails(t *testing.T) {
	h := New([]Frame{{Dt: -1}}, Options{})
	if err := h.PollEvents(); err == nil {
		t.Error("expected an error for negative dt")
	}
}

func TestFrameBracketing(t *testing.T) {
	h := New(nil, Options{Cols: 10, Rows: 5, Width: 100, Height: 50})

	if err := h.EndFrame(); err == nil {
		t.Error("EndFrame outside a frame should fail")
	}
	if err := h.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := h.BeginFrame(); err == nil {
		t.Error("nested BeginFrame should fail")
	}
	if err := h.EndFrame(); err != nil {
		t.Fatal(err)
	}

	seen := 0
	h.OnPresent(func(frame int, s *core.Screen) {
		seen = frame
		if s != h.Screen() {
			t.Error("observer got a different screen")
		}
	})
	h.Present()
	if seen != 1 || h.Presents() != 1 {
		t.Errorf("seen = %d presents = %d", seen, h.Presents())
	}
	if w, hh := h.ViewportSize(); w != 100 || hh != 50 {
		t.Errorf("ViewportSize() = %dx%d", w, hh)
	}
}

func TestLoopOverHeadless(t *testing.T) {
	h := New(Steady(3, core.FixedDt), Options{})
	rec := core.NewRecorder(0)
	reg := core.NewRegistry(rec, nil, nil)
	ctrl := core.NewController(false, reg)
	loop, err := core.NewLoop(core.LoopConfig{
		Graphics:   h,
		Registry:   reg,
		Recorder:   rec,
		Controller: ctrl,
		Input:      core.NewSnapshot(),
		Clock:      h.Clock(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := loop.Run(t.Context()); err != nil {
		t.Fatal(err)
	}
	if loop.Frames() != 3 || ctrl.Ticks() != 3 {
		t.Errorf("frames = %d ticks = %d, expected 3/3", loop.Frames(), ctrl.Ticks())
	}
}
