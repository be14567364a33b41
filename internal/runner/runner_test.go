package runner

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/platform/headless"
	"github.com/vovakirdan/sandbox/internal/scenes/bounce"
	"github.com/vovakirdan/sandbox/internal/scenes/fountain"
	"github.com/vovakirdan/sandbox/internal/storage"
	"github.com/vovakirdan/sandbox/internal/systems"
)

func testConfig() config.SandboxConfig {
	cfg := config.Default()
	cfg.Audio.Enabled = false
	cfg.Editor.Enabled = false
	cfg.World.InitialBalls = 4
	return cfg
}

func newRunner(t *testing.T, scene string, cfg config.SandboxConfig, frames []headless.Frame, inbox <-chan core.Command) (*Runner, *headless.Host) {
	t.Helper()
	host := headless.New(frames, headless.Options{Cols: 80, Rows: 24, Width: 320, Height: 240})
	r, err := New(Options{
		Scene:  scene,
		Config: cfg,
		Host:   host,
		Canvas: host.Canvas(),
		Clock:  host.Clock(),
		Logger: log.New(io.Discard),
		Inbox:  inbox,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, host
}

func bounceWorld(t *testing.T, r *Runner) *systems.World {
	t.Helper()
	sc, ok := r.Scene.(*bounce.Scene)
	if !ok {
		t.Fatalf("scene is %T", r.Scene)
	}
	return sc.World
}

func TestBounceRunsOneStepPerFrame(t *testing.T) {
	r, host := newRunner(t, bounce.ID, testConfig(), headless.Steady(120, 1.0/60), nil)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.Presents() != 120 || r.Loop.Frames() != 120 {
		t.Errorf("presents = %d, frames = %d, expected 120", host.Presents(), r.Loop.Frames())
	}
	if r.Controller.Ticks() != 120 {
		t.Errorf("Ticks() = %d, expected 120", r.Controller.Ticks())
	}
	w := bounceWorld(t, r)
	if w.Ticks != 120 || len(w.Bodies) != 4 {
		t.Errorf("world ticks = %d bodies = %d", w.Ticks, len(w.Bodies))
	}
	if _, ok := r.Recorder.Last("physics"); !ok {
		t.Error("physics timing not recorded")
	}
}

func TestStallsAreCapped(t *testing.T) {
	frames := headless.Stalling(10, 1.0/60, 5, 0.5)
	r, _ := newRunner(t, bounce.ID, testConfig(), frames, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// 8 normal frames at one step each, 2 stalls clamped to 0.1s and capped at 5.
	if got := r.Controller.Ticks(); got != 8+2*core.MaxSubsteps {
		t.Errorf("Ticks() = %d, expected %d", got, 8+2*core.MaxSubsteps)
	}
}

func TestEditorStartsPausedAndObeysInbox(t *testing.T) {
	cfg := testConfig()
	cfg.Editor.Enabled = true
	inbox := make(chan core.Command, 4)

	r, host := newRunner(t, bounce.ID, cfg, headless.Steady(20, 1.0/60), inbox)
	host.OnPresent(func(frame int, _ *core.Screen) {
		if frame == 10 {
			inbox <- core.CommandPlay
		}
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Paused for frames 1-10, running for 11-20.
	if got := r.Controller.Ticks(); got != 10 {
		t.Errorf("Ticks() = %d, expected 10", got)
	}
	if !strings.Contains(r.Overlay.Last(), "Running") {
		t.Errorf("editor panel should show Running:\n%s", r.Overlay.Last())
	}
}

func TestResetRestoresInitialWorld(t *testing.T) {
	cfg := testConfig()
	inbox := make(chan core.Command, 1)
	frames := headless.Steady(60, 1.0/60)
	frames[10].Buttons = []int{core.ButtonLeft}
	frames[10].Cursor = &core.Vec{X: 100, Y: 50}

	r, host := newRunner(t, bounce.ID, cfg, frames, inbox)
	host.OnPresent(func(frame int, _ *core.Screen) {
		if frame == 40 {
			inbox <- core.CommandReset
		}
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	fresh := systems.NewWorld(320, 240, cfg.World.MaxParticles)
	systems.NewLogic(fresh, cfg.World, false, log.New(io.Discard)).Initialize()

	w := bounceWorld(t, r)
	if w.Hash() != fresh.Hash() {
		t.Error("world after reset differs from a freshly built one")
	}
	if r.Controller.State() != core.StatePaused || r.Controller.Resets() != 1 {
		t.Errorf("state = %v resets = %d", r.Controller.State(), r.Controller.Resets())
	}
	if r.Controller.Ticks() != 40 {
		t.Errorf("Ticks() = %d, expected no steps after the reset", r.Controller.Ticks())
	}
}

func TestClickSpawnsBall(t *testing.T) {
	frames := headless.Steady(10, 1.0/60)
	frames[3].Buttons = []int{core.ButtonLeft}
	frames[3].Cursor = &core.Vec{X: 160, Y: 40}
	frames[4].Buttons = []int{core.ButtonLeft} // held, not a new click

	r, _ := newRunner(t, bounce.ID, testConfig(), frames, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := bounceWorld(t, r).Spawned(); got != 1 {
		t.Errorf("Spawned() = %d, expected 1", got)
	}
}

func TestClickSpawnsAtHighRefreshRate(t *testing.T) {
	// At 144Hz frame 3 accumulates less than one fixed step and runs no update.
	frames := headless.Steady(20, 1.0/144)
	frames[3].Buttons = []int{core.ButtonLeft}
	frames[3].Cursor = &core.Vec{X: 160, Y: 40}

	r, host := newRunner(t, bounce.ID, testConfig(), frames, nil)
	steps := make([]int, 0, len(frames))
	host.OnPresent(func(int, *core.Screen) {
		steps = append(steps, r.Loop.LastSubsteps())
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(steps) < 4 || steps[3] != 0 {
		t.Fatalf("sub-steps per frame = %v, expected frame 3 to run none", steps)
	}
	if got := bounceWorld(t, r).Spawned(); got != 1 {
		t.Errorf("Spawned() = %d, expected 1 (sub-steps per frame %v)", got, steps)
	}
}

func TestEscapeQuits(t *testing.T) {
	frames := headless.Steady(50, 1.0/60)
	frames[9].Keys = []int{core.KeyEscape}

	r, host := newRunner(t, bounce.ID, testConfig(), frames, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if host.Presents() != 10 {
		t.Errorf("presents = %d, expected the loop to stop after frame 10", host.Presents())
	}
	if host.Remaining() != 40 {
		t.Errorf("Remaining() = %d", host.Remaining())
	}
}

func TestHUDToggle(t *testing.T) {
	frames := headless.Steady(4, 1.0/60)
	frames[1].Keys = []int{core.KeyF3}

	r, _ := newRunner(t, bounce.ID, testConfig(), frames, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !r.Recorder.HUDVisible() {
		t.Error("F3 should show the HUD")
	}
	if !strings.Contains(r.Overlay.Last(), "fps") {
		t.Errorf("overlay missing HUD:\n%s", r.Overlay.Last())
	}
}

func TestFountainFillsPool(t *testing.T) {
	cfg := testConfig()
	cfg.World.MaxParticles = 100
	r, host := newRunner(t, fountain.ID, cfg, headless.Steady(60, 1.0/60), nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	w := r.Scene.(*fountain.Scene).World
	if w.Particles.Len() == 0 || w.Particles.Len() > 100 {
		t.Errorf("particles = %d, expected 1..100", w.Particles.Len())
	}
	if !strings.Contains(host.Screen().String(), "█") {
		t.Error("nothing rendered")
	}
}

func TestSessionPersisted(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "sandbox.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	host := headless.New(headless.Steady(30, 1.0/60), headless.Options{Width: 320, Height: 240})
	r, err := New(Options{
		Scene:  bounce.ID,
		Config: testConfig(),
		Host:   host,
		Canvas: host.Canvas(),
		Clock:  host.Clock(),
		Store:  store,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.RecentSessions(bounce.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Frames != 30 || sessions[0].Ticks != 30 {
		t.Fatalf("sessions = %+v", sessions)
	}
	if sessions[0].AvgFPS < 59 || sessions[0].AvgFPS > 61 {
		t.Errorf("AvgFPS = %v", sessions[0].AvgFPS)
	}
}

func TestUnknownScene(t *testing.T) {
	host := headless.New(nil, headless.Options{})
	_, err := New(Options{Scene: "nope", Config: testConfig(), Host: host, Canvas: host.Canvas(), Logger: log.New(io.Discard)})
	if err == nil {
		t.Error("expected an error for an unknown scene")
	}
	if _, err := New(Options{Scene: bounce.ID}); err == nil {
		t.Error("expected an error without a host")
	}
}
