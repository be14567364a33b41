package core

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

// LoopConfig wires the frame loop to its collaborators.
type LoopConfig struct {
	Graphics   GraphicsHost // required
	Registry   *Registry    // required
	Recorder   *Recorder    // required; must be the registry's recorder
	Controller *Controller  // required
	Input      *Snapshot    // required

	Overlay OverlayHost // nil brackets the draw pass with NopOverlay
	Clock   Clock       // frame clock; nil uses SystemClock

	// HUDToggleKey flips Recorder.HUDVisible on its pressed edge. Zero selects KeyF3,
	// a negative value disables the toggle.
	HUDToggleKey int

	// Inbox carries editor commands from other goroutines. Drained once per frame
	// before the sub-step query. May be nil.
	Inbox <-chan Command

	// Board receives a Status after every presented frame. May be nil.
	Board *StatusBoard

	Logger *log.Logger
}

// Loop advances the sandbox one frame at a time: fixed-step simulation through
// the Controller, render at display rate, per-subsystem timing.
type Loop struct {
	gfx     GraphicsHost
	overlay OverlayHost
	reg     *Registry
	rec     *Recorder
	ctrl    *Controller
	input   *Snapshot
	clock   Clock
	inbox   <-chan Command
	board   *StatusBoard
	logger  *log.Logger

	hudKey   int
	prev     time.Time
	frame    uint64
	substeps int // granted in the latest frame
	quit     bool
}

// NewLoop validates cfg and builds a loop.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	switch {
	case cfg.Graphics == nil:
		return nil, errors.New("core: loop: graphics host is required")
	case cfg.Registry == nil:
		return nil, errors.New("core: loop: registry is required")
	case cfg.Recorder == nil:
		return nil, errors.New("core: loop: recorder is required")
	case cfg.Controller == nil:
		return nil, errors.New("core: loop: controller is required")
	case cfg.Input == nil:
		return nil, errors.New("core: loop: input snapshot is required")
	}

	l := &Loop{
		gfx:     cfg.Graphics,
		overlay: cfg.Overlay,
		reg:     cfg.Registry,
		rec:     cfg.Recorder,
		ctrl:    cfg.Controller,
		input:   cfg.Input,
		clock:   cfg.Clock,
		inbox:   cfg.Inbox,
		board:   cfg.Board,
		logger:  cfg.Logger,
		hudKey:  cfg.HUDToggleKey,
	}
	if l.overlay == nil {
		l.overlay = NopOverlay{}
	}
	if l.clock == nil {
		l.clock = SystemClock{}
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	if l.hudKey == 0 {
		l.hudKey = KeyF3
	}
	return l, nil
}

// Run initializes every subsystem, then runs frames until the host asks to close,
// RequestQuit or CommandQuit is seen, or ctx is cancelled. The current frame always
// completes first. Subsystems are shut down in reverse order on every exit path,
// including a panic escaping a subsystem; subsystem failures are returned, not recovered.
func (l *Loop) Run(ctx context.Context) (err error) {
	if err := l.reg.InitializeAll(); err != nil {
		return err
	}
	defer func() {
		if shutErr := l.reg.ShutdownAll(); shutErr != nil {
			if err == nil {
				err = shutErr
			} else {
				l.logger.Warn("shutdown after failure", "error", shutErr)
			}
		}
	}()

	l.input.Prime(l.gfx)
	l.prev = l.clock.Now()
	l.logger.Debug("loop started", "subsystems", l.reg.Len(), "state", l.ctrl.State())

	for {
		if err := l.runFrame(); err != nil {
			return err
		}
		if l.gfx.ShouldClose() || l.quit {
			break
		}
		if ctx.Err() != nil {
			l.logger.Debug("loop cancelled", "reason", context.Cause(ctx))
			break
		}
	}
	l.logger.Debug("loop stopped", "frames", l.frame, "ticks", l.ctrl.Ticks())
	return nil
}

// runFrame performs one iteration of the frame algorithm.
func (l *Loop) runFrame() error {
	if err := l.gfx.PollEvents(); err != nil {
		return hostError("poll events", err)
	}
	l.input.Sample(l.gfx)

	// Clamp before accumulating so a stall never turns into a burst of catch-up steps.
	now := l.clock.Now()
	dt := min(DeltaSince(l.clock, l.prev), DtClamp)
	l.prev = now

	l.rec.FrameStart(dt, l.hudKey > 0 && l.input.KeyPressed(l.hudKey))
	l.drainInbox()

	n := l.ctrl.Substeps(dt)
	l.substeps = n
	for i := 0; i < n; i++ {
		if err := l.reg.UpdateAll(FixedDt); err != nil {
			return err
		}
	}

	if err := l.gfx.BeginFrame(); err != nil {
		return hostError("begin frame", err)
	}
	l.overlay.BeginOverlayFrame()
	drawErr := l.reg.DrawAll()
	l.overlay.EndOverlayFrame()
	if drawErr != nil {
		return drawErr
	}
	if err := l.gfx.EndFrame(); err != nil {
		return hostError("end frame", err)
	}
	if err := l.gfx.Present(); err != nil {
		return hostError("present", err)
	}

	l.frame++
	l.publish()
	return nil
}

// drainInbox applies every pending editor command without blocking.
func (l *Loop) drainInbox() {
	if l.inbox == nil {
		return
	}
	for {
		select {
		case cmd, ok := <-l.inbox:
			if !ok {
				l.inbox = nil
				return
			}
			if cmd == CommandQuit {
				l.quit = true
				continue
			}
			if l.ctrl.Apply(cmd) {
				l.logger.Debug("editor command", "command", cmd, "state", l.ctrl.State())
			}
		default:
			return
		}
	}
}

func (l *Loop) publish() {
	if l.board == nil {
		return
	}
	l.board.Publish(Status{
		Frame:       l.frame,
		Ticks:       l.ctrl.Ticks(),
		Substeps:    l.substeps,
		State:       l.ctrl.State(),
		Accumulator: l.ctrl.Accumulator(),
		FPS:         l.rec.FPS(),
		FPSAvg:      l.rec.FPSAvg(),
		Dt:          l.rec.LastDt(),
		Timings:     l.rec.SortedLast(),
	})
}

// RequestQuit asks the loop to stop after the current frame.
// Must be called from the loop goroutine, typically from a subsystem.
func (l *Loop) RequestQuit() {
	l.quit = true
}

// Frames returns how many frames have been presented.
func (l *Loop) Frames() uint64 {
	return l.frame
}

// LastSubsteps returns the sub-steps dispatched in the latest frame.
func (l *Loop) LastSubsteps() int {
	return l.substeps
}

// Controller returns the simulation controller driven by this loop.
func (l *Loop) Controller() *Controller {
	return l.ctrl
}
