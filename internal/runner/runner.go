// Package runner assembles a runnable sandbox: it builds the named scene into a
// subsystem registry and wires the frame loop, controller, recorder, input and
// overlay around the chosen graphics host.
package runner

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
	"github.com/vovakirdan/sandbox/internal/registry"
	"github.com/vovakirdan/sandbox/internal/storage"
)

// Options selects the scene and the collaborators it runs against.
type Options struct {
	Scene  string
	Config config.SandboxConfig

	Host   core.GraphicsHost // required
	Canvas core.Canvas       // required
	Clock  core.Clock        // frame clock; nil uses the system clock

	Store  *storage.Store // nil disables session persistence
	Logger *log.Logger
	Sink   overlay.Sink // receives each composed overlay frame
	Inbox  <-chan core.Command
	Board  *core.StatusBoard
}

// Runner is a built sandbox ready to run.
type Runner struct {
	Scene      registry.Scene
	Loop       *core.Loop
	Registry   *core.Registry
	Recorder   *core.Recorder
	Controller *core.Controller
	Input      *core.Snapshot
	Overlay    *overlay.Text
}

// New builds the scene and the loop around it. Nothing is initialized until Run.
func New(opts Options) (*Runner, error) {
	if opts.Host == nil || opts.Canvas == nil {
		return nil, errors.New("runner: host and canvas are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	cfg := opts.Config

	rec := core.NewRecorder(cfg.Telemetry.FPSWindow)
	rec.SetHUDVisible(cfg.Telemetry.ShowHUD)

	// Subsystem costs are real time even when frames follow a scripted clock.
	reg := core.NewRegistry(rec, core.SystemClock{}, opts.Logger)
	ctrl := core.NewController(cfg.Editor.Enabled, reg)
	input := core.NewSnapshot()
	text := overlay.NewText(opts.Sink)

	r := &Runner{
		Registry:   reg,
		Recorder:   rec,
		Controller: ctrl,
		Input:      input,
		Overlay:    text,
	}

	env := &registry.Env{
		Config:     cfg,
		Logger:     opts.Logger.WithPrefix(opts.Scene),
		Clock:      opts.Clock,
		Input:      input,
		Recorder:   rec,
		Controller: ctrl,
		Canvas:     opts.Canvas,
		Overlay:    text,
		Store:      opts.Store,
		Quit:       func() { r.Loop.RequestQuit() },
	}
	sc, err := registry.Build(opts.Scene, env, reg)
	if err != nil {
		return nil, err
	}
	r.Scene = sc

	loop, err := core.NewLoop(core.LoopConfig{
		Graphics:   opts.Host,
		Registry:   reg,
		Recorder:   rec,
		Controller: ctrl,
		Input:      input,
		Overlay:    text,
		Clock:      opts.Clock,
		Inbox:      opts.Inbox,
		Board:      opts.Board,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.Loop = loop

	opts.Logger.Debug("scene built", "scene", sc.ID(), "subsystems", reg.Names(), "state", ctrl.State())
	return r, nil
}

// Run runs the loop until the host closes, a quit is requested or ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	return r.Loop.Run(ctx)
}
