// Package bounce is the default sandbox scene: balls falling onto Perlin hills.
// Click to drop a ball at the cursor, R to clear the dropped ones.
package bounce

import (
	"fmt"

	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/registry"
	"github.com/vovakirdan/sandbox/internal/systems"
)

// ID is the scene's registry key.
const ID = "bounce"

func init() {
	registry.Register(ID, func() registry.Scene { return &Scene{} })
}

// Scene builds the bounce world.
type Scene struct {
	World *systems.World // set by Build
}

func (s *Scene) ID() string    { return ID }
func (s *Scene) Title() string { return "Bounce" }

// Build wires the scene's subsystems. Order matters: logic and input first,
// physics before the event flush so bounces reach audio in the same sub-step,
// then the draw-only systems.
func (s *Scene) Build(env *registry.Env) ([]core.Subsystem, error) {
	cfg := env.Config
	w, h := env.Canvas.Size()
	if w <= 0 || h <= 0 {
		w, h = cfg.Window.Width, cfg.Window.Height
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("bounce: no viewport size")
	}

	world := systems.NewWorld(float64(w), float64(h), cfg.World.MaxParticles)
	s.World = world
	events := systems.NewEvents()

	hudExtra := func() []string {
		return []string{fmt.Sprintf("bodies %d (dropped %d)", len(world.Bodies), world.Spawned())}
	}

	return []core.Subsystem{
		systems.NewLogic(world, cfg.World, false, env.Logger),
		systems.NewSpawner(world, env.Input, env.Canvas, env.Recorder, env.Controller, events, cfg.World.MaxBodies, cfg.World.Seed, env.Logger),
		systems.NewPhysics(world, events, cfg.World.Gravity, cfg.World.Restitution),
		events,
		systems.NewAudio(cfg.Audio, events, nil, env.Logger),
		systems.NewRenderer(world, env.Canvas),
		systems.NewHUD(env.Recorder, env.Overlay, hudExtra),
		systems.NewEditorPanel(env.Controller, env.Input, env.Overlay, env.Quit, cfg.Editor.Enabled),
		systems.NewSessionLog(env.Store, env.Recorder, env.Controller, env.Clock, ID, env.Logger),
	}, nil
}
