// Package fountain is a particle stress scene: a fountain that follows the
// cursor and fills the capped particle pool. Hold the left button for more.
package fountain

import (
	"fmt"

	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/registry"
	"github.com/vovakirdan/sandbox/internal/systems"
)

// ID is the scene's registry key.
const ID = "fountain"

// EmitRate is the steady emission rate, particles per simulated second.
const EmitRate = 240

func init() {
	registry.Register(ID, func() registry.Scene { return &Scene{} })
}

// Scene builds the fountain world.
type Scene struct {
	World *systems.World // set by Build
}

func (s *Scene) ID() string    { return ID }
func (s *Scene) Title() string { return "Fountain" }

// Build wires the scene's subsystems on a flat floor without level bodies.
func (s *Scene) Build(env *registry.Env) ([]core.Subsystem, error) {
	cfg := env.Config
	w, h := env.Canvas.Size()
	if w <= 0 || h <= 0 {
		w, h = cfg.Window.Width, cfg.Window.Height
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("fountain: no viewport size")
	}

	world := systems.NewWorld(float64(w), float64(h), cfg.World.MaxParticles)
	s.World = world

	level := cfg.World
	level.InitialBalls = 0

	hudExtra := func() []string {
		return []string{fmt.Sprintf("particles %d/%d", world.Particles.Len(), world.Particles.Max)}
	}

	return []core.Subsystem{
		systems.NewLogic(world, level, true, env.Logger),
		systems.NewEmitter(world, env.Input, env.Canvas, EmitRate, cfg.World.Seed),
		systems.NewParticles(world, cfg.World.Gravity),
		systems.NewRenderer(world, env.Canvas),
		systems.NewHUD(env.Recorder, env.Overlay, hudExtra),
		systems.NewEditorPanel(env.Controller, env.Input, env.Overlay, env.Quit, cfg.Editor.Enabled),
		systems.NewSessionLog(env.Store, env.Recorder, env.Controller, env.Clock, ID, env.Logger),
	}, nil
}
