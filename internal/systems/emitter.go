package systems

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/sandbox/internal/core"
)

// Emitter feeds the particle pool from the cursor: a steady upward fountain,
// four times denser while the left button is held.
type Emitter struct {
	world  *World
	input  *core.Snapshot
	canvas core.Canvas
	rate   float64 // particles per simulated second
	speed  float64
	seed   int64
	rng    *rand.Rand
	carry  float64 // fractional particles owed from earlier steps
	hue    int
}

var fountainColors = []core.Color{
	core.ColorBrightCyan,
	core.ColorCyan,
	core.ColorBrightBlue,
	core.ColorBrightWhite,
}

// NewEmitter creates an emitter spawning rate particles per second.
func NewEmitter(world *World, input *core.Snapshot, canvas core.Canvas, rate float64, seed int64) *Emitter {
	return &Emitter{
		world:  world,
		input:  input,
		canvas: canvas,
		rate:   rate,
		speed:  420,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (e *Emitter) Name() string      { return "emitter" }
func (e *Emitter) Initialize() error { return nil }
func (e *Emitter) Shutdown() error   { return nil }

// Update emits this step's share of particles.
func (e *Emitter) Update(dt float64) error {
	rate := e.rate
	if e.input.ButtonHeld(core.ButtonLeft) {
		rate *= 4
	}
	e.carry += rate * dt
	n := int(e.carry)
	e.carry -= float64(n)

	origin := e.Origin()
	for range n {
		angle := -math.Pi/2 + (e.rng.Float64()*2-1)*0.35
		speed := e.speed * (0.6 + e.rng.Float64()*0.4)
		life := 1.2 + e.rng.Float64()*1.3
		e.world.Particles.Add(Particle{
			Pos:     origin,
			Vel:     core.V(math.Cos(angle)*speed, math.Sin(angle)*speed),
			Life:    life,
			MaxLife: life,
			Size:    2 + e.rng.Float64()*2,
			Color:   fountainColors[e.hue%len(fountainColors)],
		})
		e.hue++
	}
	return nil
}

// Origin returns the emission point: the cursor in world space, or the bottom
// center before the cursor has entered the viewport.
func (e *Emitter) Origin() core.Vec {
	x, y := e.input.Cursor()
	w, h := e.canvas.Size()
	if (x == 0 && y == 0) || w <= 0 || h <= 0 {
		return core.V(e.world.Width/2, e.world.Height-4)
	}
	p := e.world.ToWorld(x, y, w, h)
	p.X = core.ClampF(p.X, 0, e.world.Width)
	p.Y = core.ClampF(p.Y, 0, e.world.Height)
	return p
}

// Reset restarts emission from the seed.
func (e *Emitter) Reset() {
	e.rng = rand.New(rand.NewSource(e.seed))
	e.carry = 0
	e.hue = 0
}
