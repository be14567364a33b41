package systems

import (
	"math"

	"github.com/vovakirdan/sandbox/internal/core"
)

// Below this normal speed a ground contact settles the body instead of bouncing.
const restSpeed = 30.0

// Physics integrates bodies with gravity and resolves wall and ground contacts.
// Every bounce is emitted as an EventBounce.
type Physics struct {
	world       *World
	events      *Events
	gravity     float64
	restitution float64
	friction    float64
}

// NewPhysics creates the integrator.
func NewPhysics(world *World, events *Events, gravity, restitution float64) *Physics {
	return &Physics{
		world:       world,
		events:      events,
		gravity:     gravity,
		restitution: restitution,
		friction:    0.99,
	}
}

func (p *Physics) Name() string      { return "physics" }
func (p *Physics) Initialize() error { return nil }
func (p *Physics) Shutdown() error   { return nil }

// Update advances every body by one fixed step.
func (p *Physics) Update(dt float64) error {
	for i := range p.world.Bodies {
		p.step(&p.world.Bodies[i], dt)
	}
	return nil
}

func (p *Physics) step(b *Body, dt float64) {
	w := p.world
	b.Vel.Y += p.gravity * dt
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))

	// Side walls.
	if b.Pos.X < b.Radius {
		b.Pos.X = b.Radius
		p.bounceX(b)
	} else if b.Pos.X > w.Width-b.Radius {
		b.Pos.X = w.Width - b.Radius
		p.bounceX(b)
	}

	// Ceiling.
	if b.Pos.Y < b.Radius && b.Vel.Y < 0 {
		b.Pos.Y = b.Radius
		b.Vel.Y = -b.Vel.Y * p.restitution
	}

	// Ground.
	ground := w.GroundAt(b.Pos.X)
	if b.Pos.Y+b.Radius < ground {
		b.Resting = false
		return
	}
	b.Pos.Y = ground - b.Radius
	if b.Vel.Y <= 0 {
		return
	}

	// Slope pushes the body downhill.
	slope := (w.GroundAt(b.Pos.X+TerrainStep) - w.GroundAt(b.Pos.X-TerrainStep)) / (2 * TerrainStep)
	b.Vel.X += slope * b.Vel.Y * 0.5

	impact := b.Vel.Y
	if impact < restSpeed {
		b.Vel.Y = 0
		b.Vel.X *= p.friction
		b.Resting = true
		return
	}
	b.Vel.Y = -impact * p.restitution
	b.Resting = false
	p.emit(b, impact)
}

func (p *Physics) bounceX(b *Body) {
	impact := math.Abs(b.Vel.X)
	b.Vel.X = -b.Vel.X * p.restitution
	if impact >= restSpeed {
		p.emit(b, impact)
	}
}

func (p *Physics) emit(b *Body, impact float64) {
	if p.events == nil {
		return
	}
	p.events.Emit(Event{Type: EventBounce, Pos: b.Pos, Strength: impact})
}

// KineticEnergy returns the total ½mv² of all bodies, with mass ∝ r².
func KineticEnergy(bodies []Body) float64 {
	var e float64
	for _, b := range bodies {
		e += 0.5 * b.Radius * b.Radius * b.Vel.Dot(b.Vel)
	}
	return e
}

var _ core.Updater = (*Physics)(nil)
