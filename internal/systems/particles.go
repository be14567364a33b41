package systems

import "github.com/vovakirdan/sandbox/internal/core"

// DefaultMaxParticles is used when a pool is created with a non-positive cap.
const DefaultMaxParticles = 2048

// Particle is a short-lived point integrated by Particles.
type Particle struct {
	Pos, Vel core.Vec
	Life     float64 // seconds remaining
	MaxLife  float64
	Size     float64
	Color    core.Color
}

// ParticlePool is a capped particle buffer. When full, new particles overwrite
// the oldest slots in a circular order instead of being dropped.
type ParticlePool struct {
	Max    int
	P      []Particle
	ovrIdx int // circular overwrite index when full
}

// NewParticlePool creates a pool holding at most max particles.
func NewParticlePool(max int) *ParticlePool {
	if max <= 0 {
		max = DefaultMaxParticles
	}
	return &ParticlePool{
		Max: max,
		P:   make([]Particle, 0, max),
	}
}

// Clear removes every particle.
func (ps *ParticlePool) Clear() {
	ps.P = ps.P[:0]
	ps.ovrIdx = 0
}

// Add inserts p, overwriting the oldest slot when the pool is full.
func (ps *ParticlePool) Add(p Particle) {
	if len(ps.P) < ps.Max {
		ps.P = append(ps.P, p)
		return
	}
	if ps.ovrIdx >= ps.Max {
		ps.ovrIdx = 0
	}
	ps.P[ps.ovrIdx] = p
	ps.ovrIdx++
}

// Len returns the number of live particles.
func (ps *ParticlePool) Len() int { return len(ps.P) }

// Particles ages and moves the particle pool each sub-step. Particles that reach
// the ground bounce once at half speed, then expire with their remaining life.
type Particles struct {
	world   *World
	gravity float64
	damping float64
}

// NewParticles creates the particle integrator.
func NewParticles(world *World, gravity float64) *Particles {
	return &Particles{world: world, gravity: gravity, damping: 0.5}
}

func (p *Particles) Name() string      { return "particles" }
func (p *Particles) Initialize() error { return nil }
func (p *Particles) Shutdown() error   { return nil }

// Update integrates every particle and compacts out the dead ones in place.
func (p *Particles) Update(dt float64) error {
	pool := p.world.Particles
	live := pool.P[:0]
	for _, pt := range pool.P {
		pt.Life -= dt
		if pt.Life <= 0 {
			continue
		}
		pt.Vel.Y += p.gravity * dt
		pt.Pos = pt.Pos.Add(pt.Vel.Scale(dt))

		if ground := p.world.GroundAt(pt.Pos.X); pt.Pos.Y > ground {
			pt.Pos.Y = ground
			if pt.Vel.Y > 0 {
				pt.Vel.Y = -pt.Vel.Y * p.damping
				pt.Vel.X *= p.damping
			}
		}
		if pt.Pos.X < 0 || pt.Pos.X > p.world.Width {
			continue
		}
		live = append(live, pt)
	}
	pool.P = live
	if pool.ovrIdx > len(live) {
		pool.ovrIdx = 0
	}
	return nil
}

// Reset empties the pool.
func (p *Particles) Reset() { p.world.Particles.Clear() }
