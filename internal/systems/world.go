// Package systems holds the subsystems the demo scenes are assembled from.
// Every system shares one World and runs on the frame loop goroutine.
package systems

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/vovakirdan/sandbox/internal/core"
)

// TerrainStep is the horizontal spacing of terrain samples, in world pixels.
const TerrainStep = 8.0

// Body is a ball integrated by Physics.
type Body struct {
	Pos     core.Vec
	Vel     core.Vec
	Radius  float64
	Color   core.Color
	Spawned bool // dropped by the user rather than placed by the level
	Resting bool // settled on the ground; no more bounce events
}

// World is the mutable simulation state shared by a scene's systems.
type World struct {
	Width, Height float64

	// Terrain holds ground heights (y of the surface) every TerrainStep pixels.
	// Empty means a flat floor at Height.
	Terrain []float64

	Bodies    []Body
	Particles *ParticlePool

	Ticks uint64
	Time  float64 // simulated seconds since the last reset
}

// NewWorld creates an empty world of the given size.
func NewWorld(width, height float64, maxParticles int) *World {
	return &World{
		Width:     width,
		Height:    height,
		Particles: NewParticlePool(maxParticles),
	}
}

// GroundAt returns the surface height under x, interpolated between samples.
func (w *World) GroundAt(x float64) float64 {
	n := len(w.Terrain)
	if n == 0 {
		return w.Height
	}
	f := x / TerrainStep
	if f <= 0 {
		return w.Terrain[0]
	}
	i := int(f)
	if i >= n-1 {
		return w.Terrain[n-1]
	}
	t := f - float64(i)
	return w.Terrain[i]*(1-t) + w.Terrain[i+1]*t
}

// ToWorld maps a point in a viewW×viewH viewport to world coordinates.
func (w *World) ToWorld(x, y float64, viewW, viewH int) core.Vec {
	if viewW <= 0 || viewH <= 0 {
		return core.V(x, y)
	}
	return core.V(x*w.Width/float64(viewW), y*w.Height/float64(viewH))
}

// Spawned counts user-dropped bodies.
func (w *World) Spawned() int {
	n := 0
	for i := range w.Bodies {
		if w.Bodies[i].Spawned {
			n++
		}
	}
	return n
}

// Hash returns a digest of the body and particle state. Two worlds driven by the
// same seed and inputs hash equal.
func (w *World) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	put(float64(w.Ticks))
	for _, y := range w.Terrain {
		put(y)
	}
	for _, b := range w.Bodies {
		put(b.Pos.X)
		put(b.Pos.Y)
		put(b.Vel.X)
		put(b.Vel.Y)
		put(b.Radius)
	}
	if w.Particles != nil {
		for _, p := range w.Particles.P {
			put(p.Pos.X)
			put(p.Pos.Y)
			put(p.Life)
		}
	}
	return h.Sum64()
}
