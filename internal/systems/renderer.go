package systems

import "github.com/vovakirdan/sandbox/internal/core"

// Renderer draws the world onto the canvas: sky, terrain columns, bodies and
// particles, scaled from world space to the current viewport.
type Renderer struct {
	world  *World
	canvas core.Canvas
	sky    core.Color
	ground core.Color
}

// NewRenderer creates the world renderer.
func NewRenderer(world *World, canvas core.Canvas) *Renderer {
	return &Renderer{world: world, canvas: canvas, sky: core.ColorSky, ground: core.ColorEarth}
}

func (r *Renderer) Name() string      { return "renderer" }
func (r *Renderer) Initialize() error { return nil }
func (r *Renderer) Shutdown() error   { return nil }

// Draw renders the current world state.
func (r *Renderer) Draw() error {
	w := r.world
	vw, vh := r.canvas.Size()
	if vw <= 0 || vh <= 0 || w.Width <= 0 || w.Height <= 0 {
		return nil
	}
	sx, sy := float64(vw)/w.Width, float64(vh)/w.Height
	view := func(rc core.Rect) core.Rect {
		return core.NewRect(rc.X*sx, rc.Y*sy, rc.W*sx, rc.H*sy)
	}

	r.canvas.Clear(r.sky)

	if len(w.Terrain) > 0 {
		for i, top := range w.Terrain {
			x := float64(i) * TerrainStep
			if x >= w.Width {
				break
			}
			r.canvas.FillRect(view(core.NewRect(x, top, TerrainStep, w.Height-top)), r.ground)
		}
	} else {
		r.canvas.FillRect(view(core.NewRect(0, w.Height-2, w.Width, 2)), r.ground)
	}

	for _, p := range w.Particles.P {
		r.canvas.FillRect(view(core.RectAround(p.Pos, p.Size/2)), p.Color)
	}
	for _, b := range w.Bodies {
		r.canvas.FillRect(view(core.RectAround(b.Pos, b.Radius)), b.Color)
	}
	return nil
}
