package systems

import (
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
)

// Perlin parameters: alpha is persistence, beta is lacunarity, n the octave count.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
	noiseFreq    = 0.035 // noise units per terrain sample
)

var ballColors = []core.Color{
	core.ColorBrightRed,
	core.ColorBrightYellow,
	core.ColorBrightGreen,
	core.ColorBrightCyan,
	core.ColorBrightMagenta,
	core.ColorOrange,
}

// Logic owns the level: it lays out terrain and the initial balls, advances the
// world clock, and rebuilds everything from the seed on reset.
type Logic struct {
	world  *World
	cfg    config.WorldConfig
	flat   bool
	logger *log.Logger
}

// NewLogic creates the level owner. A flat level skips terrain generation.
func NewLogic(world *World, cfg config.WorldConfig, flat bool, logger *log.Logger) *Logic {
	if logger == nil {
		logger = log.Default()
	}
	return &Logic{world: world, cfg: cfg, flat: flat, logger: logger}
}

func (l *Logic) Name() string { return "logic" }

// Initialize builds the level.
func (l *Logic) Initialize() error {
	l.build()
	l.logger.Debug("level built", "seed", l.cfg.Seed, "terrain", len(l.world.Terrain), "bodies", len(l.world.Bodies))
	return nil
}

func (l *Logic) Shutdown() error { return nil }

// Update advances the world clock.
func (l *Logic) Update(dt float64) error {
	l.world.Ticks++
	l.world.Time += dt
	return nil
}

// Reset rebuilds the level from the seed, discarding user-dropped bodies.
func (l *Logic) Reset() {
	l.build()
	l.logger.Debug("level reset", "seed", l.cfg.Seed)
}

func (l *Logic) build() {
	w := l.world
	w.Ticks = 0
	w.Time = 0
	w.Bodies = w.Bodies[:0]
	w.Terrain = w.Terrain[:0]

	if !l.flat {
		w.Terrain = Terrain(l.cfg.Seed, w.Width, w.Height, l.cfg.TerrainScale)
	}

	rng := rand.New(rand.NewSource(l.cfg.Seed))
	for i := 0; i < l.cfg.InitialBalls && i < l.cfg.MaxBodies; i++ {
		r := 6 + rng.Float64()*6
		w.Bodies = append(w.Bodies, Body{
			Pos:    core.V(r+rng.Float64()*(w.Width-2*r), r+rng.Float64()*w.Height/3),
			Vel:    core.V((rng.Float64()*2-1)*120, 0),
			Radius: r,
			Color:  ballColors[i%len(ballColors)],
		})
	}
}

// Terrain generates ground heights across width with Perlin noise. Hills rise at
// most scale×height above a baseline three quarters of the way down.
func Terrain(seed int64, width, height, scale float64) []float64 {
	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)
	n := int(width/TerrainStep) + 2
	out := make([]float64, n)
	base := height * 0.75
	amp := height * scale
	for i := range out {
		v := noise.Noise1D(float64(i) * noiseFreq) // roughly [-1, 1]
		out[i] = core.ClampF(base-v*amp, height*0.2, height-2)
	}
	return out
}
