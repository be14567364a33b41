package systems

import (
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/core"
)

// FrameCounter reports the current frame number; the timing recorder satisfies it.
type FrameCounter interface {
	Frames() uint64
}

// StateReader reports the simulation state; the controller satisfies it.
type StateReader interface {
	State() core.SimState
}

// maxPendingSpawns bounds clicks latched across frames that run no sub-step.
const maxPendingSpawns = 8

// Spawner turns input edges into world edits: a left click drops a ball at the
// cursor and R removes every dropped ball. Edges are applied on the first
// sub-step of a frame, so a click spawns once however many sub-steps the frame
// runs. Edges from frames that run no sub-step are latched in Draw and applied
// on the next sub-step. Edges seen while paused are dropped.
type Spawner struct {
	world     *World
	input     *core.Snapshot
	canvas    core.Canvas
	frames    FrameCounter
	state     StateReader // nil means never paused
	events    *Events
	maxBodies int
	seed      int64
	rng       *rand.Rand
	lastFrame uint64
	handled   bool
	logger    *log.Logger

	pendingSpawns []core.Vec // window coordinates
	pendingClear  bool
}

// NewSpawner creates the click-to-spawn system.
func NewSpawner(world *World, input *core.Snapshot, canvas core.Canvas, frames FrameCounter,
	state StateReader, events *Events, maxBodies int, seed int64, logger *log.Logger) *Spawner {
	if logger == nil {
		logger = log.Default()
	}
	return &Spawner{
		world:     world,
		input:     input,
		canvas:    canvas,
		frames:    frames,
		state:     state,
		events:    events,
		maxBodies: maxBodies,
		seed:      seed,
		rng:       rand.New(rand.NewSource(seed)),
		logger:    logger,
	}
}

func (s *Spawner) Name() string      { return "spawner" }
func (s *Spawner) Initialize() error { return nil }
func (s *Spawner) Shutdown() error   { return nil }

// Update applies latched and current input edges on the frame's first sub-step.
func (s *Spawner) Update(float64) error {
	if s.consumed() {
		return nil
	}
	s.lastFrame = s.frames.Frames()
	s.handled = true

	wipe := s.pendingClear || s.input.KeyPressed(core.KeyR)
	spawns := s.pendingSpawns
	s.pendingSpawns = nil
	s.pendingClear = false
	if s.input.ButtonPressed(core.ButtonLeft) {
		x, y := s.input.Cursor()
		spawns = append(spawns, core.V(x, y))
	}

	if wipe {
		s.clear()
	}
	w, h := s.canvas.Size()
	for _, p := range spawns {
		s.Spawn(s.world.ToWorld(p.X, p.Y, w, h))
	}
	return nil
}

// Draw latches the edges of a frame whose sub-steps did not consume them.
func (s *Spawner) Draw() error {
	if s.consumed() {
		return nil
	}
	if s.state != nil && s.state.State() == core.StatePaused {
		s.pendingSpawns = nil
		s.pendingClear = false
		return nil
	}
	if s.input.KeyPressed(core.KeyR) {
		s.pendingClear = true
	}
	if s.input.ButtonPressed(core.ButtonLeft) && len(s.pendingSpawns) < maxPendingSpawns {
		x, y := s.input.Cursor()
		s.pendingSpawns = append(s.pendingSpawns, core.V(x, y))
	}
	return nil
}

// Pending reports latched clicks waiting for the next sub-step.
func (s *Spawner) Pending() int { return len(s.pendingSpawns) }

// consumed reports whether this frame's edges were already applied.
func (s *Spawner) consumed() bool {
	return s.handled && s.frames.Frames() == s.lastFrame
}

// Spawn drops a ball at pos. It reports false when the world is at capacity.
func (s *Spawner) Spawn(pos core.Vec) bool {
	if s.maxBodies > 0 && len(s.world.Bodies) >= s.maxBodies {
		s.logger.Debug("spawn refused: body cap reached", "max", s.maxBodies)
		return false
	}
	r := 5 + s.rng.Float64()*7
	pos.X = core.ClampF(pos.X, r, s.world.Width-r)
	pos.Y = core.ClampF(pos.Y, r, s.world.Height-r)
	s.world.Bodies = append(s.world.Bodies, Body{
		Pos:     pos,
		Vel:     core.V((s.rng.Float64()*2-1)*60, 0),
		Radius:  r,
		Color:   ballColors[s.rng.Intn(len(ballColors))],
		Spawned: true,
	})
	s.events.Emit(Event{Type: EventSpawn, Pos: pos})
	return true
}

func (s *Spawner) clear() {
	kept := s.world.Bodies[:0]
	removed := 0
	for _, b := range s.world.Bodies {
		if b.Spawned {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.world.Bodies = kept
	if removed > 0 {
		s.events.Emit(Event{Type: EventCleared, Strength: float64(removed)})
	}
}

// Reset reseeds the spawn randomness so a reset run repeats exactly, and drops
// latched edges.
func (s *Spawner) Reset() {
	s.rng = rand.New(rand.NewSource(s.seed))
	s.pendingSpawns = nil
	s.pendingClear = false
}
