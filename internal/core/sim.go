package core

import "math"

// Simulation timing constants.
const (
	FixedDt     = 1.0 / 60.0 // simulation step, seconds
	MaxSubsteps = 5          // spiral-of-death cap per frame
	DtClamp     = 0.1        // stall cap on measured frame time, seconds

	// accumulator tolerance so that n exact steps of wall time yield n sub-steps
	// despite float rounding
	stepEpsilon = 1e-9
)

// SimState is the Controller's gate on simulation updates.
type SimState int

const (
	StateRunning SimState = iota
	StatePaused
	StateStepping
	StateResetting
)

// String returns a human-readable name for the state.
func (s SimState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStepping:
		return "Stepping"
	case StateResetting:
		return "Resetting"
	default:
		return "Unknown"
	}
}

// Command is an editor request delivered to the loop from another goroutine.
type Command int

const (
	CommandNone Command = iota
	CommandPlay
	CommandPause
	CommandToggle // play when paused, pause when running
	CommandStep
	CommandReset
	CommandQuit
)

// String returns a human-readable name for the command.
func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandToggle:
		return "toggle"
	case CommandStep:
		return "step"
	case CommandReset:
		return "reset"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// Controller decides how many fixed sub-steps the loop runs each frame and owns
// the accumulator, so pause, step and reset change it together with the state.
type Controller struct {
	state SimState
	acc   float64
	hook  ResetHook

	ticks  uint64 // sub-steps granted
	resets uint64
}

// NewController creates a controller. With an editor in control it starts Paused,
// otherwise Running. hook may be nil.
func NewController(editor bool, hook ResetHook) *Controller {
	c := &Controller{state: StateRunning, hook: hook}
	if editor {
		c.state = StatePaused
	}
	return c
}

// SetResetHook replaces the hook invoked while Resetting.
func (c *Controller) SetResetHook(h ResetHook) {
	c.hook = h
}

// State returns the current simulation state.
func (c *Controller) State() SimState { return c.state }

// Accumulator returns wall time not yet converted into sub-steps.
func (c *Controller) Accumulator() float64 { return c.acc }

// Alpha returns the fraction of a step left in the accumulator, for render interpolation.
func (c *Controller) Alpha() float64 { return c.acc / FixedDt }

// Ticks returns the total number of sub-steps granted.
func (c *Controller) Ticks() uint64 { return c.ticks }

// Resets returns how many resets have been processed.
func (c *Controller) Resets() uint64 { return c.resets }

// Play resumes a paused or stepping simulation.
func (c *Controller) Play() bool {
	switch c.state {
	case StatePaused, StateStepping:
		c.state = StateRunning
		return true
	}
	return false
}

// Pause freezes a running simulation. A pending single step is cancelled.
func (c *Controller) Pause() bool {
	switch c.state {
	case StateRunning, StateStepping:
		c.state = StatePaused
		return true
	}
	return false
}

// StepOnce schedules exactly one sub-step. Only valid while Paused.
func (c *Controller) StepOnce() bool {
	if c.state != StatePaused {
		return false
	}
	c.state = StateStepping
	return true
}

// Reset schedules a reset for the next sub-step query.
func (c *Controller) Reset() bool {
	if c.state == StateResetting {
		return false
	}
	c.state = StateResetting
	return true
}

// Apply executes an editor command and reports whether the state changed.
// CommandQuit is not a simulation transition and is handled by the loop.
func (c *Controller) Apply(cmd Command) bool {
	switch cmd {
	case CommandPlay:
		return c.Play()
	case CommandPause:
		return c.Pause()
	case CommandToggle:
		if c.state == StateRunning {
			return c.Pause()
		}
		return c.Play()
	case CommandStep:
		return c.StepOnce()
	case CommandReset:
		return c.Reset()
	}
	return false
}

// Substeps returns how many fixed sub-steps to dispatch for a frame whose clamped
// wall time is dt, and advances the state machine.
//
//   - Running: dt joins the accumulator; returns min(floor(acc/FixedDt), MaxSubsteps)
//     and consumes that many steps. Time beyond the cap is discarded.
//   - Paused: returns 0; the accumulator is left alone.
//   - Stepping: returns 1 regardless of dt and falls back to Paused.
//   - Resetting: runs the reset hook, clears the accumulator, returns 0, goes Paused.
func (c *Controller) Substeps(dt float64) int {
	switch c.state {
	case StateRunning:
		if dt > 0 {
			c.acc += dt
		}
		n := int(math.Floor((c.acc + stepEpsilon) / FixedDt))
		if n > MaxSubsteps {
			n = MaxSubsteps
			c.acc = 0
		} else {
			c.acc -= float64(n) * FixedDt
			if c.acc < 0 {
				c.acc = 0
			}
		}
		c.ticks += uint64(n)
		return n

	case StateStepping:
		c.state = StatePaused
		c.ticks++
		return 1

	case StateResetting:
		if c.hook != nil {
			c.hook.Reset()
		}
		c.acc = 0
		c.resets++
		c.state = StatePaused
		return 0
	}
	return 0
}
