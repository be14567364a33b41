package core

// Subsystem is a unit of engine work owned by a Registry.
//
// Initialize is called exactly once, before any Update or Draw. Shutdown is called
// exactly once after the last Update or Draw, and only if Initialize succeeded.
// A subsystem is never initialized twice.
type Subsystem interface {
	// Name identifies the subsystem in timings and errors. Non-empty, case-sensitive,
	// and constant for the life of the value.
	Name() string
	Initialize() error
	Shutdown() error
}

// Updater is implemented by subsystems that advance simulation state.
// dt is always the fixed simulation step, in seconds.
type Updater interface {
	Update(dt float64) error
}

// Drawer is implemented by subsystems that submit render or overlay commands.
// Draw runs once per frame, after every update sub-step of that frame, and also
// while the simulation is paused.
type Drawer interface {
	Draw() error
}

// Resetter is implemented by subsystems that can restore their initial
// simulation state when the editor requests a reset.
type Resetter interface {
	Reset()
}

// ResetHook is invoked by the Controller when it processes a reset.
type ResetHook interface {
	Reset()
}

// ResetFunc adapts a plain function to ResetHook.
type ResetFunc func()

// Reset calls f.
func (f ResetFunc) Reset() { f() }
