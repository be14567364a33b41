package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the frame orchestrator. Callers match them with errors.Is.
var (
	ErrSubsystemInit    = errors.New("subsystem init failure")
	ErrSubsystemRuntime = errors.New("subsystem runtime failure")
	ErrGraphicsHost     = errors.New("graphics host failure")
	ErrRegistrySealed   = errors.New("registry sealed")
)

// Phase names the lifecycle call a subsystem was executing when it failed.
type Phase string

const (
	PhaseInitialize Phase = "initialize"
	PhaseUpdate     Phase = "update"
	PhaseDraw       Phase = "draw"
	PhaseShutdown   Phase = "shutdown"
)

// SubsystemError reports a failure inside one subsystem's lifecycle call.
// It unwraps to both the error kind and the subsystem's own error.
type SubsystemError struct {
	Name  string
	Phase Phase
	Kind  error
	Err   error
}

func (e *SubsystemError) Error() string {
	return fmt.Sprintf("core: %s %s: %v", e.Name, e.Phase, e.Err)
}

func (e *SubsystemError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newSubsystemError(name string, phase Phase, err error) *SubsystemError {
	kind := ErrSubsystemRuntime
	if phase == PhaseInitialize {
		kind = ErrSubsystemInit
	}
	return &SubsystemError{Name: name, Phase: phase, Kind: kind, Err: err}
}

// hostError wraps a graphics host failure for the given operation.
func hostError(op string, err error) error {
	return fmt.Errorf("core: %s: %w: %w", op, ErrGraphicsHost, err)
}
