package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// noCopy makes go vet's copylocks check flag accidental copies of a Registry.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type entry struct {
	sys         Subsystem
	name        string
	updater     Updater
	drawer      Drawer
	resetter    Resetter
	initialized bool
}

// Registry exclusively owns subsystems and drives their lifecycle in registration order.
// Registration order is initialization, update and draw order; shutdown runs in reverse.
type Registry struct {
	noCopy noCopy

	entries []entry
	byName  map[string]int
	rec     *Recorder
	clock   Clock
	logger  *log.Logger

	sealed bool // InitializeAll has run; no more registration
	closed bool // ShutdownAll has run
}

// NewRegistry creates an empty registry. Update and draw costs are measured with
// clock and recorded into rec; either may be nil (no timing, system clock).
func NewRegistry(rec *Recorder, clock Clock, logger *log.Logger) *Registry {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		byName: make(map[string]int),
		rec:    rec,
		clock:  clock,
		logger: logger,
	}
}

// Register moves s into the registry, appending it to the execution order.
// It fails once InitializeAll has run, and for nil, unnamed or duplicate subsystems.
func (r *Registry) Register(s Subsystem) error {
	if r.sealed || r.closed {
		return fmt.Errorf("core: register: %w", ErrRegistrySealed)
	}
	if s == nil {
		return errors.New("core: register: nil subsystem")
	}
	name := s.Name()
	if name == "" {
		return errors.New("core: register: subsystem has empty name")
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("core: register: duplicate subsystem %q", name)
	}

	e := entry{sys: s, name: name}
	e.updater, _ = s.(Updater)
	e.drawer, _ = s.(Drawer)
	e.resetter, _ = s.(Resetter)

	r.byName[name] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

// Len returns the number of owned subsystems.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns subsystem names in execution order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Lookup returns a borrowed reference to the named subsystem. The reference must
// not be used after ShutdownAll.
func (r *Registry) Lookup(name string) (Subsystem, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].sys, true
}

// InitializeAll initializes every subsystem in registration order. If one fails,
// the subsystems already initialized are shut down in reverse order and the
// failure is returned as a *SubsystemError wrapping ErrSubsystemInit.
func (r *Registry) InitializeAll() error {
	if r.sealed || r.closed {
		return fmt.Errorf("core: initialize: %w", ErrRegistrySealed)
	}
	r.sealed = true

	for i := range r.entries {
		e := &r.entries[i]
		r.logger.Debug("initializing subsystem", "subsystem", e.name)
		if err := e.sys.Initialize(); err != nil {
			initErr := newSubsystemError(e.name, PhaseInitialize, err)
			if shutErr := r.shutdownInitialized(); shutErr != nil {
				r.logger.Warn("rollback after init failure", "error", shutErr)
			}
			return initErr
		}
		e.initialized = true
	}
	return nil
}

// UpdateAll advances every updater by dt in registration order, recording each
// call's wall time under the subsystem name.
func (r *Registry) UpdateAll(dt float64) error {
	for i := range r.entries {
		e := &r.entries[i]
		if e.updater == nil || !e.initialized {
			continue
		}
		start := r.clock.Now()
		err := e.updater.Update(dt)
		r.record(e.name, start)
		if err != nil {
			return newSubsystemError(e.name, PhaseUpdate, err)
		}
	}
	return nil
}

// DrawAll draws every drawer in registration order, recording each call's wall time.
func (r *Registry) DrawAll() error {
	for i := range r.entries {
		e := &r.entries[i]
		if e.drawer == nil || !e.initialized {
			continue
		}
		start := r.clock.Now()
		err := e.drawer.Draw()
		r.record(e.name, start)
		if err != nil {
			return newSubsystemError(e.name, PhaseDraw, err)
		}
	}
	return nil
}

// Reset calls Reset on every initialized Resetter in registration order.
// The registry itself is therefore usable as the Controller's ResetHook.
func (r *Registry) Reset() {
	for i := range r.entries {
		e := &r.entries[i]
		if e.resetter != nil && e.initialized {
			e.resetter.Reset()
		}
	}
}

// ShutdownAll shuts down initialized subsystems in reverse registration order and
// releases them. Shutdown errors are collected, not fatal. A second call is a no-op.
func (r *Registry) ShutdownAll() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.sealed = true

	err := r.shutdownInitialized()
	r.entries = nil
	r.byName = make(map[string]int)
	return err
}

func (r *Registry) shutdownInitialized() error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := &r.entries[i]
		if !e.initialized {
			continue
		}
		e.initialized = false
		r.logger.Debug("shutting down subsystem", "subsystem", e.name)
		if err := e.sys.Shutdown(); err != nil {
			errs = append(errs, &SubsystemError{
				Name:  e.name,
				Phase: PhaseShutdown,
				Kind:  ErrSubsystemRuntime,
				Err:   err,
			})
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) record(name string, start time.Time) {
	if r.rec == nil {
		return
	}
	r.rec.Record(name, msSince(r.clock, start))
}
