// Package registry provides a global registry for scene factories.
// Scenes register themselves in init() functions, allowing the CLI to discover
// and build them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
	"github.com/vovakirdan/sandbox/internal/storage"
)

// Scene assembles the subsystems that make up one sandbox world.
type Scene interface {
	// ID returns a unique identifier for this scene (e.g., "bounce").
	// Used for CLI commands and session storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Build creates the scene's subsystems in registration order.
	// Nothing is initialized yet; the frame loop does that.
	Build(env *Env) ([]core.Subsystem, error)
}

// Env is everything a scene may wire its subsystems to.
type Env struct {
	Config     config.SandboxConfig
	Logger     *log.Logger
	Clock      core.Clock
	Input      *core.Snapshot
	Recorder   *core.Recorder
	Controller *core.Controller
	Canvas     core.Canvas
	Overlay    *overlay.Text
	Store      *storage.Store // nil when persistence is disabled
	Quit       func()         // asks the loop to stop after the current frame
	SceneID    string
}

// SceneInfo contains metadata about a registered scene.
type SceneInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a scene.
type Factory func() Scene

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scene factory to the registry.
// Typically called from a scene's init() function.
// Panics if a scene with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered scenes, sorted by ID.
func List() []SceneInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SceneInfo, 0, len(factories))
	for id := range factories {
		result = append(result, SceneInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new scene by its ID.
func Create(id string) (Scene, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown scene %q", id)
	}

	return f(), nil
}

// Exists checks if a scene with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Build creates the scene id and registers its subsystems with reg, in order.
func Build(id string, env *Env, reg *core.Registry) (Scene, error) {
	sc, err := Create(id)
	if err != nil {
		return nil, err
	}
	env.SceneID = sc.ID()

	subs, err := sc.Build(env)
	if err != nil {
		return nil, fmt.Errorf("registry: build %s: %w", id, err)
	}
	for _, s := range subs {
		if err := reg.Register(s); err != nil {
			return nil, fmt.Errorf("registry: build %s: %w", id, err)
		}
	}
	return sc, nil
}
