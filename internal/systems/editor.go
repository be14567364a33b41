package systems

import (
	"fmt"

	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
)

// Editor hotkeys.
const (
	KeyTogglePlay = core.KeyF5
	KeyStep       = core.KeyF6
	KeyReset      = core.KeyF7
	KeyQuit       = core.KeyEscape
)

// EditorPanel is the in-window editor. It reads hotkeys during Draw, which runs
// every frame including paused ones, and forwards them to the controller; the
// change takes effect from the next frame's sub-steps. Escape quits whether or
// not the editor is enabled.
type EditorPanel struct {
	ctrl    *core.Controller
	input   *core.Snapshot
	overlay *overlay.Text
	quit    func()
	enabled bool
}

// NewEditorPanel creates the editor panel.
func NewEditorPanel(ctrl *core.Controller, input *core.Snapshot, text *overlay.Text, quit func(), enabled bool) *EditorPanel {
	return &EditorPanel{ctrl: ctrl, input: input, overlay: text, quit: quit, enabled: enabled}
}

func (e *EditorPanel) Name() string      { return "editor" }
func (e *EditorPanel) Initialize() error { return nil }
func (e *EditorPanel) Shutdown() error   { return nil }

// Draw handles hotkeys and submits the state panel.
func (e *EditorPanel) Draw() error {
	if e.input.KeyPressed(KeyQuit) && e.quit != nil {
		e.quit()
	}
	if !e.enabled {
		return nil
	}

	switch {
	case e.input.KeyPressed(KeyTogglePlay):
		e.ctrl.Apply(core.CommandToggle)
	case e.input.KeyPressed(KeyStep):
		e.ctrl.Apply(core.CommandStep)
	case e.input.KeyPressed(KeyReset):
		e.ctrl.Apply(core.CommandReset)
	}

	e.overlay.Panel("Editor",
		e.ctrl.State().String(),
		fmt.Sprintf("ticks %d  resets %d", e.ctrl.Ticks(), e.ctrl.Resets()),
		fmt.Sprintf("acc %.4fs  alpha %.2f", e.ctrl.Accumulator(), e.ctrl.Alpha()),
		"F5 play/pause  F6 step  F7 reset  Esc quit",
	)
	return nil
}
