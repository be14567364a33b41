package systems

import (
	"fmt"

	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
)

// HUD shows frame telemetry while the recorder's HUD flag is on: FPS now and
// averaged, the measured frame time, and last frame's per-subsystem cost,
// most expensive first.
type HUD struct {
	rec     *core.Recorder
	overlay *overlay.Text
	extra   func() []string
}

// NewHUD creates the telemetry panel. extra, when set, appends scene lines.
func NewHUD(rec *core.Recorder, text *overlay.Text, extra func() []string) *HUD {
	return &HUD{rec: rec, overlay: text, extra: extra}
}

func (h *HUD) Name() string      { return "hud" }
func (h *HUD) Initialize() error { return nil }
func (h *HUD) Shutdown() error   { return nil }

// Draw submits the HUD panel.
func (h *HUD) Draw() error {
	if !h.rec.HUDVisible() {
		return nil
	}
	h.overlay.Panel("HUD", h.Lines()...)
	return nil
}

// Lines formats the HUD contents.
func (h *HUD) Lines() []string {
	lines := []string{
		fmt.Sprintf("fps %6.1f  avg %6.1f (%d)", h.rec.FPS(), h.rec.FPSAvg(), h.rec.Window()),
		fmt.Sprintf("dt  %6.2fms", h.rec.LastDt()*1000),
	}
	for _, t := range h.rec.SortedLast() {
		lines = append(lines, fmt.Sprintf("%-10s %7.3fms", t.Name, t.Ms))
	}
	if h.extra != nil {
		lines = append(lines, h.extra()...)
	}
	return lines
}
