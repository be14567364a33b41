package systems

import (
	"strings"
	"testing"

	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
)

func TestRendererDrawsWorld(t *testing.T) {
	w := NewWorld(100, 50, 8)
	w.Bodies = []Body{{Pos: core.V(50, 10), Radius: 3, Color: core.ColorBrightRed}}
	w.Particles.Add(Particle{Pos: core.V(20, 20), Size: 2, Life: 1, Color: core.ColorCyan})

	screen := core.NewScreen(10, 5)
	screen.SetViewport(100, 50)
	r := NewRenderer(w, screen)
	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}

	if c := screen.CellAt(5, 1); c.Color != core.ColorBrightRed {
		t.Errorf("body cell = %+v, expected red", c)
	}
	if c := screen.CellAt(2, 2); c.Color != core.ColorCyan {
		t.Errorf("particle cell = %+v, expected cyan", c)
	}
	if c := screen.CellAt(0, 4); c.Color != core.ColorEarth {
		t.Errorf("floor cell = %+v, expected earth", c)
	}
	if c := screen.CellAt(8, 0); c.Color != core.ColorSky || c.Rune != ' ' {
		t.Errorf("empty cell = %+v, expected sky", c)
	}
}

func TestRendererScalesTerrain(t *testing.T) {
	w := NewWorld(32, 20, 8)
	w.Terrain = []float64{10, 10, 10, 10, 10, 10}

	screen := core.NewScreen(8, 10)
	screen.SetViewport(64, 40) // 2x the world
	NewRenderer(w, screen).Draw()

	if c := screen.CellAt(0, 9); c.Color != core.ColorEarth {
		t.Errorf("terrain bottom = %+v", c)
	}
	if c := screen.CellAt(0, 2); c.Color != core.ColorSky {
		t.Errorf("above terrain = %+v", c)
	}
}

func TestHUDHiddenSubmitsNothing(t *testing.T) {
	rec := core.NewRecorder(0)
	text := overlay.NewText(nil)
	h := NewHUD(rec, text, nil)

	text.BeginOverlayFrame()
	h.Draw()
	text.EndOverlayFrame()
	if len(text.Panels()) != 0 {
		t.Error("hidden HUD submitted a panel")
	}
}

func TestHUDShowsTimings(t *testing.T) {
	rec := core.NewRecorder(0)
	rec.SetHUDVisible(true)
	rec.Record("physics", 2)
	rec.Record("renderer", 5)
	rec.FrameStart(0.02, false)

	text := overlay.NewText(nil)
	h := NewHUD(rec, text, func() []string { return []string{"bodies 3"} })

	text.BeginOverlayFrame()
	h.Draw()
	text.EndOverlayFrame()

	panels := text.Panels()
	if len(panels) != 1 || panels[0].Title != "HUD" {
		t.Fatalf("panels = %+v", panels)
	}
	lines := panels[0].Lines
	if !strings.Contains(lines[0], "50.0") {
		t.Errorf("fps line = %q, expected 50.0", lines[0])
	}
	if !strings.Contains(lines[1], "20.00ms") {
		t.Errorf("dt line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "renderer") || !strings.HasPrefix(lines[3], "physics") {
		t.Errorf("timings not sorted by cost: %q", lines[2:4])
	}
	if lines[len(lines)-1] != "bodies 3" {
		t.Errorf("extra line missing: %q", lines)
	}
}
