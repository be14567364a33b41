// Package overlay is the immediate-mode text overlay shared by every host.
// Subsystems submit panels from Draw; the frame loop brackets each draw pass with
// BeginOverlayFrame/EndOverlayFrame, and the composed frame goes to a sink.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel is one titled block of overlay lines.
type Panel struct {
	Title string
	Lines []string
}

// Sink receives each composed overlay frame along with the panels it was built from.
type Sink func(frame string, panels []Panel)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
)

// Text collects panels between BeginOverlayFrame and EndOverlayFrame.
// It implements core.OverlayHost and is used only from the loop goroutine.
type Text struct {
	sink    Sink
	panels  []Panel
	open    bool
	last    string
	frames  uint64
	dropped int
}

// NewText creates an overlay that passes each composed frame to sink.
// A nil sink keeps frames only for Last.
func NewText(sink Sink) *Text {
	return &Text{sink: sink}
}

// BeginOverlayFrame discards the previous frame's panels.
func (t *Text) BeginOverlayFrame() {
	t.panels = t.panels[:0]
	t.open = true
}

// Panel submits a panel for the current frame. Panels submitted outside an
// overlay frame are dropped and counted.
func (t *Text) Panel(title string, lines ...string) {
	if !t.open {
		t.dropped++
		return
	}
	t.panels = append(t.panels, Panel{Title: title, Lines: append([]string(nil), lines...)})
}

// EndOverlayFrame composes the submitted panels and hands them to the sink.
func (t *Text) EndOverlayFrame() {
	t.open = false
	t.frames++
	t.last = compose(t.panels)
	if t.sink != nil {
		t.sink(t.last, t.panels)
	}
}

// Last returns the most recently composed frame.
func (t *Text) Last() string { return t.last }

// Panels returns a copy of the panels submitted in the current or last frame.
func (t *Text) Panels() []Panel {
	return append([]Panel(nil), t.panels...)
}

// Frames returns how many overlay frames have been ended.
func (t *Text) Frames() uint64 { return t.frames }

// Dropped returns how many panels were submitted outside an overlay frame.
func (t *Text) Dropped() int { return t.dropped }

func compose(panels []Panel) string {
	if len(panels) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(panels))
	for _, p := range panels {
		body := titleStyle.Render(p.Title)
		if len(p.Lines) > 0 {
			body += "\n" + strings.Join(p.Lines, "\n")
		}
		boxes = append(boxes, panelStyle.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// Plain flattens panels into "title: line | line" rows, one per panel.
// The desktop host uses it for the window title and log lines.
func Plain(panels []Panel) string {
	rows := make([]string, 0, len(panels))
	for _, p := range panels {
		row := p.Title
		if len(p.Lines) > 0 {
			row += ": " + strings.Join(p.Lines, " | ")
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}
