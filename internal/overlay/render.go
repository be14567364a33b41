package overlay

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vovakirdan/sandbox/internal/core"
)

// styleCache maps palette entries to lipgloss styles, built lazily.
var styleCache = map[core.Color]lipgloss.Style{}

func colorStyle(c core.Color) lipgloss.Style {
	if st, ok := styleCache[c]; ok {
		return st
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(int(c.ANSI()))))
	styleCache[c] = st
	return st
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells with the same color share one style to keep escape sequences short.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		s.Runs(y, func(c core.Color, text string) {
			if strings.TrimSpace(text) == "" {
				sb.WriteString(text)
				return
			}
			sb.WriteString(colorStyle(c).Render(text))
		})
	}
	return sb.String()
}
