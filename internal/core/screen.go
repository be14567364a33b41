package core

import (
	"math"
	"strings"
)

// Cell is one character of a Screen.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' '}

// Screen is a 2D character buffer. It implements Canvas by mapping a virtual
// pixel viewport onto the cell grid, so the same renderer can draw to a GL
// window or to text for headless runs.
type Screen struct {
	width  int
	height int
	cells  [][]Cell

	// Virtual viewport in pixels reported by Size.
	pxW, pxH   int
	background Color
}

// NewScreen creates a screen buffer with the given dimensions in cells.
// The viewport defaults to one pixel per cell.
func NewScreen(width, height int) *Screen {
	s := &Screen{
		width:  width,
		height: height,
		pxW:    width,
		pxH:    height,
	}
	s.allocate()
	s.Clear(ColorDefault)
	return s
}

func (s *Screen) allocate() {
	s.cells = make([][]Cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]Cell, s.width)
	}
}

// Width returns the screen width in characters.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in characters.
func (s *Screen) Height() int {
	return s.height
}

// SetViewport sets the pixel size reported by Size and used to scale FillRect.
// Non-positive values fall back to the cell dimensions.
func (s *Screen) SetViewport(w, h int) {
	if w <= 0 {
		w = s.width
	}
	if h <= 0 {
		h = s.height
	}
	s.pxW, s.pxH = w, h
}

// Size implements Canvas.
func (s *Screen) Size() (int, int) {
	return s.pxW, s.pxH
}

// Background returns the color of the latest Clear.
func (s *Screen) Background() Color {
	return s.background
}

// Clear implements Canvas: every cell becomes a blank of color c.
func (s *Screen) Clear(c Color) {
	s.background = c
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = Cell{Rune: ' ', Color: c}
		}
	}
}

// FillRect implements Canvas. Any cell the pixel rectangle touches is filled;
// a non-empty rectangle always covers at least one cell.
func (s *Screen) FillRect(r Rect, c Color) {
	if r.Empty() || s.pxW <= 0 || s.pxH <= 0 {
		return
	}
	sx := float64(s.width) / float64(s.pxW)
	sy := float64(s.height) / float64(s.pxH)

	x0 := int(math.Floor(r.X * sx))
	y0 := int(math.Floor(r.Y * sy))
	x1 := max(int(math.Ceil(r.Right()*sx)), x0+1)
	y1 := max(int(math.Ceil(r.Bottom()*sy)), y0+1)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.SetCell(x, y, Cell{Rune: '█', Color: c})
		}
	}
}

// Resize changes the cell dimensions, preserving content where possible.
// The viewport is left unchanged.
func (s *Screen) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}

	oldCells := s.cells
	oldW, oldH := s.width, s.height

	s.width = width
	s.height = height
	s.allocate()
	s.Clear(s.background)

	copyW := min(oldW, width)
	copyH := min(oldH, height)
	for y := 0; y < copyH; y++ {
		copy(s.cells[y][:copyW], oldCells[y][:copyW])
	}
}

// Fill fills the entire screen with the given rune, keeping colors.
func (s *Screen) Fill(r rune) {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x].Rune = r
		}
	}
}

// Set places a rune at the given cell, keeping its color.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) Set(x, y int, r rune) {
	if !s.inBounds(x, y) {
		return
	}
	s.cells[y][x].Rune = r
}

// SetCell replaces a whole cell. Out-of-bounds coordinates are ignored.
func (s *Screen) SetCell(x, y int, c Cell) {
	if !s.inBounds(x, y) {
		return
	}
	s.cells[y][x] = c
}

// Get returns the rune at the given position, or space when out of bounds.
func (s *Screen) Get(x, y int) rune {
	return s.CellAt(x, y).Rune
}

// CellAt returns the cell at the given position, or a blank when out of bounds.
func (s *Screen) CellAt(x, y int) Cell {
	if !s.inBounds(x, y) {
		return blank
	}
	return s.cells[y][x]
}

func (s *Screen) inBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// DrawText writes a string horizontally starting at (x, y).
// Characters that extend beyond screen bounds are clipped.
func (s *Screen) DrawText(x, y int, text string) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r)
		i++
	}
}

// DrawBox draws a box outline using box-drawing characters.
func (s *Screen) DrawBox(x, y, w, h int) {
	right, bottom := x+w-1, y+h-1

	s.Set(x, y, '┌')
	s.Set(right, y, '┐')
	s.Set(x, bottom, '└')
	s.Set(right, bottom, '┘')

	for i := x + 1; i < right; i++ {
		s.Set(i, y, '─')
		s.Set(i, bottom, '─')
	}
	for j := y + 1; j < bottom; j++ {
		s.Set(x, j, '│')
		s.Set(right, j, '│')
	}
}

// String converts the screen buffer to plain text, rows joined with newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)

	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < s.width; x++ {
			sb.WriteRune(s.cells[y][x].Rune)
		}
	}
	return sb.String()
}

// Row returns the specified row as a string; out-of-range rows are blank.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	var sb strings.Builder
	for x := 0; x < s.width; x++ {
		sb.WriteRune(s.cells[y][x].Rune)
	}
	return sb.String()
}

// Runs calls fn for each maximal run of same-colored cells in row y, left to right.
// Renderers use it to emit one style per run instead of one per cell.
func (s *Screen) Runs(y int, fn func(c Color, text string)) {
	if y < 0 || y >= s.height || s.width == 0 {
		return
	}
	row := s.cells[y]
	start := 0
	for x := 1; x <= len(row); x++ {
		if x == len(row) || row[x].Color != row[start].Color {
			var sb strings.Builder
			for _, c := range row[start:x] {
				sb.WriteRune(c.Rune)
			}
			fn(row[start].Color, sb.String())
			start = x
		}
	}
}
