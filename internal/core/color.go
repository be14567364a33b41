package core

// Color is a palette index shared by the GL canvas and the ASCII screen.
// Values double as ANSI 256-color codes via ANSI.
type Color uint8

// Palette.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorBlack
	ColorSky
	ColorEarth

	colorCount
)

var palette = [colorCount]struct {
	r, g, b uint8
	ansi    uint8
}{
	ColorDefault:       {0xd0, 0xd0, 0xd0, 252},
	ColorRed:           {0xcd, 0x31, 0x31, 1},
	ColorGreen:         {0x0d, 0xbc, 0x79, 2},
	ColorYellow:        {0xe5, 0xe5, 0x10, 3},
	ColorBlue:          {0x24, 0x72, 0xc8, 4},
	ColorMagenta:       {0xbc, 0x3f, 0xbc, 5},
	ColorCyan:          {0x11, 0xa8, 0xcd, 6},
	ColorWhite:         {0xe5, 0xe5, 0xe5, 7},
	ColorBrightRed:     {0xf1, 0x4c, 0x4c, 9},
	ColorBrightGreen:   {0x23, 0xd1, 0x8b, 10},
	ColorBrightYellow:  {0xf5, 0xf5, 0x43, 11},
	ColorBrightBlue:    {0x3b, 0x8e, 0xea, 12},
	ColorBrightMagenta: {0xd6, 0x70, 0xd6, 13},
	ColorBrightCyan:    {0x29, 0xb8, 0xdb, 14},
	ColorBrightWhite:   {0xff, 0xff, 0xff, 15},
	ColorOrange:        {0xff, 0x87, 0x00, 208},
	ColorGray:          {0x80, 0x80, 0x80, 244},
	ColorBlack:         {0x10, 0x10, 0x14, 233},
	ColorSky:           {0x1c, 0x24, 0x38, 235},
	ColorEarth:         {0x6b, 0x4f, 0x2a, 94},
}

// RGB returns the color's components in [0,1] for GL.
// Unknown values map to the default color.
func (c Color) RGB() (r, g, b float32) {
	if c >= colorCount {
		c = ColorDefault
	}
	p := palette[c]
	return float32(p.r) / 255, float32(p.g) / 255, float32(p.b) / 255
}

// ANSI returns the 256-color terminal code for c.
func (c Color) ANSI() uint8 {
	if c >= colorCount {
		c = ColorDefault
	}
	return palette[c].ansi
}
