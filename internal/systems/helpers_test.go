package systems

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/core"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

// frameCounter stands in for the recorder's frame number.
type frameCounter struct{ n uint64 }

func (f *frameCounter) Frames() uint64 { return f.n }

// keys builds a raw key table with the given codes held.
func keys(codes ...int) []bool {
	t := make([]bool, core.KeyCount)
	for _, c := range codes {
		t[c] = true
	}
	return t
}

// buttons builds a raw button table with the given buttons held.
func buttons(codes ...int) []bool {
	t := make([]bool, core.ButtonCount)
	for _, c := range codes {
		t[c] = true
	}
	return t
}

func testWorld() *World {
	return NewWorld(320, 240, 64)
}
