package desktop

import (
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/vovakirdan/sandbox/internal/core"
)

// Canvas draws with immediate-mode GL in framebuffer pixels.
type Canvas struct {
	host *Host
}

func (c *Canvas) Size() (int, int) { return c.host.ViewportSize() }

func (c *Canvas) Clear(col core.Color) {
	r, g, b := col.RGB()
	gl.ClearColor(r, g, b, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (c *Canvas) FillRect(rc core.Rect, col core.Color) {
	if rc.Empty() {
		return
	}
	r, g, b := col.RGB()
	gl.Color3f(r, g, b)
	gl.Rectd(rc.X, rc.Y, rc.Right(), rc.Bottom())
}

var _ core.Canvas = (*Canvas)(nil)
