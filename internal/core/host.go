package core

// GraphicsHost is the window/graphics collaborator the loop drives each frame.
// PollEvents may block briefly on the OS message pump and Present may block on
// vsync; nothing else in a frame blocks.
type GraphicsHost interface {
	RawInput

	PollEvents() error
	ShouldClose() bool
	ViewportSize() (width, height int)

	BeginFrame() error
	EndFrame() error
	Present() error
}

// OverlayHost is an immediate-mode UI layer. Its frame strictly brackets the draw
// pass so subsystems can submit overlay commands from Draw.
type OverlayHost interface {
	BeginOverlayFrame()
	EndOverlayFrame()
}

// NopOverlay is an OverlayHost that does nothing. The loop still brackets the
// draw pass with it so draw order does not depend on whether an overlay exists.
type NopOverlay struct{}

func (NopOverlay) BeginOverlayFrame() {}
func (NopOverlay) EndOverlayFrame()   {}

// Canvas is the minimal 2D drawing surface subsystems render into.
// Coordinates are in viewport pixels, origin top-left.
type Canvas interface {
	Size() (width, height int)
	Clear(c Color)
	FillRect(r Rect, c Color)
}
