// Package desktop is the windowed graphics host: a GLFW window with a legacy
// OpenGL 2.1 context, raw key and mouse pass-through, and vsync'd presents.
package desktop

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
)

// GLFW and GL calls must come from the thread that created the context.
// Locking in init pins the main goroutine to the main OS thread.
func init() {
	runtime.LockOSThread()
}

const (
	titleInterval = 250 * time.Millisecond
	logInterval   = 5 * time.Second
)

// Host implements core.GraphicsHost over a GLFW window.
type Host struct {
	window *glfw.Window
	canvas *Canvas
	title  string
	logger *log.Logger

	lastTitle time.Time
	lastLog   time.Time
	closed    bool
}

// Open creates the window and GL context described by cfg. Call Close when done.
func Open(cfg config.WindowConfig, logger *log.Logger) (*Host, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor == nil {
			logger.Warn("no monitor found, opening a window instead of fullscreen")
		}
	}
	width, height := windowSize(cfg, videoMode(monitor))

	window, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	h := &Host{window: window, title: cfg.Title, logger: logger}
	h.canvas = &Canvas{host: h}
	logger.Info("window opened", "size", fmt.Sprintf("%dx%d", width, height), "fullscreen", monitor != nil,
		"vsync", cfg.VSync, "gl", gl.GoStr(gl.GetString(gl.VERSION)))
	return h, nil
}

// Close destroys the window and terminates GLFW. Safe to call twice.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.window.Destroy()
	glfw.Terminate()
}

// Canvas returns the GL drawing surface.
func (h *Host) Canvas() *Canvas { return h.canvas }

// Sink returns an overlay sink that mirrors the overlay in the window title and,
// every few seconds, in the debug log.
func (h *Host) Sink(now func() time.Time) overlay.Sink {
	if now == nil {
		now = time.Now
	}
	return func(_ string, panels []overlay.Panel) {
		t := now()
		if t.Sub(h.lastTitle) < titleInterval {
			return
		}
		h.lastTitle = t
		h.window.SetTitle(windowTitle(h.title, panels))

		if len(panels) > 0 && t.Sub(h.lastLog) >= logInterval {
			h.lastLog = t
			h.logger.Debug("overlay", "text", overlay.Plain(panels))
		}
	}
}

func (h *Host) PollEvents() error {
	glfw.PollEvents()
	return nil
}

func (h *Host) ShouldClose() bool { return h.window.ShouldClose() }

// ViewportSize returns the framebuffer size in pixels.
func (h *Host) ViewportSize() (int, int) { return h.window.GetFramebufferSize() }

// BeginFrame sets up a pixel-space orthographic projection, origin top-left.
func (h *Host) BeginFrame() error {
	w, ht := h.ViewportSize()
	gl.Viewport(0, 0, int32(w), int32(ht))
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(w), float64(ht), 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	return nil
}

// EndFrame reports any GL error raised while drawing.
func (h *Host) EndFrame() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%04x", code)
	}
	return nil
}

func (h *Host) Present() error {
	h.window.SwapBuffers()
	return nil
}

// KeyDown reads a GLFW key code. Codes GLFW does not define read as up.
func (h *Host) KeyDown(i int) bool {
	if !validKey(i) {
		return false
	}
	return h.window.GetKey(glfw.Key(i)) == glfw.Press
}

func (h *Host) ButtonDown(i int) bool {
	if i < 0 || i > int(glfw.MouseButtonLast) {
		return false
	}
	return h.window.GetMouseButton(glfw.MouseButton(i)) == glfw.Press
}

// CursorPosition returns the cursor in framebuffer pixels.
func (h *Host) CursorPosition() (float64, float64) {
	x, y := h.window.GetCursorPos()
	ww, wh := h.window.GetSize()
	fw, fh := h.window.GetFramebufferSize()
	return scaleCursor(x, y, ww, wh, fw, fh)
}

func videoMode(m *glfw.Monitor) *glfw.VidMode {
	if m == nil {
		return nil
	}
	return m.GetVideoMode()
}

// windowSize picks the monitor's mode for fullscreen and the configured size otherwise.
func windowSize(cfg config.WindowConfig, mode *glfw.VidMode) (int, int) {
	if cfg.Fullscreen && mode != nil {
		return mode.Width, mode.Height
	}
	return cfg.Width, cfg.Height
}

func validKey(i int) bool {
	return i >= int(glfw.KeySpace) && i <= int(glfw.KeyLast)
}

// scaleCursor converts window coordinates to framebuffer pixels on HiDPI displays.
func scaleCursor(x, y float64, winW, winH, fbW, fbH int) (float64, float64) {
	if winW <= 0 || winH <= 0 {
		return x, y
	}
	return x * float64(fbW) / float64(winW), y * float64(fbH) / float64(winH)
}

func windowTitle(base string, panels []overlay.Panel) string {
	for _, p := range panels {
		if p.Title == "HUD" && len(p.Lines) > 0 {
			return base + " | " + p.Lines[0]
		}
	}
	return base
}

var _ core.GraphicsHost = (*Host)(nil)
