package core

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// journal collects lifecycle calls across subsystems and hosts in call order.
type journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
	j.mu.Unlock()
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

func (j *journal) reset() {
	j.mu.Lock()
	j.calls = nil
	j.mu.Unlock()
}

func (j *journal) count(call string) int {
	n := 0
	for _, c := range j.all() {
		if c == call {
			n++
		}
	}
	return n
}

// probe is a Subsystem that records every call.
type probe struct {
	name string
	j    *journal

	initErr   error
	updateErr error
	drawErr   error
	shutErr   error
	onUpdate  func(dt float64)
	onDraw    func()
	updates   int
	draws     int
	resets    int
	lastDt    float64
	shutdowns int
}

func newProbe(name string, j *journal) *probe {
	return &probe{name: name, j: j}
}

func (p *probe) Name() string { return p.name }

func (p *probe) Initialize() error {
	p.j.add("init %s", p.name)
	return p.initErr
}

func (p *probe) Update(dt float64) error {
	p.updates++
	p.lastDt = dt
	p.j.add("update %s", p.name)
	if p.onUpdate != nil {
		p.onUpdate(dt)
	}
	return p.updateErr
}

func (p *probe) Draw() error {
	p.draws++
	p.j.add("draw %s", p.name)
	if p.onDraw != nil {
		p.onDraw()
	}
	return p.drawErr
}

func (p *probe) Reset() {
	p.resets++
	p.j.add("reset %s", p.name)
}

func (p *probe) Shutdown() error {
	p.shutdowns++
	p.j.add("shutdown %s", p.name)
	return p.shutErr
}

// lifecycleOnly implements neither Updater nor Drawer.
type lifecycleOnly struct{ name string }

func (l lifecycleOnly) Name() string      { return l.name }
func (l lifecycleOnly) Initialize() error { return nil }
func (l lifecycleOnly) Shutdown() error   { return nil }

// frameInput is one frame of scripted raw device state.
type frameInput struct {
	keys    []int
	buttons []int
	x, y    float64
}

// fakeHost is a scripted GraphicsHost and OverlayHost. Each PollEvents advances
// the clock by the next scripted delta and loads the next scripted input.
type fakeHost struct {
	j      *journal
	clock  *ManualClock
	deltas []float64
	inputs []frameInput

	// closeAfter makes ShouldClose true once this many frames were presented; 0 means
	// close when the delta script runs out.
	closeAfter int

	frame    int
	polled   int
	presents int
	keys     map[int]bool
	buttons  map[int]bool
	x, y     float64

	pollErr    error
	presentErr error
}

func newFakeHost(j *journal, clock *ManualClock, deltas ...float64) *fakeHost {
	return &fakeHost{j: j, clock: clock, deltas: deltas}
}

func (h *fakeHost) PollEvents() error {
	h.j.add("poll")
	if h.pollErr != nil {
		return h.pollErr
	}
	if h.polled < len(h.deltas) {
		h.clock.AdvanceSeconds(h.deltas[h.polled])
	}
	h.keys, h.buttons = map[int]bool{}, map[int]bool{}
	if h.polled < len(h.inputs) {
		in := h.inputs[h.polled]
		for _, k := range in.keys {
			h.keys[k] = true
		}
		for _, b := range in.buttons {
			h.buttons[b] = true
		}
		h.x, h.y = in.x, in.y
	}
	h.polled++
	return nil
}

func (h *fakeHost) ShouldClose() bool {
	if h.closeAfter > 0 {
		return h.presents >= h.closeAfter
	}
	return h.presents >= len(h.deltas)
}

func (h *fakeHost) ViewportSize() (int, int) { return 320, 200 }

func (h *fakeHost) BeginFrame() error {
	h.j.add("begin")
	return nil
}

func (h *fakeHost) EndFrame() error {
	h.j.add("end")
	return nil
}

func (h *fakeHost) Present() error {
	h.j.add("present")
	if h.presentErr != nil {
		return h.presentErr
	}
	h.presents++
	return nil
}

func (h *fakeHost) BeginOverlayFrame() { h.j.add("overlay begin") }
func (h *fakeHost) EndOverlayFrame()   { h.j.add("overlay end") }

func (h *fakeHost) KeyDown(i int) bool             { return h.keys[i] }
func (h *fakeHost) ButtonDown(i int) bool          { return h.buttons[i] }
func (h *fakeHost) CursorPosition() (x, y float64) { return h.x, h.y }

var errBoom = errors.New("boom")

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
