package core

// Sizes of the fixed input index spaces. Key indices follow GLFW key codes and
// button indices follow GLFW mouse buttons, so the desktop host passes raw codes
// straight through. Hosts without a given code simply never report it held.
const (
	KeyCount    = 512
	ButtonCount = 8
)

// RawInput is the device state a host exposes once per frame.
type RawInput interface {
	KeyDown(i int) bool
	ButtonDown(i int) bool
	CursorPosition() (x, y float64)
}

// edgeTable holds held/pressed/released flags for one index space.
type edgeTable struct {
	held     []bool
	pressed  []bool
	released []bool
}

func newEdgeTable(n int) edgeTable {
	return edgeTable{
		held:     make([]bool, n),
		pressed:  make([]bool, n),
		released: make([]bool, n),
	}
}

// refresh derives edges from raw against the previous held state.
// Indices past len(raw) read as up.
func (t *edgeTable) refresh(raw []bool) {
	for i := range t.held {
		down := i < len(raw) && raw[i]
		was := t.held[i]
		t.pressed[i] = down && !was
		t.released[i] = !down && was
		t.held[i] = down
	}
}

// prime records raw as held without producing edges.
func (t *edgeTable) prime(raw []bool) {
	for i := range t.held {
		t.held[i] = i < len(raw) && raw[i]
		t.pressed[i] = false
		t.released[i] = false
	}
}

func lookup(table []bool, i int) bool {
	if i < 0 || i >= len(table) {
		return false
	}
	return table[i]
}

// Snapshot is the per-frame view of keyboard and mouse state.
// Edges are valid until the next Refresh; the frame loop refreshes exactly once
// per frame so every subsystem sees the same edges for the whole frame.
type Snapshot struct {
	keys    edgeTable
	buttons edgeTable
	x, y    float64

	rawKeys    []bool
	rawButtons []bool
}

// NewSnapshot creates a snapshot with every key and button up.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		keys:       newEdgeTable(KeyCount),
		buttons:    newEdgeTable(ButtonCount),
		rawKeys:    make([]bool, KeyCount),
		rawButtons: make([]bool, ButtonCount),
	}
}

// Refresh collapses raw device state into held/pressed/released edges.
func (s *Snapshot) Refresh(keys, buttons []bool, x, y float64) {
	s.keys.refresh(keys)
	s.buttons.refresh(buttons)
	s.x, s.y = x, y
}

// Sample reads the full index space from src and refreshes.
func (s *Snapshot) Sample(src RawInput) {
	s.read(src)
	x, y := src.CursorPosition()
	s.Refresh(s.rawKeys, s.rawButtons, x, y)
}

// Prime reads src as the baseline held state without reporting edges, so input
// held while the process starts is not seen as a fresh press.
func (s *Snapshot) Prime(src RawInput) {
	s.read(src)
	s.keys.prime(s.rawKeys)
	s.buttons.prime(s.rawButtons)
	s.x, s.y = src.CursorPosition()
}

func (s *Snapshot) read(src RawInput) {
	for i := range s.rawKeys {
		s.rawKeys[i] = src.KeyDown(i)
	}
	for i := range s.rawButtons {
		s.rawButtons[i] = src.ButtonDown(i)
	}
}

// KeyPressed reports whether key i went down this frame.
func (s *Snapshot) KeyPressed(i int) bool { return lookup(s.keys.pressed, i) }

// KeyHeld reports whether key i is down this frame.
func (s *Snapshot) KeyHeld(i int) bool { return lookup(s.keys.held, i) }

// KeyReleased reports whether key i went up this frame.
func (s *Snapshot) KeyReleased(i int) bool { return lookup(s.keys.released, i) }

// ButtonPressed reports whether mouse button i went down this frame.
func (s *Snapshot) ButtonPressed(i int) bool { return lookup(s.buttons.pressed, i) }

// ButtonHeld reports whether mouse button i is down this frame.
func (s *Snapshot) ButtonHeld(i int) bool { return lookup(s.buttons.held, i) }

// ButtonReleased reports whether mouse button i went up this frame.
func (s *Snapshot) ButtonReleased(i int) bool { return lookup(s.buttons.released, i) }

// Cursor returns the cursor position, in window pixels, sampled at the last refresh.
func (s *Snapshot) Cursor() (x, y float64) {
	return s.x, s.y
}
