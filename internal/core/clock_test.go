package core

import (
	"testing"
	"time"
)

func TestDeltaSinceNeverNegative(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	if d := DeltaSince(c, start); d != 0 {
		t.Errorf("stalled clock: DeltaSince = %v, expected 0", d)
	}
	if d := DeltaSince(c, start.Add(time.Second)); d != 0 {
		t.Errorf("instant in the future: DeltaSince = %v, expected 0", d)
	}

	c.AdvanceSeconds(0.25)
	if d := DeltaSince(c, start); d != 0.25 {
		t.Errorf("DeltaSince = %v, expected 0.25", d)
	}
}

func TestManualClockIgnoresNegativeAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	c.Advance(-time.Second)
	c.AdvanceSeconds(-1)
	if !c.Now().Equal(start) {
		t.Errorf("clock moved backwards to %v", c.Now())
	}

	c.Advance(16 * time.Millisecond)
	if got := c.Now().Sub(start); got != 16*time.Millisecond {
		t.Errorf("Advance: elapsed %v, expected 16ms", got)
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	var c SystemClock
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Errorf("system clock went backwards: %v then %v", a, b)
	}
}
