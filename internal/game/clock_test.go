package game

import (
	"math"
	"testing"
)

// TestFrameClockScale verifies scale factors and clamping across a stall.
func TestFrameClockScale(t *testing.T) {
	c := NewFrameClock(100)

	tests := []struct {
		ts    float64
		scale float64
	}{
		{0, 1},
		{16, 0.96},
		{1000, 6.0}, // 984ms stall clamps to 100ms
		{1016, 0.96},
	}

	for _, tt := range tests {
		got := c.Tick(tt.ts)
		if math.Abs(got-tt.scale) > 1e-9 {
			t.Errorf("Tick(%v): expected scale %v, got %v", tt.ts, tt.scale, got)
		}
	}
	if c.Now() != 132 {
		t.Errorf("Expected 132ms of simulated time, got %v", c.Now())
	}
}

// TestFrameClockBackwards verifies a timestamp going backwards yields no time.
func TestFrameClockBackwards(t *testing.T) {
	c := NewFrameClock(100)
	c.Tick(500)
	c.Tick(516)

	if got := c.Tick(400); got != 0 {
		t.Errorf("Expected scale 0 for backwards timestamp, got %v", got)
	}
	if c.Now() != 16 {
		t.Errorf("Expected 16ms simulated, got %v", c.Now())
	}
}

// TestFrameClockReanchor verifies that a re-anchor skips the gap.
func TestFrameClockReanchor(t *testing.T) {
	c := NewFrameClock(100)
	c.Tick(0)
	c.Tick(16)
	c.Reanchor(60_000)

	got := c.Tick(60_016)
	if math.Abs(got-0.96) > 1e-9 {
		t.Errorf("Expected scale 0.96 after re-anchor, got %v", got)
	}
	if c.Now() != 32 {
		t.Errorf("Expected 32ms simulated, got %v", c.Now())
	}
}

// TestFrameClockReset verifies Reset forgets elapsed time and the anchor.
func TestFrameClockReset(t *testing.T) {
	c := NewFrameClock(100)
	c.Tick(0)
	c.Tick(50)
	c.Reset()

	if c.Now() != 0 {
		t.Errorf("Expected 0 after reset, got %v", c.Now())
	}
	if got := c.Tick(9999); got != 1 {
		t.Errorf("Expected first tick after reset to return 1, got %v", got)
	}
}
