package game

// RefFrameMs is the duration of one reference frame (60 Hz). All per-tick
// motion is expressed in "pixels per reference frame" and scaled by the
// clock's factor.
const RefFrameMs = 1000.0 / 60.0

// FrameClock converts wall-clock timestamps into a clamped scale factor
// and accumulates simulation time. Simulation time only advances by the
// clamped delta, so stalls and pauses never leak into timers.
type FrameClock struct {
	maxDeltaMs float64
	last       float64
	anchored   bool
	elapsedMs  float64
	lastDelta  float64
}

// NewFrameClock creates a clock that clamps deltas to maxDeltaMs.
func NewFrameClock(maxDeltaMs float64) *FrameClock {
	if maxDeltaMs <= 0 {
		maxDeltaMs = 100
	}
	return &FrameClock{maxDeltaMs: maxDeltaMs}
}

// Tick consumes a timestamp and returns the scale factor for this frame.
// The first tick (and the first tick after Reset) returns 1 and leaves
// simulation time untouched.
func (c *FrameClock) Tick(timestampMs float64) float64 {
	if !c.anchored {
		c.last = timestampMs
		c.anchored = true
		c.lastDelta = 0
		return 1
	}

	delta := timestampMs - c.last
	c.last = timestampMs
	if delta < 0 {
		delta = 0
	}
	if delta > c.maxDeltaMs {
		delta = c.maxDeltaMs
	}

	c.lastDelta = delta
	c.elapsedMs += delta
	return delta / RefFrameMs
}

// Reanchor stores ts as the previous timestamp without producing a delta.
// Called on resume so the paused interval is never simulated.
func (c *FrameClock) Reanchor(timestampMs float64) {
	c.last = timestampMs
	c.anchored = true
}

// Reset forgets the anchor and the accumulated simulation time.
func (c *FrameClock) Reset() {
	*c = FrameClock{maxDeltaMs: c.maxDeltaMs}
}

// Now returns accumulated simulation time in milliseconds.
func (c *FrameClock) Now() float64 { return c.elapsedMs }

// LastDeltaMs returns the clamped delta applied by the most recent tick.
func (c *FrameClock) LastDeltaMs() float64 { return c.lastDelta }
