package game

// Overlaps reports whether two circles overlap by more than edge contact:
// squared centre distance must be below (ra+rb)^2 * tolerance. The test is
// symmetric in its arguments.
func Overlaps(ax, ay, ar, bx, by, br, tolerance float64) bool {
	dx := ax - bx
	dy := ay - by
	r := ar + br
	return dx*dx+dy*dy < r*r*tolerance
}

// Collides applies Overlaps to two bodies.
func Collides(a, b *Body, tolerance float64) bool {
	return Overlaps(a.X, a.Y, a.Radius, b.X, b.Y, b.Radius, tolerance)
}

// Grid ids carry the owning pool in the top bit.
const obstacleTag = uint32(1) << 31

// buildBroadphase files hazards and obstacles into the grid for the
// projectile pass.
func (e *Engine) buildBroadphase() {
	e.grid.Reset()
	e.world.Collectibles.Each(func(h Handle, c *Collectible) bool {
		if c.Kind() == KindHazard {
			e.grid.Insert(h.Index, c.X, c.Y)
		}
		return true
	})
	e.world.Obstacles.Each(func(h Handle, o *Obstacle) bool {
		e.grid.Insert(h.Index|obstacleTag, o.X, o.Y)
		return true
	})
}

// nearestHazard returns the closest live hazard to (x, y).
func (e *Engine) nearestHazard(x, y float64) (*Collectible, bool) {
	var best *Collectible
	bestD := 0.0
	e.world.Collectibles.Each(func(_ Handle, c *Collectible) bool {
		if c.Kind() != KindHazard || e.outOfBounds(c.X, c.Y, 0) {
			return true
		}
		dx, dy := c.X-x, c.Y-y
		d := dx*dx + dy*dy
		if best == nil || d < bestD {
			best, bestD = c, d
		}
		return true
	})
	return best, best != nil
}

// nearestPrimary returns the handle of the closest live primary to (x, y).
func (e *Engine) nearestPrimary(x, y float64) (Handle, bool) {
	found := false
	best := NoHandle
	bestD := 0.0
	e.world.Collectibles.Each(func(h Handle, c *Collectible) bool {
		if c.Kind() != KindPrimary {
			return true
		}
		dx, dy := c.X-x, c.Y-y
		d := dx*dx + dy*dy
		if !found || d < bestD {
			best, bestD, found = h, d, true
		}
		return true
	})
	return best, found
}

// outOfBounds reports whether (x, y) lies beyond the playfield by more than margin.
func (e *Engine) outOfBounds(x, y, margin float64) bool {
	return x < -margin || y < -margin || x > e.cfg.Width+margin || y > e.cfg.Height+margin
}
