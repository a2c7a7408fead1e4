package game

import "math"

// moveEntities integrates every pooled entity and applies the magnet and
// repel forces. Entities that drift off the playfield are released.
func (e *Engine) moveEntities(scale, dtMs float64) {
	st := &e.state
	pu := e.cfg.PowerUp
	px, py := e.player.X, e.player.Y
	magnet := st.HasPowerUp(PowerMagnet)
	repel := st.HasPowerUp(PowerRepel)

	e.world.Collectibles.Each(func(h Handle, c *Collectible) bool {
		c.X += c.VX * scale
		c.Y += c.VY * scale
		c.Rotation += 0.02 * scale

		switch p := c.Payload.(type) {
		case HazardPayload:
			if p.Zigzag {
				// Lateral oscillation perpendicular to the heading.
				sp := math.Hypot(c.VX, c.VY)
				if sp > 0 {
					off := p.Amplitude * math.Sin(p.Frequency*(st.Now-c.BornAt)+p.Phase)
					c.X += -c.VY / sp * off * scale
					c.Y += c.VX / sp * off * scale
				}
			}
			if repel {
				pushFrom(&c.Body, px, py, pu.RepelRadius, pu.RepelPush*scale)
			}
		case PrimaryPayload:
			if magnet {
				pushFrom(&c.Body, px, py, pu.MagnetRadius, -pu.MagnetPull*scale)
			}
		}

		if e.outOfBounds(c.X, c.Y, c.Radius*2) {
			e.world.ReleaseCollectible(h)
		}
		return true
	})

	e.world.Obstacles.Each(func(h Handle, o *Obstacle) bool {
		o.X += o.VX * scale
		o.Y += o.VY * scale
		o.Rotation += o.Spin * scale
		if e.outOfBounds(o.X, o.Y, o.Radius*2) {
			e.world.Obstacles.Release(h)
		}
		return true
	})

	moveShots(e, e.world.Shots, scale)
	moveShots(e, e.world.BossShots, scale)

	e.world.Particles.Each(func(h Handle, p *Particle) bool {
		p.X += p.VX * scale
		p.Y += p.VY * scale
		p.VX *= 0.96
		p.VY *= 0.96
		p.LifeMs -= dtMs
		if p.LifeMs <= 0 {
			e.world.Particles.Release(h)
		}
		return true
	})
}

func moveShots(e *Engine, pool *Pool[Projectile], scale float64) {
	pool.Each(func(h Handle, p *Projectile) bool {
		p.X += p.VX * scale
		p.Y += p.VY * scale
		if e.state.Now >= p.ExpiresAt || e.outOfBounds(p.X, p.Y, p.Radius) {
			pool.Release(h)
		}
		return true
	})
}

// pushFrom moves b radially away from (x, y) by amount when within radius.
// A negative amount pulls toward (x, y) without overshooting it.
func pushFrom(b *Body, x, y, radius, amount float64) {
	dx, dy := b.X-x, b.Y-y
	d := math.Hypot(dx, dy)
	if d == 0 || d > radius {
		return
	}
	if amount < 0 && -amount > d {
		amount = -d
	}
	b.X += dx / d * amount
	b.Y += dy / d * amount
}

// burst forwards a particle-burst request and mirrors it into the particle
// pool for snapshots. Particles that find no slot are skipped.
func (e *Engine) burst(x, y float64, effect Effect, speedMul float64) {
	e.out.burst(x, y, effect, speedMul)

	cc := e.cfg.Combat
	for i := 0; i < cc.ParticleBurstSize; i++ {
		_, p, ok := e.world.Particles.Acquire()
		if !ok {
			return
		}
		a := e.rng.Float64() * 2 * math.Pi
		v := (1 + e.rng.Float64()*2) * speedMul
		p.X, p.Y = x, y
		p.VX, p.VY = math.Cos(a)*v, math.Sin(a)*v
		p.Radius = 2 + e.rng.Float64()*2
		p.LifeMs = cc.ParticleLifetimeMs
		p.MaxLifeMs = cc.ParticleLifetimeMs
		p.Effect = effect
	}
}
