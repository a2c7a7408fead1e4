package game

import (
	"math"

	"go.uber.org/zap"
)

// resolve handles every contact of this tick, after movement. It stops
// early once the run ends.
func (e *Engine) resolve() {
	st := &e.state
	cfg := e.cfg
	tol := cfg.CollisionTolerance

	px, py := e.player.X, e.player.Y
	bodyR := e.player.CollisionRadius(cfg)
	pickupR := e.player.PickupRadius(cfg, st.HasPowerUp(PowerMagnet))

	// Player vs collectibles
	e.world.Collectibles.Each(func(h Handle, c *Collectible) bool {
		switch p := c.Payload.(type) {
		case PrimaryPayload:
			if Overlaps(px, py, pickupR, c.X, c.Y, c.Radius, tol) {
				e.collectPrimary(h, c)
			}
		case PowerUpPayload:
			if Overlaps(px, py, pickupR, c.X, c.Y, c.Radius, tol) {
				e.collectPowerUp(h, c, p.PowerUp)
			}
		case HazardPayload:
			if Overlaps(px, py, bodyR, c.X, c.Y, c.Radius, tol) {
				e.shieldGate(c.X, c.Y, "hazard", func() { e.world.ReleaseCollectible(h) })
			}
		}
		return !st.Over
	})
	if st.Over {
		return
	}

	// Clones collect their own target on the player's behalf
	e.world.Clones.Each(func(_ Handle, cl *Clone) bool {
		if cl.Fading {
			return true
		}
		if c, ok := e.world.Collectibles.Get(cl.Target); ok && c.Kind() == KindPrimary {
			if Collides(&cl.Body, &c.Body, tol) {
				e.collectPrimary(cl.Target, c)
				cl.Target = NoHandle
			}
		}
		return true
	})

	e.resolveShots()

	// Player vs obstacles
	e.world.Obstacles.Each(func(h Handle, o *Obstacle) bool {
		if Overlaps(px, py, bodyR, o.X, o.Y, o.Radius, tol) {
			e.shieldGate(o.X, o.Y, "obstacle", func() { e.world.Obstacles.Release(h) })
		}
		return !st.Over
	})
	if st.Over {
		return
	}

	// Boss bullets vs player
	e.world.BossShots.Each(func(h Handle, p *Projectile) bool {
		if Overlaps(px, py, bodyR, p.X, p.Y, p.Radius, tol) {
			e.shieldGate(p.X, p.Y, "boss_bullet", func() { e.world.BossShots.Release(h) })
		}
		return !st.Over
	})
	if st.Over {
		return
	}

	// Boss body vs player
	if b := st.Boss; b != nil && (b.State == BossCombat || b.State == BossExiting) {
		if Overlaps(px, py, bodyR, b.X, b.Y, b.Radius, tol) {
			e.shieldGate(b.X, b.Y, "boss", func() { e.knockback(b, bodyR) })
		}
	}
}

// resolveShots handles player projectiles against hazards, obstacles and
// the boss. Hazards and obstacles come from the broad-phase grid.
func (e *Engine) resolveShots() {
	st := &e.state
	tol := e.cfg.CollisionTolerance
	reach := math.Max(e.cfg.Spawn.CollectibleRadius, e.cfg.Spawn.ObstacleRadius)

	e.buildBroadphase()
	e.world.Shots.Each(func(sh Handle, p *Projectile) bool {
		for _, id := range e.grid.Query(p.X, p.Y, p.Radius+reach) {
			if id&obstacleTag != 0 {
				if _, o, ok := e.world.Obstacles.At(int(id &^ obstacleTag)); ok && Collides(&p.Body, &o.Body, tol) {
					e.burst(p.X, p.Y, EffectProjectileHit, 0.5)
					e.world.Shots.Release(sh)
					return true
				}
				continue
			}
			h, c, ok := e.world.Collectibles.At(int(id))
			if !ok || c.Kind() != KindHazard || !Collides(&p.Body, &c.Body, tol) {
				continue
			}
			// Crowd control only: no score.
			e.burst(c.X, c.Y, EffectProjectileHit, 1)
			e.out.sound(SoundHit)
			e.world.ReleaseCollectible(h)
			e.world.Shots.Release(sh)
			e.stats.HazardsShot++
			return true
		}

		if b := st.Boss; b != nil && b.State == BossCombat && Collides(&p.Body, &b.Body, tol) {
			e.world.Shots.Release(sh)
			e.damageBoss(e.cfg.Combat.ProjectileDamage)
		}
		return true
	})
}

// collectPrimary releases the collectible and applies the scoring rule.
func (e *Engine) collectPrimary(h Handle, c *Collectible) {
	st := &e.state
	x, y := c.X, c.Y
	if !e.world.ReleaseCollectible(h) {
		return
	}

	delta, leveled := st.AwardPrimary(e.cfg)
	e.stats.Pickups++

	e.burst(x, y, EffectPickup, 1)
	e.out.sound(SoundPickup)
	e.player.SetTimedState(StateSmile, e.cfg.SmileMs)
	e.emit(EventTypePickup, PickupPayload{Kind: KindPrimary.String(), Delta: delta, Score: st.Score, Combo: st.Combo})

	if leveled {
		e.out.sound(SoundLevelUp)
		e.emit(EventTypeLevelUp, LevelPayload{Level: st.Level, Score: st.Score})
		e.log.Debug("level up", zap.String("session", e.sessionID), zap.Int("level", st.Level))
		e.saveProfile()
	}
}

// collectPowerUp releases the pickup and starts (or refreshes) its timer.
func (e *Engine) collectPowerUp(h Handle, c *Collectible, kind PowerUpKind) {
	x, y := c.X, c.Y
	if !e.world.ReleaseCollectible(h) {
		return
	}
	ActivatePowerUp(&e.state, e.cfg.PowerUp, kind)
	e.burst(x, y, EffectPowerUp, 1)
	e.out.sound(SoundPowerUp)
	e.emit(EventTypePowerUp, PickupPayload{Kind: kind.String(), Score: e.state.Score, Combo: e.state.Combo})
}

// shieldGate is the shared rule for harmful contact: a shield absorbs it
// (absorb is called), otherwise the run ends.
func (e *Engine) shieldGate(x, y float64, source string, absorb func()) {
	if e.state.Shielded() {
		absorb()
		e.burst(x, y, EffectShieldBlock, 1)
		e.out.sound(SoundShieldBlock)
		e.player.SetTimedState(StateSad, e.cfg.SadMs)
		return
	}
	e.gameOver(source)
}

// knockback pushes the player out of the boss after a shielded contact.
func (e *Engine) knockback(b *Boss, bodyR float64) {
	dx, dy := e.player.X-b.X, e.player.Y-b.Y
	d := math.Hypot(dx, dy)
	if d < 1e-6 {
		dx, dy, d = 0, 1, 1
	}
	push := b.Radius + bodyR
	e.player.X = clamp(b.X+dx/d*push, e.player.Radius, e.cfg.Width-e.player.Radius)
	e.player.Y = clamp(b.Y+dy/d*push, e.player.Radius, e.cfg.Height-e.player.Radius)
}

// gameOver is the terminal transition of a run. An active boss encounter
// is closed without a reward.
func (e *Engine) gameOver(source string) {
	st := &e.state
	if st.Over {
		return
	}
	st.Over = true
	st.hudDirty = true
	st.AbilityActive = false
	e.stats.GameOvers++

	if st.Boss != nil {
		e.retireBoss(OutcomeAborted)
	}

	e.player.State = StateSad
	e.player.StateMs = e.cfg.SadMs
	e.burst(e.player.X, e.player.Y, EffectGameOver, 1.5)
	e.out.sound(SoundGameOver)
	e.emit(EventTypeGameOver, GameOverPayload{Cause: source, Score: st.Score, Level: st.Level, Primaries: st.PrimaryCount})
	e.log.Info("game over",
		zap.String("session", e.sessionID),
		zap.String("cause", source),
		zap.Int("score", st.Score),
		zap.Int("level", st.Level))

	e.saveProfile()
}
