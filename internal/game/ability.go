package game

import (
	"math"

	"go.uber.org/zap"
)

// updateFire handles manual fire (aimed along the last movement direction)
// and autofire at the nearest hazard while ranged attack is active.
func (e *Engine) updateFire(fire bool, dtMs float64) {
	st := &e.state
	cc := e.cfg.Combat

	if st.FireCooldownMs > 0 {
		st.FireCooldownMs -= dtMs
	}
	if fire && st.FireCooldownMs <= 0 {
		if e.spawnShot(e.player.AimX, e.player.AimY) {
			st.FireCooldownMs = cc.FireCooldownMs
			e.out.sound(SoundFire)
		}
	}

	if !st.AutoFire {
		return
	}
	st.AutoFireTimerMs -= dtMs
	if st.AutoFireTimerMs > 0 {
		return
	}
	st.AutoFireTimerMs = cc.AutoFireIntervalMs

	tx, ty, ok := 0.0, 0.0, false
	if h, found := e.nearestHazard(e.player.X, e.player.Y); found {
		tx, ty, ok = h.X, h.Y, true
	} else if b := st.Boss; b != nil && b.State == BossCombat {
		tx, ty, ok = b.X, b.Y, true
	}
	if !ok {
		return
	}
	dx, dy := tx-e.player.X, ty-e.player.Y
	if d := math.Hypot(dx, dy); d > 0 {
		e.spawnShot(dx/d, dy/d)
	}
}

func (e *Engine) spawnShot(dx, dy float64) bool {
	if dx == 0 && dy == 0 {
		dy = -1
	}
	_, p, ok := e.world.Shots.Acquire()
	if !ok {
		return false
	}
	cc := e.cfg.Combat
	p.X, p.Y = e.player.X, e.player.Y
	p.VX, p.VY = dx*cc.ProjectileSpeed, dy*cc.ProjectileSpeed
	p.Radius = cc.ProjectileRadius
	p.ExpiresAt = e.state.Now + cc.ProjectileLifetimeMs
	e.stats.ShotsFired++
	return true
}

// activateAbility spawns helper clones around the player when the ability
// is off cooldown.
func (e *Engine) activateAbility() bool {
	st := &e.state
	cc := e.cfg.Combat
	if st.AbilityActive || st.AbilityCooldownMs > 0 || st.Over {
		return false
	}
	st.AbilityActive = true
	st.AbilityRemainMs = cc.AbilityDurationMs
	st.AbilityCooldownMs = cc.AbilityCooldownMs
	st.hudDirty = true

	n := cc.CloneCount
	for i := 0; i < n; i++ {
		_, cl, ok := e.world.Clones.Acquire()
		if !ok {
			break
		}
		a := 2 * math.Pi * float64(i) / float64(n)
		cl.X = e.player.X + math.Cos(a)*e.player.Radius*2
		cl.Y = e.player.Y + math.Sin(a)*e.player.Radius*2
		cl.Radius = cc.CloneRadius
		cl.Alpha = 1
	}

	e.out.sound(SoundAbility)
	e.emit(EventTypeAbility, AbilityPayload{Clones: e.world.Clones.Active(), DurationMs: cc.AbilityDurationMs})
	e.log.Debug("ability activated", zap.String("session", e.sessionID), zap.Int("clones", e.world.Clones.Active()))
	return true
}

// updateAbility runs the ability timers and moves clones. Ending the
// ability is a state change applied here, never a deferred callback.
func (e *Engine) updateAbility(scale, dtMs float64) {
	st := &e.state
	cc := e.cfg.Combat

	if st.AbilityCooldownMs > 0 {
		st.AbilityCooldownMs -= dtMs
		if st.AbilityCooldownMs <= 0 {
			st.AbilityCooldownMs = 0
			st.hudDirty = true
		}
	}
	if st.AbilityActive {
		st.AbilityRemainMs -= dtMs
		if st.AbilityRemainMs <= 0 {
			st.AbilityRemainMs = 0
			st.AbilityActive = false
			st.hudDirty = true
			e.world.Clones.Each(func(_ Handle, cl *Clone) bool {
				cl.Fading = true
				cl.FadeMs = cc.CloneFadeMs
				return true
			})
		}
	}

	e.world.Clones.Each(func(h Handle, cl *Clone) bool {
		if cl.Fading {
			cl.FadeMs -= dtMs
			if cc.CloneFadeMs > 0 {
				cl.Alpha = math.Max(0, cl.FadeMs/cc.CloneFadeMs)
			}
			if cl.FadeMs <= 0 {
				e.out.burst(cl.X, cl.Y, EffectCloneFade, 0.5)
				e.world.Clones.Release(h)
			}
			return true
		}

		target, ok := e.world.Collectibles.Get(cl.Target)
		if !ok || target.Kind() != KindPrimary {
			if cl.Target, ok = e.nearestPrimary(cl.X, cl.Y); ok {
				target, _ = e.world.Collectibles.Get(cl.Target)
			}
		}
		if !ok {
			cl.VX, cl.VY = 0, 0
			return true
		}
		dx, dy := target.X-cl.X, target.Y-cl.Y
		d := math.Hypot(dx, dy)
		step := cc.CloneSpeed * scale
		if d <= step {
			cl.X, cl.Y = target.X, target.Y
			return true
		}
		cl.VX, cl.VY = dx/d*cc.CloneSpeed, dy/d*cc.CloneSpeed
		cl.X += cl.VX * scale
		cl.Y += cl.VY * scale
		return true
	})
}
