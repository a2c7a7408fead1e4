package game

import "math"

// bossAttack fires one pattern. Bullets that find no free slot are skipped;
// the attack still counts toward the quota.
func (e *Engine) bossAttack(b *Boss, phase BossPhaseSpec) {
	if phase.Bullets <= 0 {
		return
	}
	var fired int
	switch b.Archetype.Pattern {
	case PatternFan:
		fired = e.fireFan(b, phase)
	default:
		fired = e.fireRadial(b, phase)
	}
	if fired > 0 {
		e.out.sound(SoundBossAttack)
	}
}

// fireRadial emits an evenly spaced ring. Each volley is rotated by half a
// step so consecutive rings interleave.
func (e *Engine) fireRadial(b *Boss, phase BossPhaseSpec) int {
	step := 2 * math.Pi / float64(phase.Bullets)
	offset := b.spinOffset
	b.spinOffset += step / 2

	fired := 0
	for i := 0; i < phase.Bullets; i++ {
		a := offset + float64(i)*step
		if !e.spawnBossBullet(b, math.Cos(a), math.Sin(a), phase.BulletSpeed) {
			break
		}
		fired++
	}
	return fired
}

// fireFan emits a spread centred on the direction to the player.
func (e *Engine) fireFan(b *Boss, phase BossPhaseSpec) int {
	aim := math.Atan2(e.player.Y-b.Y, e.player.X-b.X)
	spread := phase.SpreadDeg * math.Pi / 180

	fired := 0
	for i := 0; i < phase.Bullets; i++ {
		a := aim
		if phase.Bullets > 1 {
			a = aim - spread/2 + spread*float64(i)/float64(phase.Bullets-1)
		}
		if !e.spawnBossBullet(b, math.Cos(a), math.Sin(a), phase.BulletSpeed) {
			break
		}
		fired++
	}
	return fired
}

func (e *Engine) spawnBossBullet(b *Boss, dx, dy, speed float64) bool {
	_, p, ok := e.world.BossShots.Acquire()
	if !ok {
		return false
	}
	r := e.cfg.Boss.BulletRadius
	p.X = b.X + dx*(b.Radius+r)
	p.Y = b.Y + dy*(b.Radius+r)
	p.VX = dx * speed
	p.VY = dy * speed
	p.Radius = r
	// Boss bullets live until they leave the playfield.
	p.ExpiresAt = math.Inf(1)
	return true
}
