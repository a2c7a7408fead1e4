package game

import (
	"math"

	"go.uber.org/zap"
)

// BossState is a stage of the encounter lifecycle.
type BossState uint8

const (
	BossEntry BossState = iota
	BossCombat
	BossExiting
	BossRetired
)

func (s BossState) String() string {
	switch s {
	case BossEntry:
		return "entry"
	case BossCombat:
		return "combat"
	case BossExiting:
		return "exiting"
	case BossRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// BossPattern selects the attack shape of an archetype.
type BossPattern string

const (
	PatternRadial BossPattern = "radial" // N-way burst around the boss
	PatternFan    BossPattern = "fan"    // Spread aimed at the player
)

// BossPhaseSpec is the attack regime of one phase.
type BossPhaseSpec struct {
	IntervalMs  float64
	Bullets     int
	BulletSpeed float64
	SpreadDeg   float64 // Fan width; ignored by radial
}

// BossArchetype is a data-driven boss definition.
type BossArchetype struct {
	Name         string
	Pattern      BossPattern
	MaxHealth    int
	Radius       float64
	Speed        float64
	MaxAttacks   int
	ExitReward   int
	DefeatReward int
	Phases       [2]BossPhaseSpec
}

type standoff uint8

const (
	standoffHold standoff = iota
	standoffApproach
	standoffRetreat
)

// Boss is the single live boss of an encounter.
type Boss struct {
	Body
	Archetype BossArchetype
	State     BossState
	Phase     int
	Health    int
	MaxHealth int

	LastAttackAt   float64
	AttackCount    int
	InvulnerableMs float64

	move       standoff
	exitSpeed  float64
	exitDirX   float64
	exitDirY   float64
	phase2Done bool
	spinOffset float64
}

// NewBoss creates a boss entering from above the playfield.
func NewBoss(arch BossArchetype, x float64) *Boss {
	return &Boss{
		Body: Body{
			X:      x,
			Y:      -arch.Radius,
			Radius: arch.Radius,
		},
		Archetype: arch,
		State:     BossEntry,
		Phase:     1,
		Health:    arch.MaxHealth,
		MaxHealth: arch.MaxHealth,
	}
}

// Vulnerable reports whether a hit would land now.
func (b *Boss) Vulnerable() bool {
	return b.State == BossCombat && b.InvulnerableMs <= 0
}

// HealthFraction returns health/maxHealth in [0,1].
func (b *Boss) HealthFraction() float64 {
	if b.MaxHealth <= 0 {
		return 0
	}
	return float64(b.Health) / float64(b.MaxHealth)
}

// DamageResult describes what a hit did.
type DamageResult struct {
	Applied  bool
	PhaseUp  bool
	Defeated bool
}

// TakeDamage applies amount if the boss is vulnerable, then opens the
// invulnerability window. Phase 2 starts at most once, the first time the
// health fraction drops to threshold or below.
func (b *Boss) TakeDamage(amount int, threshold, invulnerableMs float64) DamageResult {
	if !b.Vulnerable() || amount <= 0 {
		return DamageResult{}
	}
	b.Health -= amount
	if b.Health < 0 {
		b.Health = 0
	}
	b.InvulnerableMs = invulnerableMs

	res := DamageResult{Applied: true}
	if !b.phase2Done && b.HealthFraction() <= threshold {
		b.phase2Done = true
		b.Phase = 2
		res.PhaseUp = true
	}
	if b.Health == 0 {
		res.Defeated = true
	}
	return res
}

// CurrentPhase returns the attack regime for the current phase.
func (b *Boss) CurrentPhase() BossPhaseSpec {
	if b.Phase >= 2 {
		return b.Archetype.Phases[1]
	}
	return b.Archetype.Phases[0]
}

// beginExit switches to Exiting, heading away from the playfield centre.
func (b *Boss) beginExit(cx, cy float64) {
	b.State = BossExiting
	dx, dy := b.X-cx, b.Y-cy
	l := math.Hypot(dx, dy)
	if l < 1 {
		dx, dy, l = 0, -1, 1
	}
	b.exitDirX, b.exitDirY = dx/l, dy/l
	b.exitSpeed = b.Archetype.Speed
	b.VX, b.VY = 0, 0
}

// updateBoss advances the encounter by one tick.
func (e *Engine) updateBoss(scale, dtMs float64) {
	b := e.state.Boss
	if b == nil {
		return
	}
	bc := e.cfg.Boss

	switch b.State {
	case BossEntry:
		b.Y += b.Archetype.Speed * bc.EntrySpeedScale * scale
		if b.Y >= bc.TargetY {
			b.Y = bc.TargetY
			b.State = BossCombat
			b.LastAttackAt = e.state.Now
			e.state.bossHUDDirty = true
			e.log.Debug("boss engaged", zap.String("boss", b.Archetype.Name))
		}

	case BossCombat:
		if b.InvulnerableMs > 0 {
			b.InvulnerableMs -= dtMs
		}
		e.bossStandoff(b, scale)

		phase := b.CurrentPhase()
		if e.state.Now-b.LastAttackAt > phase.IntervalMs && b.AttackCount < b.Archetype.MaxAttacks {
			e.bossAttack(b, phase)
			b.LastAttackAt = e.state.Now
			b.AttackCount++
		}
		if b.AttackCount >= b.Archetype.MaxAttacks {
			b.beginExit(e.cfg.Width/2, e.cfg.Height/2)
			e.log.Debug("boss exiting", zap.String("boss", b.Archetype.Name), zap.Int("attacks", b.AttackCount))
		}

	case BossExiting:
		b.exitSpeed += bc.ExitAccel * scale
		b.VX = b.exitDirX * b.exitSpeed
		b.VY = b.exitDirY * b.exitSpeed
		b.X += b.VX * scale
		b.Y += b.VY * scale
		if e.outOfBounds(b.X, b.Y, b.Radius) {
			e.retireBoss(OutcomeEscaped)
		}
	}
}

// bossStandoff follows the player while keeping a distance band. The band
// has hysteresis: once approaching or retreating, the boss keeps going
// until it reaches the middle of the band.
func (e *Engine) bossStandoff(b *Boss, scale float64) {
	bc := e.cfg.Boss
	dx, dy := e.player.X-b.X, e.player.Y-b.Y
	dist := math.Hypot(dx, dy)
	mid := (bc.StandoffMin + bc.StandoffMax) / 2

	switch b.move {
	case standoffHold:
		if dist > bc.StandoffMax {
			b.move = standoffApproach
		} else if dist < bc.StandoffMin {
			b.move = standoffRetreat
		}
	case standoffApproach:
		if dist <= mid {
			b.move = standoffHold
		}
	case standoffRetreat:
		if dist >= mid {
			b.move = standoffHold
		}
	}

	speed := b.Archetype.Speed
	b.VX, b.VY = 0, 0
	if dist > 0 {
		ux, uy := dx/dist, dy/dist
		switch b.move {
		case standoffApproach:
			b.VX, b.VY = ux*speed, uy*speed
		case standoffRetreat:
			b.VX, b.VY = -ux*speed, -uy*speed
		case standoffHold:
			// Track the player laterally only.
			b.VX = clamp(dx, -speed/2, speed/2)
		}
	}

	b.X = clamp(b.X+b.VX*scale, b.Radius, e.cfg.Width-b.Radius)
	b.Y = clamp(b.Y+b.VY*scale, b.Radius, e.cfg.Height-b.Radius)
}

// damageBoss applies a projectile hit to the active boss.
func (e *Engine) damageBoss(amount int) {
	b := e.state.Boss
	if b == nil {
		return
	}
	res := b.TakeDamage(amount, e.cfg.Boss.Phase2Threshold, e.cfg.Boss.InvulnerableMs)
	if !res.Applied {
		return
	}
	e.state.bossHUDDirty = true
	e.burst(b.X, b.Y, EffectBossHit, 1)
	e.out.sound(SoundHit)

	if res.PhaseUp {
		e.out.sound(SoundBossPhase)
		e.emit(EventTypeBossPhase, BossPayload{Name: b.Archetype.Name, Phase: b.Phase, Health: b.Health})
		e.log.Debug("boss phase 2", zap.String("boss", b.Archetype.Name), zap.Int("health", b.Health))
	}
	if res.Defeated {
		e.retireBoss(OutcomeDefeated)
	}
}

// retireBoss ends the encounter: awards the outcome's reward, releases the
// boss record and fires the encounter-ended notification.
func (e *Engine) retireBoss(outcome BossOutcome) {
	b := e.state.Boss
	if b == nil {
		return
	}

	reward := 0
	switch outcome {
	case OutcomeDefeated:
		reward = b.Archetype.DefeatReward
		e.burst(b.X, b.Y, EffectBossDefeat, 2)
		e.out.sound(SoundBossDefeat)
	case OutcomeEscaped:
		reward = b.Archetype.ExitReward
		e.out.sound(SoundBossEscape)
	}
	if reward > 0 {
		e.state.Score += reward
		e.state.hudDirty = true
	}

	b.State = BossRetired
	e.state.Boss = nil
	e.state.bossHUDDirty = false
	e.stats.BossesRetired++

	e.out.bossHUD(BossHUD{Name: b.Archetype.Name, Phase: b.Phase, Visible: false, Outcome: outcome})
	e.emit(EventTypeBossRetired, BossPayload{Name: b.Archetype.Name, Phase: b.Phase, Health: b.Health, Outcome: string(outcome), Reward: reward})
	e.log.Info("boss retired",
		zap.String("session", e.sessionID),
		zap.String("boss", b.Archetype.Name),
		zap.String("outcome", string(outcome)),
		zap.Int("reward", reward))

	if outcome != OutcomeAborted {
		e.saveProfile()
	}
}

// hud returns the health bar for this boss.
func (b *Boss) hud() BossHUD {
	return BossHUD{
		Name:      b.Archetype.Name,
		HealthPct: b.HealthFraction() * 100,
		Phase:     b.Phase,
		Visible:   true,
	}
}
