package game

import (
	"math"
	"testing"
)

func patternArchetype(pattern BossPattern) BossArchetype {
	arch := testArchetype()
	arch.Pattern = pattern
	arch.Phases = [2]BossPhaseSpec{
		{IntervalMs: 100, Bullets: 3, BulletSpeed: 4, SpreadDeg: 30},
		{IntervalMs: 100, Bullets: 5, BulletSpeed: 5, SpreadDeg: 20},
	}
	return arch
}

// TestBossPatternBulletCounts verifies each pattern fires its phase's
// bullet count at the phase's speed.
func TestBossPatternBulletCounts(t *testing.T) {
	tests := []struct {
		name    string
		pattern BossPattern
		phase   int
		want    int
	}{
		{"radial phase 1", PatternRadial, 1, 3},
		{"radial phase 2", PatternRadial, 2, 5},
		{"fan phase 1", PatternFan, 1, 3},
		{"fan phase 2", PatternFan, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newTestEngine(t, quietConfig())
			b := combatBoss(patternArchetype(tt.pattern))
			b.Phase = tt.phase

			e.bossAttack(b, b.CurrentPhase())
			if got := e.world.BossShots.Active(); got != tt.want {
				t.Errorf("Expected %d bullets, got %d", tt.want, got)
			}
			if rec.played(SoundBossAttack) != 1 {
				t.Errorf("Expected one attack sound, got %d", rec.played(SoundBossAttack))
			}
			speed := b.CurrentPhase().BulletSpeed
			e.world.BossShots.Each(func(_ Handle, p *Projectile) bool {
				if v := math.Hypot(p.VX, p.VY); math.Abs(v-speed) > 1e-9 {
					t.Errorf("Expected bullet speed %v, got %v", speed, v)
				}
				return true
			})
		})
	}
}

// TestBossPatternShapes verifies radial rings are balanced and fans are
// centred on the player.
func TestBossPatternShapes(t *testing.T) {
	t.Run("radial", func(t *testing.T) {
		e, _ := newTestEngine(t, quietConfig())
		b := combatBoss(patternArchetype(PatternRadial))
		e.bossAttack(b, b.CurrentPhase())

		var sx, sy float64
		e.world.BossShots.Each(func(_ Handle, p *Projectile) bool {
			sx += p.VX
			sy += p.VY
			return true
		})
		if math.Abs(sx) > 1e-9 || math.Abs(sy) > 1e-9 {
			t.Errorf("Expected balanced ring, velocity sum (%v, %v)", sx, sy)
		}
	})

	t.Run("fan", func(t *testing.T) {
		e, _ := newTestEngine(t, quietConfig())
		b := combatBoss(patternArchetype(PatternFan))
		e.player.X, e.player.Y = b.X, b.Y+300 // Straight below

		e.bossAttack(b, b.CurrentPhase())
		half := 15 * math.Pi / 180
		var sx float64
		e.world.BossShots.Each(func(_ Handle, p *Projectile) bool {
			sx += p.VX
			off := math.Abs(math.Atan2(p.VY, p.VX) - math.Pi/2)
			if off > half+1e-9 {
				t.Errorf("Bullet %v rad off aim, spread allows %v", off, half)
			}
			return true
		})
		if math.Abs(sx) > 1e-9 {
			t.Errorf("Expected fan centred on the player, lateral sum %v", sx)
		}
	})
}

// TestBossPhaseTwoFiresDenser verifies the encounter switches to the
// denser phase 2 volley once health crosses the threshold.
func TestBossPhaseTwoFiresDenser(t *testing.T) {
	arch := patternArchetype(PatternFan)
	arch.MaxAttacks = 4
	e, _ := newTestEngine(t, quietConfig())
	b := combatBoss(arch)
	e.state.Boss = b

	e.Tick(0, Input{})
	ts := run(e, 0, 2, 100) // First attack at 200ms
	first := e.world.BossShots.Active()
	if first != 3 {
		t.Fatalf("Expected 3 phase 1 bullets, got %d", first)
	}

	if res := b.TakeDamage(5, e.cfg.Boss.Phase2Threshold, 0); !res.PhaseUp {
		t.Fatalf("Expected phase 2, got %+v", res)
	}
	run(e, ts, 2, 100)
	if got := e.world.BossShots.Active() - first; got != 5 {
		t.Errorf("Expected 5 phase 2 bullets, got %d", got)
	}
	if b.AttackCount != 2 {
		t.Errorf("Expected 2 attacks, got %d", b.AttackCount)
	}
}

// TestBossStandoffHysteresis verifies the boss approaches, holds and
// retreats around the standoff band, finishing a move at the band middle.
func TestBossStandoffHysteresis(t *testing.T) {
	// Default band is 160..280, middle 220; test boss speed is 2.
	tests := []struct {
		name  string
		start standoff
		dist  float64
		want  standoff
		step  float64 // Expected change in distance
	}{
		{"far approaches", standoffHold, 400, standoffApproach, -2},
		{"inside band holds", standoffHold, 220, standoffHold, -1},
		{"too close retreats", standoffHold, 100, standoffRetreat, 2},
		{"approach continues inside band", standoffApproach, 250, standoffApproach, -2},
		{"approach stops at middle", standoffApproach, 215, standoffHold, -1},
		{"retreat continues inside band", standoffRetreat, 180, standoffRetreat, 2},
		{"retreat stops at middle", standoffRetreat, 225, standoffHold, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, quietConfig())
			b := combatBoss(testArchetype())
			b.X, b.Y = 100, 300
			b.move = tt.start
			e.player.X, e.player.Y = b.X+tt.dist, b.Y

			e.bossStandoff(b, 1)
			if b.move != tt.want {
				t.Errorf("Expected move %d, got %d", tt.want, b.move)
			}
			if b.Y != 300 {
				t.Errorf("Boss left the player's row: y=%v", b.Y)
			}
			got := math.Hypot(e.player.X-b.X, e.player.Y-b.Y) - tt.dist
			if math.Abs(got-tt.step) > 1e-9 {
				t.Errorf("Expected distance change %v, got %v", tt.step, got)
			}
		})
	}
}

// TestBossExitsAwayFromCentre verifies an exiting boss accelerates
// directly away from the playfield centre until it retires.
func TestBossExitsAwayFromCentre(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
	}{
		{"upper left", 200, 120},
		{"upper right", 650, 150},
		{"lower left", 120, 500},
		{"centre", 400, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, quietConfig())
			b := combatBoss(testArchetype())
			b.X, b.Y = tt.x, tt.y
			b.AttackCount = b.Archetype.MaxAttacks
			e.state.Boss = b

			e.updateBoss(1, RefFrameMs)
			if b.State != BossExiting {
				t.Fatalf("Expected exiting, got %s", b.State)
			}

			cx, cy := e.cfg.Width/2, e.cfg.Height/2
			prevDist := math.Hypot(b.X-cx, b.Y-cy)
			prevSpeed := 0.0
			for i := 0; i < 500 && e.state.Boss != nil; i++ {
				e.updateBoss(1, RefFrameMs)
				if e.state.Boss == nil {
					break
				}
				d := math.Hypot(b.X-cx, b.Y-cy)
				if d <= prevDist {
					t.Fatalf("Tick %d: boss moved toward the centre (%v -> %v)", i, prevDist, d)
				}
				speed := math.Hypot(b.VX, b.VY)
				if speed <= prevSpeed {
					t.Fatalf("Tick %d: boss did not accelerate (%v -> %v)", i, prevSpeed, speed)
				}
				prevDist, prevSpeed = d, speed
			}
			if e.state.Boss != nil {
				t.Fatal("Boss never left the playfield")
			}
			if b.State != BossRetired {
				t.Errorf("Expected retired, got %s", b.State)
			}
		})
	}
}
