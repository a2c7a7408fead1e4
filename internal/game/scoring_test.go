package game

import (
	"math"
	"testing"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// TestAwardPrimary verifies the scoring rule across combo steps.
func TestAwardPrimary(t *testing.T) {
	cfg := config.DefaultSim()

	tests := []struct {
		name       string
		level      int
		combo      int
		scoreMul   float64
		wantDelta  int
		wantCombo  int
		wantReward int
	}{
		{"first pickup", 1, 0, 1, 5, 1, 5},
		{"combo multiplier two", 1, 5, 1, 10, 6, 5},
		{"level three", 3, 0, 1, 15, 1, 5},
		{"character bonus", 1, 0, 1.5, 8, 1, 5}, // 7.5 rounds half away from zero
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewGameState(0)
			st.Level = tt.level
			st.Combo = tt.combo
			st.ScoreMultiplier = tt.scoreMul

			delta, _ := st.AwardPrimary(cfg)
			if delta != tt.wantDelta {
				t.Errorf("Expected delta %d, got %d", tt.wantDelta, delta)
			}
			if st.Score != tt.wantDelta {
				t.Errorf("Expected score %d, got %d", tt.wantDelta, st.Score)
			}
			if st.Combo != tt.wantCombo {
				t.Errorf("Expected combo %d, got %d", tt.wantCombo, st.Combo)
			}
			if st.PendingRewards != tt.wantReward {
				t.Errorf("Expected pending rewards %d, got %d", tt.wantReward, st.PendingRewards)
			}
		})
	}
}

// TestPendingRewardsCap verifies rewards saturate at the configured cap.
func TestPendingRewardsCap(t *testing.T) {
	cfg := config.DefaultSim()
	st := NewGameState(cfg.MaxPendingRewards - 2)

	st.AwardPrimary(cfg)
	if st.PendingRewards != cfg.MaxPendingRewards {
		t.Errorf("Expected rewards capped at %d, got %d", cfg.MaxPendingRewards, st.PendingRewards)
	}
}

// TestLevelUp verifies the level rises every PrimariesPerLevel pickups.
func TestLevelUp(t *testing.T) {
	cfg := config.DefaultSim()
	st := NewGameState(0)

	for i := 1; i < cfg.PrimariesPerLevel; i++ {
		if _, up := st.AwardPrimary(cfg); up {
			t.Fatalf("Leveled up early at pickup %d", i)
		}
	}
	if _, up := st.AwardPrimary(cfg); !up {
		t.Fatal("Expected level up")
	}
	if st.Level != 2 {
		t.Errorf("Expected level 2, got %d", st.Level)
	}
}

// TestDecayCombo verifies the combo resets strictly after the timeout.
func TestDecayCombo(t *testing.T) {
	st := NewGameState(0)
	st.Combo = 4
	st.LastPickupAt = 1000

	st.Now = 4000
	if st.DecayCombo(3000) {
		t.Error("Combo decayed at exactly the timeout")
	}
	st.Now = 4001
	if !st.DecayCombo(3000) || st.Combo != 0 {
		t.Errorf("Expected combo reset, got %d", st.Combo)
	}
}

// TestTickCollectsPrimary verifies a pickup in the engine applies scoring
// and notifies collaborators.
func TestTickCollectsPrimary(t *testing.T) {
	e, rec := newTestEngine(t, quietConfig())
	place(t, e, PrimaryPayload{}, e.player.X, e.player.Y)

	e.Tick(0, Input{})

	st := e.State()
	if st.Score != 5 || st.Combo != 1 || st.PendingRewards != 5 {
		t.Errorf("Expected score 5, combo 1, rewards 5; got %d, %d, %d", st.Score, st.Combo, st.PendingRewards)
	}
	if e.world.LiveCount(KindPrimary) != 0 {
		t.Error("Collected primary still live")
	}
	if rec.played(SoundPickup) != 1 {
		t.Errorf("Expected one pickup sound, got %v", rec.sounds)
	}
	if e.player.State != StateSmile {
		t.Errorf("Expected smile state, got %s", e.player.State)
	}
	if len(rec.huds) == 0 || rec.huds[len(rec.huds)-1].Score != 5 {
		t.Error("HUD not updated with new score")
	}
}

// TestEngineComboDecay verifies the combo lapses after 3s without pickups.
func TestEngineComboDecay(t *testing.T) {
	e, _ := newTestEngine(t, quietConfig())
	place(t, e, PrimaryPayload{}, e.player.X, e.player.Y)
	e.Tick(0, Input{})

	run(e, 0, 30, 100) // Now = 3000
	if e.state.Combo != 1 {
		t.Errorf("Combo decayed at the timeout, got %d", e.state.Combo)
	}
	run(e, 3000, 1, 100)
	if e.state.Combo != 0 {
		t.Errorf("Expected combo reset after timeout, got %d", e.state.Combo)
	}
}

// TestHazardEndsRun verifies unshielded hazard contact is terminal and
// stops the simulation.
func TestHazardEndsRun(t *testing.T) {
	e, rec := newTestEngine(t, quietConfig())
	place(t, e, HazardPayload{}, e.player.X, e.player.Y)

	e.Tick(0, Input{})
	if !e.state.Over {
		t.Fatal("Expected game over")
	}
	if rec.played(SoundGameOver) != 1 {
		t.Errorf("Expected game over sound, got %v", rec.sounds)
	}
	if len(rec.saves) != 1 {
		t.Errorf("Expected one profile save, got %d", len(rec.saves))
	}

	tick := e.state.Tick
	run(e, 0, 5, 16)
	if e.state.Tick != tick {
		t.Errorf("Simulation advanced after game over: %d -> %d", tick, e.state.Tick)
	}
}

// TestShieldGating verifies a shield absorbs every harmful contact.
func TestShieldGating(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
		live  func(e *Engine) int
	}{
		{
			name:  "hazard",
			setup: func(e *Engine) { place(t, e, HazardPayload{}, e.player.X, e.player.Y) },
			live:  func(e *Engine) int { return e.world.LiveCount(KindHazard) },
		},
		{
			name: "obstacle",
			setup: func(e *Engine) {
				_, o, _ := e.world.Obstacles.Acquire()
				o.X, o.Y, o.Radius = e.player.X, e.player.Y, 30
			},
			live: func(e *Engine) int { return e.world.Obstacles.Active() },
		},
		{
			name: "boss bullet",
			setup: func(e *Engine) {
				_, p, _ := e.world.BossShots.Acquire()
				p.X, p.Y, p.Radius = e.player.X, e.player.Y, 7
				p.ExpiresAt = 1e12
			},
			live: func(e *Engine) int { return e.world.BossShots.Active() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newTestEngine(t, quietConfig())
			ActivatePowerUp(&e.state, e.cfg.PowerUp, PowerShield)
			tt.setup(e)

			e.Tick(0, Input{})
			if e.state.Over {
				t.Fatal("Shielded contact ended the run")
			}
			if n := tt.live(e); n != 0 {
				t.Errorf("Expected absorbed entity released, %d live", n)
			}
			if rec.played(SoundShieldBlock) != 1 {
				t.Errorf("Expected shield block sound, got %v", rec.sounds)
			}
		})
	}
}

// TestPowerUpPickup verifies a power-up pickup starts its timer.
func TestPowerUpPickup(t *testing.T) {
	e, _ := newTestEngine(t, quietConfig())
	place(t, e, PowerUpPayload{PowerUp: PowerRanged}, e.player.X, e.player.Y)

	e.Tick(0, Input{})
	if !e.state.HasPowerUp(PowerRanged) || !e.state.AutoFire {
		t.Error("Expected ranged power-up with autofire")
	}
	if e.state.Score != 0 {
		t.Errorf("Power-up pickup scored %d", e.state.Score)
	}
}

// TestProjectileClearsHazard verifies shots remove hazards without scoring.
func TestProjectileClearsHazard(t *testing.T) {
	e, _ := newTestEngine(t, quietConfig())
	place(t, e, HazardPayload{}, e.player.X, 100)
	_, p, _ := e.world.Shots.Acquire()
	p.X, p.Y, p.Radius = e.player.X, 100, 5
	p.ExpiresAt = 1e12

	e.Tick(0, Input{})
	if e.world.LiveCount(KindHazard) != 0 {
		t.Error("Hazard survived the shot")
	}
	if e.state.Score != 0 {
		t.Errorf("Shooting a hazard scored %d", e.state.Score)
	}
	if e.Stats().HazardsShot != 1 {
		t.Errorf("Expected 1 hazard shot, got %d", e.Stats().HazardsShot)
	}
}

// TestMagnetWidensPickup verifies the magnet extends the collect range.
func TestMagnetWidensPickup(t *testing.T) {
	cfg := quietConfig()
	cfg.PowerUp.MagnetRadius = 0 // Isolate the range effect from the pull

	e, _ := newTestEngine(t, cfg)
	r := e.player.PickupRadius(cfg, false)
	// Just outside the normal pickup test, inside the magnetised one.
	d := math.Sqrt(cfg.CollisionTolerance)*(r+cfg.Spawn.CollectibleRadius) + 4
	place(t, e, PrimaryPayload{}, e.player.X+d, e.player.Y)

	e.Tick(0, Input{})
	if e.state.Score != 0 {
		t.Fatal("Collected outside the normal range")
	}

	ActivatePowerUp(&e.state, cfg.PowerUp, PowerMagnet)
	e.Tick(16, Input{})
	if e.state.Score == 0 {
		t.Error("Magnet did not widen the pickup range")
	}
}
