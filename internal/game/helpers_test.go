package game

import (
	"testing"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// recorder captures collaborator output for assertions.
type recorder struct {
	huds     []HUD
	bossHUDs []BossHUD
	bursts   []Effect
	sounds   []string
	saves    []Profile
}

func (r *recorder) UpdateHUD(h HUD) { r.huds = append(r.huds, h) }
func (r *recorder) UpdateBossHUD(h BossHUD) { r.bossHUDs = append(r.bossHUDs, h) }
func (r *recorder) ParticleBurst(_, _ float64, e Effect, _ float64) { r.bursts = append(r.bursts, e) }
func (r *recorder) PlaySound(name string) { r.sounds = append(r.sounds, name) }
func (r *recorder) SaveProfile(p Profile) { r.saves = append(r.saves, p) }

func (r *recorder) played(name string) int {
	n := 0
	for _, s := range r.sounds {
		if s == name {
			n++
		}
	}
	return n
}

func (r *recorder) collaborators() Collaborators {
	return Collaborators{Score: r, VFX: r, Audio: r, Profile: r}
}

// quietConfig disables every spawn schedule so tests control the world.
func quietConfig() config.SimConfig {
	cfg := config.DefaultSim()
	cfg.Spawn.PrimaryIntervalMs = 1e12
	cfg.Spawn.HazardIntervalMs = 1e12
	cfg.Spawn.PowerUpIntervalMs = 1e12
	cfg.Spawn.ObstacleIntervalMs = 1e12
	cfg.Spawn.BossIntervalMs = 1e12
	return cfg
}

func newTestEngine(t *testing.T, cfg config.SimConfig) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := NewEngine(Options{
		Config:        cfg,
		Collaborators: rec.collaborators(),
		Profile:       Profile{PlayerID: "tester"},
		Seed:          42,
		SessionID:     "test",
	})
	return e, rec
}

// place puts a motionless collectible at (x, y).
func place(t *testing.T, e *Engine, payload Payload, x, y float64) Handle {
	t.Helper()
	h, c, ok := e.world.AcquireCollectible(payload)
	if !ok {
		t.Fatalf("collectible pool exhausted")
	}
	c.X, c.Y, c.Radius = x, y, e.cfg.Spawn.CollectibleRadius
	return h
}

func testArchetype() BossArchetype {
	return BossArchetype{
		Name:         "Warden",
		Pattern:      PatternRadial,
		MaxHealth:    10,
		Radius:       40,
		Speed:        2,
		MaxAttacks:   2,
		ExitReward:   50,
		DefeatReward: 200,
		Phases: [2]BossPhaseSpec{
			{IntervalMs: 100},
			{IntervalMs: 100},
		},
	}
}

// run ticks the engine n times, stepping ms apart after start.
func run(e *Engine, start float64, n int, ms float64) float64 {
	ts := start
	for i := 0; i < n; i++ {
		ts += ms
		e.Tick(ts, Input{})
	}
	return ts
}
