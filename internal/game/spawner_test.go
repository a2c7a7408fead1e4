package game

import (
	"math"
	"math/rand"
	"testing"
)

// TestSpawnInterval verifies the logarithmic difficulty curve.
func TestSpawnInterval(t *testing.T) {
	cfg := quietConfig()
	cfg.Spawn.PrimaryIntervalMs = 900

	tests := []struct {
		name   string
		level  int
		mobile bool
		want   float64
	}{
		{"level 1 floors at base", 1, false, 900},
		{"level 2", 2, false, 900 / math.Log(3)},
		{"level 10", 10, false, 900 / math.Log(11)},
		{"mobile halves the curve", 10, true, 900 / (math.Log(11) * 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.Spawn.MobileProfile = tt.mobile
			s := NewSpawner(c, rand.New(rand.NewSource(1)), nil)
			got := s.Interval(SpawnPrimary, tt.level)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestSpawnCaps verifies per-kind caps bound live entities.
func TestSpawnCaps(t *testing.T) {
	cfg := quietConfig()
	cfg.Spawn.PrimaryIntervalMs = 1
	cfg.Spawn.MaxPrimaries = 2
	w := NewWorld(cfg)
	s := NewSpawner(cfg, rand.New(rand.NewSource(1)), nil)
	st := NewGameState(0)

	spawned := 0
	for i := 0; i < 10; i++ {
		st.Now += 10
		if s.TrySpawn(&st, w, SpawnPrimary) {
			spawned++
		}
	}
	if spawned != 2 || w.LiveCount(KindPrimary) != 2 {
		t.Errorf("Expected 2 primaries, spawned %d live %d", spawned, w.LiveCount(KindPrimary))
	}
}

// TestSpawnPlacement verifies entities start outside an edge heading inward.
func TestSpawnPlacement(t *testing.T) {
	cfg := quietConfig()
	cfg.Spawn.HazardIntervalMs = 1
	cfg.Spawn.MaxHazards = 50
	cfg.Spawn.MaxPrimaries = 0
	cfg.Spawn.MaxPowerUps = 0
	w := NewWorld(cfg)
	s := NewSpawner(cfg, rand.New(rand.NewSource(7)), nil)
	st := NewGameState(0)

	for i := 0; i < 50; i++ {
		st.Now += 10
		s.TrySpawn(&st, w, SpawnHazard)
	}
	w.Collectibles.Each(func(_ Handle, c *Collectible) bool {
		inside := c.X >= 0 && c.X <= cfg.Width && c.Y >= 0 && c.Y <= cfg.Height
		if inside {
			t.Errorf("Spawned inside the playfield at (%v, %v)", c.X, c.Y)
		}
		if (c.Y < 0 && c.VY <= 0) || (c.Y > cfg.Height && c.VY >= 0) ||
			(c.X < 0 && c.VX <= 0) || (c.X > cfg.Width && c.VX >= 0) {
			t.Errorf("Velocity (%v, %v) does not cross into the field from (%v, %v)", c.VX, c.VY, c.X, c.Y)
		}
		return true
	})
}

// TestSingleBoss verifies at most one boss per window.
func TestSingleBoss(t *testing.T) {
	cfg := quietConfig()
	cfg.Spawn.BossIntervalMs = 1000
	cfg.Boss.UnlockLevel = 1
	s := NewSpawner(cfg, rand.New(rand.NewSource(1)), []BossArchetype{testArchetype()})
	st := NewGameState(0)

	st.Now = 1500
	if !s.TrySpawn(&st, nil, SpawnBoss) {
		t.Fatal("Expected boss spawn")
	}
	if s.TrySpawn(&st, nil, SpawnBoss) {
		t.Error("Second boss spawned while the first is active")
	}

	st.Boss = nil
	st.Now = 2000
	if s.TrySpawn(&st, nil, SpawnBoss) {
		t.Error("Boss spawned before its interval elapsed")
	}
	st.Now = 2600
	if !s.TrySpawn(&st, nil, SpawnBoss) {
		t.Error("Expected second boss after the interval")
	}
	if st.BossesSeen != 2 {
		t.Errorf("Expected 2 bosses seen, got %d", st.BossesSeen)
	}
}

// TestBossLocked verifies bosses wait for the unlock level.
func TestBossLocked(t *testing.T) {
	cfg := quietConfig()
	cfg.Spawn.BossIntervalMs = 1
	s := NewSpawner(cfg, rand.New(rand.NewSource(1)), []BossArchetype{testArchetype()})
	st := NewGameState(0)
	st.Now = 1e6

	if s.TrySpawn(&st, nil, SpawnBoss) {
		t.Errorf("Boss spawned at level %d below unlock %d", st.Level, cfg.Boss.UnlockLevel)
	}
	st.Level = cfg.Boss.UnlockLevel
	if !s.TrySpawn(&st, nil, SpawnBoss) {
		t.Error("Boss did not spawn at the unlock level")
	}
}
