package game

import (
	"math"
	"math/rand"

	"github.com/hungerium/hungeriumm-sub001/internal/config"
)

// Canonical directions, indexed clockwise from east.
var directions = [8][2]float64{
	{1, 0},
	{math.Sqrt2 / 2, math.Sqrt2 / 2},
	{0, 1},
	{-math.Sqrt2 / 2, math.Sqrt2 / 2},
	{-1, 0},
	{-math.Sqrt2 / 2, -math.Sqrt2 / 2},
	{0, -1},
	{math.Sqrt2 / 2, -math.Sqrt2 / 2},
}

type edge uint8

const (
	edgeTop edge = iota
	edgeRight
	edgeBottom
	edgeLeft
)

// Directions (indices into directions) that point into the playfield from each edge.
var inward = [4][3]int{
	edgeTop:    {1, 2, 3},
	edgeRight:  {3, 4, 5},
	edgeBottom: {5, 6, 7},
	edgeLeft:   {7, 0, 1},
}

// Spawner decides when new entities appear.
type Spawner struct {
	cfg        config.SimConfig
	rng        *rand.Rand
	archetypes []BossArchetype
	next       int
}

// NewSpawner creates a spawner. Archetypes are used round-robin; with
// none, bosses never spawn.
func NewSpawner(cfg config.SimConfig, rng *rand.Rand, archetypes []BossArchetype) *Spawner {
	return &Spawner{cfg: cfg, rng: rng, archetypes: archetypes}
}

// Interval returns the spawn interval of kind at level. It shrinks
// logarithmically with level; the mobile profile halves the curve.
func (s *Spawner) Interval(kind SpawnKind, level int) float64 {
	base := s.baseInterval(kind)
	curve := math.Log(float64(level) + 1)
	if s.cfg.Spawn.MobileProfile {
		curve *= 0.5
	}
	return base / math.Max(1, curve)
}

func (s *Spawner) baseInterval(kind SpawnKind) float64 {
	sp := s.cfg.Spawn
	switch kind {
	case SpawnPrimary:
		return sp.PrimaryIntervalMs
	case SpawnHazard:
		return sp.HazardIntervalMs
	case SpawnPowerUp:
		return sp.PowerUpIntervalMs
	case SpawnObstacle:
		return sp.ObstacleIntervalMs
	case SpawnBoss:
		return sp.BossIntervalMs
	}
	return math.Inf(1)
}

// Due reports whether kind's interval has elapsed.
func (s *Spawner) Due(st *GameState, kind SpawnKind) bool {
	return st.Now-st.LastSpawn[kind] > s.Interval(kind, st.Level)
}

// TrySpawn attempts to spawn one entity of kind. It returns true if an
// entity was created. Pool exhaustion and caps skip silently.
func (s *Spawner) TrySpawn(st *GameState, w *World, kind SpawnKind) bool {
	if kind == SpawnBoss {
		return s.trySpawnBoss(st)
	}
	if !s.Due(st, kind) {
		return false
	}

	sp := s.cfg.Spawn
	levelBoost := 1 + sp.SpeedPerLevel*float64(st.Level-1)

	switch kind {
	case SpawnPrimary:
		if w.LiveCount(KindPrimary) >= sp.MaxPrimaries {
			return false
		}
		_, c, ok := w.AcquireCollectible(PrimaryPayload{})
		if !ok {
			return false
		}
		s.place(&c.Body, sp.CollectibleRadius, sp.PrimarySpeed*levelBoost)
		c.BornAt = st.Now

	case SpawnHazard:
		if w.LiveCount(KindHazard) >= sp.MaxHazards {
			return false
		}
		_, c, ok := w.AcquireCollectible(s.hazardPayload(st.Level))
		if !ok {
			return false
		}
		s.place(&c.Body, sp.CollectibleRadius, sp.HazardSpeed*levelBoost)
		c.BornAt = st.Now

	case SpawnPowerUp:
		if w.LiveCount(KindPowerUp) >= sp.MaxPowerUps {
			return false
		}
		pk := PowerUpKind(s.rng.Intn(int(powerUpKindCount)))
		_, c, ok := w.AcquireCollectible(PowerUpPayload{PowerUp: pk})
		if !ok {
			return false
		}
		s.place(&c.Body, sp.PowerUpRadius, sp.PowerUpSpeed)
		c.BornAt = st.Now

	case SpawnObstacle:
		if w.Obstacles.Active() >= sp.MaxObstacles {
			return false
		}
		_, o, ok := w.Obstacles.Acquire()
		if !ok {
			return false
		}
		s.place(&o.Body, sp.ObstacleRadius, sp.ObstacleSpeed*levelBoost)
		o.Spin = (s.rng.Float64() - 0.5) * 0.1

	default:
		return false
	}

	st.LastSpawn[kind] = st.Now
	return true
}

func (s *Spawner) hazardPayload(level int) HazardPayload {
	sp := s.cfg.Spawn
	if s.rng.Float64() >= sp.ZigzagChance {
		return HazardPayload{}
	}
	lv := float64(level - 1)
	return HazardPayload{
		Zigzag:    true,
		Amplitude: sp.ZigzagAmplitude + sp.ZigzagAmplitudePerLevel*lv,
		Frequency: sp.ZigzagFrequency + sp.ZigzagFrequencyPerLevel*lv,
		Phase:     s.rng.Float64() * 2 * math.Pi,
	}
}

// place puts b just outside a random edge, moving inward along one of the
// canonical directions allowed for that edge.
func (s *Spawner) place(b *Body, radius, speed float64) {
	w, h := s.cfg.Width, s.cfg.Height
	e := edge(s.rng.Intn(4))
	switch e {
	case edgeTop:
		b.X, b.Y = s.rng.Float64()*w, -radius
	case edgeRight:
		b.X, b.Y = w+radius, s.rng.Float64()*h
	case edgeBottom:
		b.X, b.Y = s.rng.Float64()*w, h+radius
	case edgeLeft:
		b.X, b.Y = -radius, s.rng.Float64()*h
	}
	d := directions[inward[e][s.rng.Intn(3)]]
	b.VX, b.VY = d[0]*speed, d[1]*speed
	b.Radius = radius
}

// trySpawnBoss creates the boss when the level is high enough, no boss is
// active and the boss interval has elapsed.
func (s *Spawner) trySpawnBoss(st *GameState) bool {
	if len(s.archetypes) == 0 || st.Boss != nil || st.Level < s.cfg.Boss.UnlockLevel {
		return false
	}
	if !s.Due(st, SpawnBoss) {
		return false
	}
	arch := s.archetypes[s.next%len(s.archetypes)]
	s.next++

	margin := arch.Radius
	x := margin + s.rng.Float64()*(s.cfg.Width-2*margin)
	st.Boss = NewBoss(arch, x)
	st.LastSpawn[SpawnBoss] = st.Now
	st.BossesSeen++
	st.bossHUDDirty = true
	return true
}
