package game

import "github.com/hungerium/hungeriumm-sub001/internal/config"

// World owns every entity pool of one simulation. Collectibles of all kinds
// share a slab; per-kind live counts enforce the spawner caps.
type World struct {
	Collectibles *Pool[Collectible]
	Obstacles    *Pool[Obstacle]
	Shots        *Pool[Projectile]
	BossShots    *Pool[Projectile]
	Particles    *Pool[Particle]
	Clones       *Pool[Clone]

	live [collectibleKindCount]int
}

// NewWorld sizes the pools from the balance table.
func NewWorld(cfg config.SimConfig) *World {
	collectibles := cfg.Spawn.MaxPrimaries + cfg.Spawn.MaxHazards + cfg.Spawn.MaxPowerUps
	return &World{
		Collectibles: NewPool[Collectible](collectibles),
		Obstacles:    NewPool[Obstacle](cfg.Spawn.MaxObstacles),
		Shots:        NewPool[Projectile](cfg.Pools.Projectiles),
		BossShots:    NewPool[Projectile](cfg.Pools.BossBullets),
		Particles:    NewPool[Particle](cfg.Pools.Particles),
		Clones:       NewPool[Clone](cfg.Pools.Clones),
	}
}

// LiveCount returns the number of active collectibles of kind.
func (w *World) LiveCount(kind CollectibleKind) int {
	if kind >= collectibleKindCount {
		return 0
	}
	return w.live[kind]
}

// AcquireCollectible claims a slot and installs payload.
func (w *World) AcquireCollectible(payload Payload) (Handle, *Collectible, bool) {
	h, c, ok := w.Collectibles.Acquire()
	if !ok {
		return NoHandle, nil, false
	}
	c.Payload = payload
	w.live[payload.Kind()]++
	return h, c, true
}

// ReleaseCollectible returns a collectible to the pool. Stale handles are ignored.
func (w *World) ReleaseCollectible(h Handle) bool {
	c, ok := w.Collectibles.Get(h)
	if !ok {
		return false
	}
	kind := c.Kind()
	if !w.Collectibles.Release(h) {
		return false
	}
	if kind < collectibleKindCount {
		w.live[kind]--
	}
	return true
}

// Reset releases every entity.
func (w *World) Reset() {
	w.Collectibles.ReleaseAll()
	w.Obstacles.ReleaseAll()
	w.Shots.ReleaseAll()
	w.BossShots.ReleaseAll()
	w.Particles.ReleaseAll()
	w.Clones.ReleaseAll()
	w.live = [collectibleKindCount]int{}
}

// PoolStats reports occupancy per pool.
type PoolStats struct {
	Name      string
	Active    int
	Cap       int
	Exhausted uint64
}

// Stats returns occupancy for every pool, in a fixed order.
func (w *World) Stats() [6]PoolStats {
	return [6]PoolStats{
		{"collectibles", w.Collectibles.Active(), w.Collectibles.Cap(), w.Collectibles.Exhausted()},
		{"obstacles", w.Obstacles.Active(), w.Obstacles.Cap(), w.Obstacles.Exhausted()},
		{"shots", w.Shots.Active(), w.Shots.Cap(), w.Shots.Exhausted()},
		{"boss_shots", w.BossShots.Active(), w.BossShots.Cap(), w.BossShots.Exhausted()},
		{"particles", w.Particles.Active(), w.Particles.Cap(), w.Particles.Exhausted()},
		{"clones", w.Clones.Active(), w.Clones.Cap(), w.Clones.Exhausted()},
	}
}
